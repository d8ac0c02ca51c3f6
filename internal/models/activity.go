package models

import "time"

// ActivityLog — append-only журнал по сделке. Записи не правятся и не удаляются.
type ActivityLog struct {
	ID          int       `json:"id"`
	DealID      int       `json:"deal_id"`
	Description string    `json:"description"`
	OldStatus   string    `json:"old_status,omitempty"`
	NewStatus   string    `json:"new_status,omitempty"`
	ActorID     int       `json:"actor_id"`
	CreatedAt   time.Time `json:"created_at"`
}
