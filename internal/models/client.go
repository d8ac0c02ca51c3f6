package models

import "time"

// Client — контрагент по сделке. БИН/ИИН служит ключом
// дедупликации при создании.
type Client struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	BinIin      string    `json:"bin_iin,omitempty"`
	Address     string    `json:"address,omitempty"`
	ContactInfo string    `json:"contact_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
