package repositories

import (
	"database/sql"
	"fmt"

	"dealdesk/internal/models"
)

type ActivityRepository interface {
	Append(entry *models.ActivityLog) error
	ListByDeal(dealID, limit, offset int) ([]*models.ActivityLog, error)
}

type activityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) ActivityRepository {
	return &activityRepository{db: db}
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// insertActivity переиспользуется репозиториями, пишущими журнал
// внутри своих транзакций.
func insertActivity(e execer, entry *models.ActivityLog) error {
	const q = `
		INSERT INTO activity_log (deal_id, description, old_status, new_status, actor_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
	if _, err := e.Exec(q,
		entry.DealID, entry.Description, entry.OldStatus, entry.NewStatus,
		entry.ActorID, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

func (r *activityRepository) Append(entry *models.ActivityLog) error {
	return insertActivity(r.db, entry)
}

func (r *activityRepository) ListByDeal(dealID, limit, offset int) ([]*models.ActivityLog, error) {
	const q = `
		SELECT id, deal_id, description, old_status, new_status, actor_id, created_at
		FROM activity_log
		WHERE deal_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(q, dealID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ActivityLog
	for rows.Next() {
		e := &models.ActivityLog{}
		if err := rows.Scan(&e.ID, &e.DealID, &e.Description, &e.OldStatus, &e.NewStatus, &e.ActorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
