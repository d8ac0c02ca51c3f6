package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"dealdesk/internal/models"
)

type DealRepository interface {
	Create(deal *models.Deal) (int64, error)
	GetByID(id int) (*models.Deal, error)
	Update(deal *models.Deal) error
	Delete(id int) error
	ListPaginated(limit, offset int) ([]*models.Deal, error)
	ListByOwner(ownerID, limit, offset int) ([]*models.Deal, error)
	// ListByStatus: ownerID > 0 сужает выборку до сделок владельца.
	ListByStatus(status models.DealStatus, ownerID, limit, offset int) ([]*models.Deal, error)

	// MoveStatus — условный UPDATE по старому статусу плюс запись журнала,
	// одной транзакцией. false: статус уже не from, гонка проиграна.
	MoveStatus(dealID int, from, to models.DealStatus, entry *models.ActivityLog) (bool, error)

	CountByStatus() (map[models.DealStatus]int, error)
}

type dealRepository struct {
	db *sql.DB
}

func NewDealRepository(db *sql.DB) DealRepository {
	return &dealRepository{db: db}
}

const dealColumns = `id, number, title, client_id, owner_id, status, estimation_status,
	estimated_value, contract_value, priority, updated_by, closed_at, created_at, updated_at`

func scanDeal(row interface{ Scan(...any) error }) (*models.Deal, error) {
	d := &models.Deal{}
	var estStatus sql.NullString
	err := row.Scan(
		&d.ID, &d.Number, &d.Title, &d.ClientID, &d.OwnerID,
		&d.Status, &estStatus,
		&d.EstimatedValue, &d.ContractValue,
		&d.Priority, &d.UpdatedBy, &d.ClosedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if estStatus.Valid {
		s := models.EstimationStatus(estStatus.String)
		d.EstimationStatus = &s
	}
	return d, nil
}

func (r *dealRepository) Create(deal *models.Deal) (int64, error) {
	const q = `
		INSERT INTO deals (number, title, client_id, owner_id, status,
			estimated_value, priority, updated_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(q,
		deal.Number, deal.Title, deal.ClientID, deal.OwnerID, deal.Status,
		deal.EstimatedValue, deal.Priority, deal.UpdatedBy, deal.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, mapUnique(err)
	}
	return id, nil
}

func (r *dealRepository) GetByID(id int) (*models.Deal, error) {
	q := `SELECT ` + dealColumns + ` FROM deals WHERE id=$1`
	deal, err := scanDeal(r.db.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get deal by id: %w", err)
	}
	return deal, nil
}

func (r *dealRepository) Update(deal *models.Deal) error {
	const q = `
		UPDATE deals
		SET title=$1, client_id=$2, owner_id=$3, estimated_value=$4,
		    priority=$5, updated_by=$6, updated_at=$7
		WHERE id=$8
	`
	_, err := r.db.Exec(q,
		deal.Title, deal.ClientID, deal.OwnerID, deal.EstimatedValue,
		deal.Priority, deal.UpdatedBy, time.Now(), deal.ID,
	)
	if err != nil {
		return fmt.Errorf("update deal: %w", err)
	}
	return nil
}

func (r *dealRepository) Delete(id int) error {
	result, err := r.db.Exec(`DELETE FROM deals WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete deal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete deal: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("deal id=%d not found", id)
	}
	return nil
}

func (r *dealRepository) list(q string, args ...any) ([]*models.Deal, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deals []*models.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

func (r *dealRepository) ListPaginated(limit, offset int) ([]*models.Deal, error) {
	q := `SELECT ` + dealColumns + ` FROM deals ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.list(q, limit, offset)
}

func (r *dealRepository) ListByOwner(ownerID, limit, offset int) ([]*models.Deal, error) {
	q := `SELECT ` + dealColumns + ` FROM deals WHERE owner_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(q, ownerID, limit, offset)
}

func (r *dealRepository) ListByStatus(status models.DealStatus, ownerID, limit, offset int) ([]*models.Deal, error) {
	if ownerID > 0 {
		q := `SELECT ` + dealColumns + ` FROM deals WHERE status=$1 AND owner_id=$2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
		return r.list(q, status, ownerID, limit, offset)
	}
	q := `SELECT ` + dealColumns + ` FROM deals WHERE status=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(q, status, limit, offset)
}

func (r *dealRepository) MoveStatus(dealID int, from, to models.DealStatus, entry *models.ActivityLog) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE deals SET status=$1, updated_by=$2, updated_at=$3 WHERE id=$4 AND status=$5`,
		to, entry.ActorID, time.Now(), dealID, from,
	)
	if err != nil {
		return false, fmt.Errorf("move status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	// Журнал пишется той же транзакцией: не записали — откатили и статус.
	if err := insertActivity(tx, entry); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *dealRepository) CountByStatus() (map[models.DealStatus]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM deals GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[models.DealStatus]int{}
	for rows.Next() {
		var s models.DealStatus
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}
