package repositories

import (
	"database/sql"
	"fmt"

	"dealdesk/internal/models"
)

type EstimationRepository interface {
	// Create пишет смету вместе с позициями и зеркалом статуса на сделке
	// одной транзакцией.
	Create(est *models.Estimation) (int64, error)
	GetByID(id int) (*models.Estimation, error)
	LatestByDeal(dealID int) (*models.Estimation, error)
	NextVersion(dealID int) (int, error)
	// UpdateWorkflow — условный UPDATE workflow-полей по старому статусу
	// плюс зеркало на сделке, одной транзакцией. false: статус уже не from,
	// гонка проиграна. Позиции заморожены и не трогаются.
	UpdateWorkflow(est *models.Estimation, from models.EstimationStatus) (bool, error)
}

type estimationRepository struct {
	db *sql.DB
}

func NewEstimationRepository(db *sql.DB) EstimationRepository {
	return &estimationRepository{db: db}
}

const estimationColumns = `id, deal_id, version, status, requested_discount, approved_discount,
	requested_by, requested_at, decided_by, decided_at, created_by, created_at`

func scanEstimation(row interface{ Scan(...any) error }) (*models.Estimation, error) {
	e := &models.Estimation{}
	err := row.Scan(
		&e.ID, &e.DealID, &e.Version, &e.Status,
		&e.RequestedDiscount, &e.ApprovedDiscount,
		&e.RequestedBy, &e.RequestedAt, &e.DecidedBy, &e.DecidedAt,
		&e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *estimationRepository) Create(est *models.Estimation) (int64, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO estimations (deal_id, version, status, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`
	var id int64
	if err := tx.QueryRow(q, est.DealID, est.Version, est.Status, est.CreatedBy, est.CreatedAt).Scan(&id); err != nil {
		return 0, mapUnique(err)
	}

	const itemQ = `
		INSERT INTO estimation_items (estimation_id, item_id, item_kind, quantity, unit_price, total_price)
		VALUES ($1,$2,$3,$4,$5,$6)
	`
	for i := range est.Items {
		it := &est.Items[i]
		it.EstimationID = int(id)
		if _, err := tx.Exec(itemQ, id, it.ItemID, it.ItemKind, it.Quantity, it.UnitPrice, it.TotalPrice); err != nil {
			return 0, fmt.Errorf("insert estimation item: %w", err)
		}
	}

	if err := mirrorOnDeal(tx, est.DealID, est.Status); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *estimationRepository) loadItems(est *models.Estimation) error {
	const q = `
		SELECT id, estimation_id, item_id, item_kind, quantity, unit_price, total_price
		FROM estimation_items
		WHERE estimation_id=$1
		ORDER BY id
	`
	rows, err := r.db.Query(q, est.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it models.EstimationItem
		if err := rows.Scan(&it.ID, &it.EstimationID, &it.ItemID, &it.ItemKind, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return err
		}
		est.Items = append(est.Items, it)
	}
	return rows.Err()
}

func (r *estimationRepository) GetByID(id int) (*models.Estimation, error) {
	q := `SELECT ` + estimationColumns + ` FROM estimations WHERE id=$1`
	est, err := scanEstimation(r.db.QueryRow(q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get estimation by id: %w", err)
	}
	if err := r.loadItems(est); err != nil {
		return nil, err
	}
	return est, nil
}

func (r *estimationRepository) LatestByDeal(dealID int) (*models.Estimation, error) {
	q := `SELECT ` + estimationColumns + ` FROM estimations WHERE deal_id=$1 ORDER BY version DESC LIMIT 1`
	est, err := scanEstimation(r.db.QueryRow(q, dealID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest estimation: %w", err)
	}
	if err := r.loadItems(est); err != nil {
		return nil, err
	}
	return est, nil
}

func (r *estimationRepository) NextVersion(dealID int) (int, error) {
	var v int
	err := r.db.QueryRow(
		`SELECT COALESCE(MAX(version), 0) + 1 FROM estimations WHERE deal_id=$1`, dealID,
	).Scan(&v)
	return v, err
}

// mirrorOnDeal держит на сделке копию статуса последней сметы — валидатор
// переходов читает её из снапшота сделки без лишних запросов.
func mirrorOnDeal(e execer, dealID int, status models.EstimationStatus) error {
	if _, err := e.Exec(
		`UPDATE deals SET estimation_status=$1, updated_at=NOW() WHERE id=$2`,
		status, dealID,
	); err != nil {
		return fmt.Errorf("mirror estimation status: %w", err)
	}
	return nil
}

func (r *estimationRepository) UpdateWorkflow(est *models.Estimation, from models.EstimationStatus) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	const q = `
		UPDATE estimations
		SET status=$1, requested_discount=$2, approved_discount=$3,
		    requested_by=$4, requested_at=$5, decided_by=$6, decided_at=$7
		WHERE id=$8 AND status=$9
	`
	res, err := tx.Exec(q,
		est.Status, est.RequestedDiscount, est.ApprovedDiscount,
		est.RequestedBy, est.RequestedAt, est.DecidedBy, est.DecidedAt,
		est.ID, from,
	)
	if err != nil {
		return false, fmt.Errorf("update estimation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	// Зеркало пишется той же транзакцией: не записали — откатили и смету.
	if err := mirrorOnDeal(tx, est.DealID, est.Status); err != nil {
		return false, err
	}
	return true, tx.Commit()
}
