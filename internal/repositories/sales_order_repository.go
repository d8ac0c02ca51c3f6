package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"dealdesk/internal/models"
)

type SalesOrderRepository interface {
	GetByID(id int) (*models.SalesOrder, error)
	GetByDealID(dealID int) (*models.SalesOrder, error)
	// LastNumber — максимальный выданный номер с данным префиксом периода,
	// "" если за период заказов ещё не было.
	LastNumber(prefix string) (string, error)
	// Finalize одной транзакцией: вставка заказа, перевод сделки в won
	// (условно по старому статусу) и запись журнала.
	// ErrDuplicate — коллизия номера заказа; false — сделка уже ушла
	// из ожидаемого статуса.
	Finalize(order *models.SalesOrder, deal *models.Deal, entry *models.ActivityLog) (bool, error)
	SetDocumentPath(orderID int, path string) error
}

type salesOrderRepository struct {
	db *sql.DB
}

func NewSalesOrderRepository(db *sql.DB) SalesOrderRepository {
	return &salesOrderRepository{db: db}
}

const orderColumns = `id, number, deal_id, po_number, order_date, contract_value, document_path, created_by, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.SalesOrder, error) {
	o := &models.SalesOrder{}
	err := row.Scan(&o.ID, &o.Number, &o.DealID, &o.PONumber, &o.OrderDate,
		&o.ContractValue, &o.DocumentPath, &o.CreatedBy, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *salesOrderRepository) GetByID(id int) (*models.SalesOrder, error) {
	order, err := scanOrder(r.db.QueryRow(`SELECT `+orderColumns+` FROM sales_orders WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	return order, nil
}

func (r *salesOrderRepository) GetByDealID(dealID int) (*models.SalesOrder, error) {
	order, err := scanOrder(r.db.QueryRow(`SELECT `+orderColumns+` FROM sales_orders WHERE deal_id=$1`, dealID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sales order by deal: %w", err)
	}
	return order, nil
}

func (r *salesOrderRepository) LastNumber(prefix string) (string, error) {
	// Сортируем по числовому суффиксу: лексикографический порядок ломается,
	// когда последовательность перерастает ширину паддинга (99999 > 100000 как строки).
	var number string
	err := r.db.QueryRow(
		`SELECT number FROM sales_orders WHERE number LIKE $1 || '%'
		 ORDER BY split_part(number, '-', 3)::int DESC LIMIT 1`,
		prefix,
	).Scan(&number)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last order number: %w", err)
	}
	return number, nil
}

func (r *salesOrderRepository) Finalize(order *models.SalesOrder, deal *models.Deal, entry *models.ActivityLog) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Блокируем строку сделки на время транзакции.
	var current models.DealStatus
	err = tx.QueryRow(`SELECT status FROM deals WHERE id=$1 FOR UPDATE`, deal.ID).Scan(&current)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock deal: %w", err)
	}
	if current != deal.Status {
		return false, nil
	}

	const insertQ = `
		INSERT INTO sales_orders (number, deal_id, po_number, order_date, contract_value, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`
	var orderID int64
	err = tx.QueryRow(insertQ,
		order.Number, order.DealID, order.PONumber, order.OrderDate,
		order.ContractValue, order.CreatedBy, order.CreatedAt,
	).Scan(&orderID)
	if err != nil {
		return false, mapUnique(err)
	}
	order.ID = int(orderID)

	const closeQ = `
		UPDATE deals
		SET status=$1, contract_value=$2, closed_at=$3, updated_by=$4, updated_at=$5
		WHERE id=$6
	`
	if _, err := tx.Exec(closeQ,
		models.DealWon, order.ContractValue, order.OrderDate, entry.ActorID, time.Now(), deal.ID,
	); err != nil {
		return false, fmt.Errorf("close deal: %w", err)
	}

	if err := insertActivity(tx, entry); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *salesOrderRepository) SetDocumentPath(orderID int, path string) error {
	_, err := r.db.Exec(`UPDATE sales_orders SET document_path=$1 WHERE id=$2`, path, orderID)
	if err != nil {
		return fmt.Errorf("set document path: %w", err)
	}
	return nil
}
