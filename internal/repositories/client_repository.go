package repositories

import (
	"database/sql"
	"fmt"

	"dealdesk/internal/models"
)

type ClientRepository interface {
	Create(client *models.Client) (int64, error)
	GetByID(id int) (*models.Client, error)
	GetByBIN(bin string) (*models.Client, error)
	Update(client *models.Client) error
	List(limit, offset int) ([]*models.Client, error)
}

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(client *models.Client) (int64, error) {
	const q = `
		INSERT INTO clients (name, bin_iin, address, contact_info, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRow(q, client.Name, client.BinIin, client.Address, client.ContactInfo, client.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create client: %w", err)
	}
	return id, nil
}

func (r *clientRepository) scanOne(row *sql.Row) (*models.Client, error) {
	c := &models.Client{}
	err := row.Scan(&c.ID, &c.Name, &c.BinIin, &c.Address, &c.ContactInfo, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *clientRepository) GetByID(id int) (*models.Client, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, bin_iin, address, contact_info, created_at FROM clients WHERE id=$1`, id))
}

func (r *clientRepository) GetByBIN(bin string) (*models.Client, error) {
	return r.scanOne(r.db.QueryRow(
		`SELECT id, name, bin_iin, address, contact_info, created_at FROM clients WHERE bin_iin=$1`, bin))
}

func (r *clientRepository) Update(client *models.Client) error {
	const q = `UPDATE clients SET name=$1, bin_iin=$2, address=$3, contact_info=$4 WHERE id=$5`
	_, err := r.db.Exec(q, client.Name, client.BinIin, client.Address, client.ContactInfo, client.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return nil
}

func (r *clientRepository) List(limit, offset int) ([]*models.Client, error) {
	rows, err := r.db.Query(
		`SELECT id, name, bin_iin, address, contact_info, created_at FROM clients ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c := &models.Client{}
		if err := rows.Scan(&c.ID, &c.Name, &c.BinIin, &c.Address, &c.ContactInfo, &c.CreatedAt); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
