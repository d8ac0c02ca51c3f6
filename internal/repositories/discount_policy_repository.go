package repositories

import (
	"database/sql"

	"github.com/lib/pq"

	"dealdesk/internal/models"
)

// Политики скидок read-only для этой подсистемы: заводятся миграциями/админкой.
type DiscountPolicyRepository interface {
	ByRoles(roles []string) ([]models.DiscountPolicy, error)
	List() ([]models.DiscountPolicy, error)
}

type discountPolicyRepository struct {
	db *sql.DB
}

func NewDiscountPolicyRepository(db *sql.DB) DiscountPolicyRepository {
	return &discountPolicyRepository{db: db}
}

func (r *discountPolicyRepository) scanAll(rows *sql.Rows) ([]models.DiscountPolicy, error) {
	defer rows.Close()
	var policies []models.DiscountPolicy
	for rows.Next() {
		var p models.DiscountPolicy
		if err := rows.Scan(&p.ID, &p.Role, &p.AuthorityLimit, &p.MaxDiscountLimit); err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func (r *discountPolicyRepository) ByRoles(roles []string) ([]models.DiscountPolicy, error) {
	const q = `
		SELECT id, role, authority_limit, max_discount_limit
		FROM discount_policies
		WHERE role = ANY($1)
	`
	rows, err := r.db.Query(q, pq.Array(roles))
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}

func (r *discountPolicyRepository) List() ([]models.DiscountPolicy, error) {
	rows, err := r.db.Query(`SELECT id, role, authority_limit, max_discount_limit FROM discount_policies ORDER BY role`)
	if err != nil {
		return nil, err
	}
	return r.scanAll(rows)
}
