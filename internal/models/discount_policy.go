package models

import "github.com/shopspring/decimal"

// DiscountPolicy — одна запись на роль. AuthorityLimit — процент, который
// роль даёт без согласования; MaxDiscountLimit — потолок даже с согласованием.
// Инвариант в БД: authority_limit <= max_discount_limit.
type DiscountPolicy struct {
	ID               int             `json:"id"`
	Role             string          `json:"role"`
	AuthorityLimit   decimal.Decimal `json:"authority_limit"`
	MaxDiscountLimit decimal.Decimal `json:"max_discount_limit"`
}
