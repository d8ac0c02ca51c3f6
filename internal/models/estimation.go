package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EstimationStatus string

const (
	EstimationDraft            EstimationStatus = "draft"
	EstimationApproved         EstimationStatus = "approved"
	EstimationPendingDiscount  EstimationStatus = "pending_discount_approval"
	EstimationDiscountApproved EstimationStatus = "discount_approved"
	EstimationDiscountRejected EstimationStatus = "discount_rejected"
)

// Estimation — версия сметы по сделке. Рабочая всегда последняя версия.
type Estimation struct {
	ID      int              `json:"id"`
	DealID  int              `json:"deal_id"`
	Version int              `json:"version"`
	Status  EstimationStatus `json:"status"`

	RequestedDiscount decimal.NullDecimal `json:"requested_discount"`
	ApprovedDiscount  decimal.NullDecimal `json:"approved_discount"`

	RequestedBy *int       `json:"requested_by,omitempty"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	DecidedBy   *int       `json:"decided_by,omitempty"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`

	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`

	Items []EstimationItem `json:"items,omitempty"`
}

// EstimationItem — позиция сметы. Цена фиксируется на момент составления
// и больше не пересчитывается из актуального прайса.
type EstimationItem struct {
	ID           int             `json:"id"`
	EstimationID int             `json:"estimation_id"`
	ItemID       int             `json:"item_id"`
	ItemKind     string          `json:"item_kind"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"` // quantity * unit_price
}

// ApprovedForProposal: обе формы одобрения открывают выдачу КП и закрытие.
func (s EstimationStatus) ApprovedForProposal() bool {
	return s == EstimationApproved || s == EstimationDiscountApproved
}
