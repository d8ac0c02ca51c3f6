package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesOrder создаётся ровно один раз при закрытии сделки в won.
// После создания меняется только DocumentPath.
type SalesOrder struct {
	ID            int             `json:"id"`
	Number        string          `json:"number"`
	DealID        int             `json:"deal_id"`
	PONumber      string          `json:"po_number"`
	OrderDate     time.Time       `json:"order_date"`
	ContractValue decimal.Decimal `json:"contract_value"`
	DocumentPath  *string         `json:"document_path,omitempty"`
	CreatedBy     int             `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}
