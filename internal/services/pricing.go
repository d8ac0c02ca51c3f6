package services

import (
	"dealdesk/internal/models"

	"github.com/shopspring/decimal"
)

// Ставка налога фиксирована для всей подсистемы, не параметр запроса.
var TaxRatePct = decimal.NewFromInt(11)

var hundred = decimal.NewFromInt(100)

// PriceBreakdown — разбивка контрактной стоимости.
type PriceBreakdown struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	AfterDiscount  decimal.Decimal `json:"after_discount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}

// ComputeContractValue — чистый расчёт: сумма позиций -> скидка -> налог.
// Позиции берутся с замороженными total_price; промежуточные значения
// не округляются, округление только на выдаче (Rounded).
func ComputeContractValue(items []models.EstimationItem, discountPct, taxPct decimal.Decimal) PriceBreakdown {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.TotalPrice)
	}
	discountAmount := subtotal.Mul(discountPct).Div(hundred)
	afterDiscount := subtotal.Sub(discountAmount)
	taxAmount := afterDiscount.Mul(taxPct).Div(hundred)
	return PriceBreakdown{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		AfterDiscount:  afterDiscount,
		TaxAmount:      taxAmount,
		GrandTotal:     afterDiscount.Add(taxAmount),
	}
}

// Rounded — презентационное округление до 2 знаков.
func (b PriceBreakdown) Rounded() PriceBreakdown {
	return PriceBreakdown{
		Subtotal:       b.Subtotal.Round(2),
		DiscountAmount: b.DiscountAmount.Round(2),
		AfterDiscount:  b.AfterDiscount.Round(2),
		TaxAmount:      b.TaxAmount.Round(2),
		GrandTotal:     b.GrandTotal.Round(2),
	}
}
