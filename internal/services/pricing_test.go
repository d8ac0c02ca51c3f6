package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/internal/models"
)

func item(total string) models.EstimationItem {
	return models.EstimationItem{TotalPrice: decimal.RequireFromString(total)}
}

func TestComputeContractValue_EmptyItems(t *testing.T) {
	b := ComputeContractValue(nil, decimal.NewFromInt(10), TaxRatePct)
	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.GrandTotal.IsZero())
}

func TestComputeContractValue_NoDiscount(t *testing.T) {
	items := []models.EstimationItem{item("600000"), item("400000")}
	b := ComputeContractValue(items, decimal.Zero, TaxRatePct)

	assert.True(t, b.Subtotal.Equal(decimal.NewFromInt(1000000)), "subtotal %s", b.Subtotal)
	assert.True(t, b.DiscountAmount.IsZero())
	assert.True(t, b.TaxAmount.Equal(decimal.NewFromInt(110000)), "tax %s", b.TaxAmount)
	assert.True(t, b.GrandTotal.Equal(decimal.NewFromInt(1110000)), "grand %s", b.GrandTotal)
}

// Скидка применяется до налога: (1_000_000 - 10%) * 1.11 = 999_000.
func TestComputeContractValue_DiscountBeforeTax(t *testing.T) {
	items := []models.EstimationItem{item("1000000")}
	b := ComputeContractValue(items, decimal.NewFromInt(10), TaxRatePct)

	require.True(t, b.DiscountAmount.Equal(decimal.NewFromInt(100000)), "discount %s", b.DiscountAmount)
	require.True(t, b.AfterDiscount.Equal(decimal.NewFromInt(900000)))
	assert.True(t, b.TaxAmount.Equal(decimal.NewFromInt(99000)), "tax %s", b.TaxAmount)
	assert.True(t, b.GrandTotal.Equal(decimal.NewFromInt(999000)), "grand %s", b.GrandTotal)

	// налог после скидки < налога до скидки
	noDiscount := ComputeContractValue(items, decimal.Zero, TaxRatePct)
	assert.True(t, b.TaxAmount.LessThan(noDiscount.TaxAmount))
}

// Промежуточные значения не округляются: дробная скидка не теряет копейки
// до финального Rounded.
func TestComputeContractValue_NoIntermediateRounding(t *testing.T) {
	items := []models.EstimationItem{item("100.01"), item("0.02")}
	b := ComputeContractValue(items, decimal.RequireFromString("3.333"), TaxRatePct)

	subtotal := decimal.RequireFromString("100.03")
	require.True(t, b.Subtotal.Equal(subtotal))

	wantDiscount := subtotal.Mul(decimal.RequireFromString("3.333")).Div(decimal.NewFromInt(100))
	assert.True(t, b.DiscountAmount.Equal(wantDiscount), "want %s got %s", wantDiscount, b.DiscountAmount)

	wantGrand := subtotal.Sub(wantDiscount).Mul(decimal.RequireFromString("1.11"))
	assert.True(t, b.GrandTotal.Equal(wantGrand), "want %s got %s", wantGrand, b.GrandTotal)

	r := b.Rounded()
	assert.Equal(t, wantGrand.Round(2).String(), r.GrandTotal.String())
	assert.True(t, r.DiscountAmount.Equal(wantDiscount.Round(2)))
}

func TestComputeContractValue_FloatHostileAmounts(t *testing.T) {
	// 0.1 + 0.2 ровно 0.3, без двоичного шума
	items := []models.EstimationItem{item("0.1"), item("0.2")}
	b := ComputeContractValue(items, decimal.Zero, decimal.Zero)
	assert.Equal(t, "0.3", b.Subtotal.String())
	assert.Equal(t, "0.3", b.GrandTotal.String())
}
