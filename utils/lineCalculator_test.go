package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateLineExclusiveTax(t *testing.T) {
	out := CalculateLine(LineInput{
		Quantity: d("2"),
		Rate:     d("10"),
		CgstRate: d("2.5"),
		SgstRate: d("2.5"),
	})

	assert.True(t, out.BaseTotal.Equal(d("20")))
	assert.True(t, out.CgstAmount.Equal(d("0.5")))
	assert.True(t, out.SgstAmount.Equal(d("0.5")))
	assert.True(t, out.TaxAmount.Equal(d("1")))
	assert.True(t, out.ExtraTaxAmount.Equal(d("1")))
	assert.True(t, out.Total.Equal(d("21")))
	assert.True(t, out.NetRate.Equal(d("10.5")))
}

func TestCalculateLineInclusiveTaxKeepsTotal(t *testing.T) {
	out := CalculateLine(LineInput{
		Quantity:     d("1"),
		Rate:         d("105"),
		IgstRate:     d("5"),
		InclusiveTax: true,
	})

	assert.True(t, out.Total.Equal(d("105")), "got %s", out.Total)
	assert.True(t, out.TaxAmount.Equal(d("5")), "got %s", out.TaxAmount)
	assert.True(t, out.TaxableAmount.Equal(d("100")))
	assert.True(t, out.ExtraTaxAmount.IsZero())
	assert.True(t, out.IgstAmount.Equal(d("5")))
}

func TestCalculateLineDiscounts(t *testing.T) {
	pct := CalculateLine(LineInput{Quantity: d("4"), Rate: d("25"), Discount: d("10"), DiscountType: DiscountTypePercent})
	assert.True(t, pct.DiscountAmount.Equal(d("10")))
	assert.True(t, pct.Total.Equal(d("90")))

	flat := CalculateLine(LineInput{Quantity: d("4"), Rate: d("25"), Discount: d("15"), DiscountType: DiscountTypeAmount})
	assert.True(t, flat.DiscountAmount.Equal(d("15")))
	assert.True(t, flat.Total.Equal(d("85")))
}

func TestCalculateLineZeroQuantity(t *testing.T) {
	out := CalculateLine(LineInput{Rate: d("10")})
	assert.True(t, out.Total.IsZero())
	assert.True(t, out.NetRate.IsZero())
}
