package utils

import (
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercent DiscountType = "P"
	DiscountTypeAmount  DiscountType = "A"
)

var decimalOneHundred = decimal.NewFromInt(100)

func CalculateTaxAmount(totalAmount decimal.Decimal, taxRate decimal.Decimal, isTaxInclusive bool) decimal.Decimal {
	if taxRate.IsZero() || totalAmount.IsZero() {
		return decimal.Zero
	}
	if isTaxInclusive {
		// Tax-inclusive: (totalAmount / (100 + taxRate)) * taxRate
		return totalAmount.Mul(taxRate).DivRound(taxRate.Add(decimalOneHundred), 4)
	}
	// Tax-exclusive: (totalAmount / 100) * taxRate
	return totalAmount.Mul(taxRate).DivRound(decimalOneHundred, 4)
}

func CalculateDiscountAmount(subTotal decimal.Decimal, discount decimal.Decimal, discountType DiscountType) decimal.Decimal {
	if !discount.GreaterThan(decimal.Zero) {
		return decimal.Zero
	}
	if discountType == DiscountTypePercent {
		return subTotal.Mul(discount).DivRound(decimalOneHundred, 4)
	}
	return discount
}
