package models

import (
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/shopspring/decimal"
)

// PricedTotals is the header roll-up of a priced line cart.
type PricedTotals struct {
	Items          int
	Quantity       decimal.Decimal
	BaseTotal      decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	ExtraTaxAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

type pricedLine interface {
	pricing() (*LineBase, *TaxBreakdown)
}

// priceLine fills the computed amount columns of one line from quantity, rate,
// discount and tax rates.
func priceLine(line *LineBase, tax *TaxBreakdown) {
	a := utils.CalculateLine(utils.LineInput{
		Quantity:     line.Quantity,
		Rate:         line.Rate,
		Discount:     tax.Discount,
		DiscountType: utils.DiscountType(tax.DiscountType),
		CgstRate:     tax.CgstRate,
		SgstRate:     tax.SgstRate,
		IgstRate:     tax.IgstRate,
		InclusiveTax: tax.InclusiveTax,
	})
	tax.BaseTotal = a.BaseTotal
	tax.DiscountAmount = a.DiscountAmount
	tax.CgstAmount = a.CgstAmount
	tax.SgstAmount = a.SgstAmount
	tax.IgstAmount = a.IgstAmount
	tax.ExtraTaxAmount = a.ExtraTaxAmount
	line.Total = a.Total
	line.NetRate = a.NetRate
}

func rollUp[L pricedLine](lines []L) PricedTotals {
	var t PricedTotals
	for _, l := range lines {
		line, tax := l.pricing()
		priceLine(line, tax)
		t.Items++
		t.Quantity = t.Quantity.Add(line.Quantity)
		t.BaseTotal = t.BaseTotal.Add(tax.BaseTotal)
		t.DiscountAmount = t.DiscountAmount.Add(tax.DiscountAmount)
		t.TaxAmount = t.TaxAmount.Add(tax.CgstAmount).Add(tax.SgstAmount).Add(tax.IgstAmount)
		t.ExtraTaxAmount = t.ExtraTaxAmount.Add(tax.ExtraTaxAmount)
		t.TotalAmount = t.TotalAmount.Add(line.Total)
	}
	return t
}

// PricedHeader is the money block shared by sales and stock transfers.
type PricedHeader struct {
	BaseTotal           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_total"`
	DiscountAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	TotalTaxAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_tax_amount"`
	TotalExtraTaxAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_extra_tax_amount"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaymentSplit
}

func (p *PricedHeader) apply(t PricedTotals) {
	p.BaseTotal = t.BaseTotal
	p.DiscountAmount = t.DiscountAmount
	p.TotalTaxAmount = t.TaxAmount
	p.TotalExtraTaxAmount = t.ExtraTaxAmount
	p.TotalAmount = t.TotalAmount
}
