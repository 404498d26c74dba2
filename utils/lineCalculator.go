package utils

import "github.com/shopspring/decimal"

// LineInput is what the till or back-office form submits for one cart line.
type LineInput struct {
	Quantity     decimal.Decimal
	Rate         decimal.Decimal
	Discount     decimal.Decimal
	DiscountType DiscountType
	CgstRate     decimal.Decimal
	SgstRate     decimal.Decimal
	IgstRate     decimal.Decimal
	InclusiveTax bool
}

type LineAmounts struct {
	BaseTotal      decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	CgstAmount     decimal.Decimal
	SgstAmount     decimal.Decimal
	IgstAmount     decimal.Decimal
	TaxAmount      decimal.Decimal
	// ExtraTaxAmount is the tax charged on top of the rate; zero for inclusive lines.
	ExtraTaxAmount decimal.Decimal
	Total          decimal.Decimal
	NetRate        decimal.Decimal
}

func CalculateLine(in LineInput) LineAmounts {
	var out LineAmounts
	out.BaseTotal = in.Quantity.Mul(in.Rate)
	out.DiscountAmount = CalculateDiscountAmount(out.BaseTotal, in.Discount, in.DiscountType)
	gross := out.BaseTotal.Sub(out.DiscountAmount)

	taxRate := in.CgstRate.Add(in.SgstRate).Add(in.IgstRate)
	if in.InclusiveTax {
		out.TaxAmount = CalculateTaxAmount(gross, taxRate, true)
		out.TaxableAmount = gross.Sub(out.TaxAmount)
		if !taxRate.IsZero() {
			out.CgstAmount = out.TaxAmount.Mul(in.CgstRate).DivRound(taxRate, 4)
			out.SgstAmount = out.TaxAmount.Mul(in.SgstRate).DivRound(taxRate, 4)
			out.IgstAmount = out.TaxAmount.Sub(out.CgstAmount).Sub(out.SgstAmount)
		}
		out.Total = gross
	} else {
		out.TaxableAmount = gross
		out.CgstAmount = CalculateTaxAmount(gross, in.CgstRate, false)
		out.SgstAmount = CalculateTaxAmount(gross, in.SgstRate, false)
		out.IgstAmount = CalculateTaxAmount(gross, in.IgstRate, false)
		out.TaxAmount = out.CgstAmount.Add(out.SgstAmount).Add(out.IgstAmount)
		out.ExtraTaxAmount = out.TaxAmount
		out.Total = gross.Add(out.TaxAmount)
	}

	if in.Quantity.IsZero() {
		out.NetRate = decimal.Zero
	} else {
		out.NetRate = out.Total.DivRound(in.Quantity, 4)
	}
	return out
}
