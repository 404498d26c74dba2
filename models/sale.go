package models

type Sale struct {
	TransactionBase
	LocationId int `gorm:"index;not null" json:"location_id" validate:"required"`
	// PartyId is the customer ledger; required when part of the bill is on credit.
	PartyId int  `gorm:"index" json:"party_id"`
	OrderId *int `gorm:"index" json:"order_id"`
	PricedHeader
}

type SaleDetail struct {
	LineBase
	TaxBreakdown
}

func (l *SaleDetail) pricing() (*LineBase, *TaxBreakdown) { return &l.LineBase, &l.TaxBreakdown }

// ApplyCart prices every line and rolls the cart up into the header totals.
// Payment splits are left to the caller.
func (s *Sale) ApplyCart(lines []*SaleDetail) {
	t := rollUp(lines)
	s.TotalItems = t.Items
	s.TotalQuantity = t.Quantity
	s.PricedHeader.apply(t)
}
