package models

// StockTransfer moves goods from LocationId to ToLocationId. The receiving
// location is billed through its own ledger.
type StockTransfer struct {
	TransactionBase
	LocationId   int `gorm:"index;not null" json:"location_id" validate:"required"`
	ToLocationId int `gorm:"index;not null" json:"to_location_id" validate:"required,nefield=LocationId"`
	PricedHeader
}

type StockTransferDetail struct {
	LineBase
	TaxBreakdown
}

func (l *StockTransferDetail) pricing() (*LineBase, *TaxBreakdown) {
	return &l.LineBase, &l.TaxBreakdown
}

func (s *StockTransfer) ApplyCart(lines []*StockTransferDetail) {
	t := rollUp(lines)
	s.TotalItems = t.Items
	s.TotalQuantity = t.Quantity
	s.PricedHeader.apply(t)
}
