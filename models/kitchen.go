package models

import "github.com/shopspring/decimal"

// KitchenIssue hands raw materials from a store location over to a kitchen.
type KitchenIssue struct {
	TransactionBase
	LocationId  int             `gorm:"index;not null" json:"location_id" validate:"required"`
	KitchenId   int             `gorm:"index;not null" json:"kitchen_id" validate:"required"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
}

type KitchenIssueDetail struct {
	LineBase
}

// KitchenProduction records finished goods coming out of a kitchen. KitchenId defaults
// to the producing location.
type KitchenProduction struct {
	TransactionBase
	LocationId  int             `gorm:"index;not null" json:"location_id" validate:"required"`
	KitchenId   int             `gorm:"index;not null" json:"kitchen_id"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
}

type KitchenProductionDetail struct {
	LineBase
}

type plainLine interface {
	base() *LineBase
}

func (l *KitchenIssueDetail) base() *LineBase      { return &l.LineBase }
func (l *KitchenProductionDetail) base() *LineBase { return &l.LineBase }

// sumPlainLines values unpriced lines at quantity x rate and returns the header totals.
func sumPlainLines[L plainLine](lines []L) (int, decimal.Decimal, decimal.Decimal) {
	qty, amount := decimal.Zero, decimal.Zero
	for _, l := range lines {
		line := l.base()
		line.Total = line.Quantity.Mul(line.Rate)
		line.NetRate = line.Rate
		qty = qty.Add(line.Quantity)
		amount = amount.Add(line.Total)
	}
	return len(lines), qty, amount
}

func (k *KitchenIssue) ApplyCart(lines []*KitchenIssueDetail) {
	k.TotalItems, k.TotalQuantity, k.TotalAmount = sumPlainLines(lines)
}

func (k *KitchenProduction) ApplyCart(lines []*KitchenProductionDetail) {
	k.TotalItems, k.TotalQuantity, k.TotalAmount = sumPlainLines(lines)
}
