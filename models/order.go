package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a customer pre-order. It moves no stock and posts nothing; it is consumed
// when a sale is raised against it.
type Order struct {
	TransactionBase
	LocationId       int             `gorm:"index;not null" json:"location_id" validate:"required"`
	PartyId          int             `gorm:"index" json:"party_id"`
	DeliveryDateTime *time.Time      `json:"delivery_date_time"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
}

type OrderDetail struct {
	LineBase
}

func (l *OrderDetail) base() *LineBase { return &l.LineBase }

func (o *Order) ApplyCart(lines []*OrderDetail) {
	o.TotalItems, o.TotalQuantity, o.TotalAmount = sumPlainLines(lines)
}
