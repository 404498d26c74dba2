package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type StockType string

const (
	StockTypeSale              StockType = "Sale"
	StockTypePurchase          StockType = "Purchase"
	StockTypeStockTransfer     StockType = "StockTransfer"
	StockTypeKitchenIssue      StockType = "KitchenIssue"
	StockTypeKitchenProduction StockType = "KitchenProduction"
	StockTypeAdjustment        StockType = "Adjustment"
)

type ItemType string

const (
	ItemTypeProduct     ItemType = "Product"
	ItemTypeRawMaterial ItemType = "RawMaterial"
)

// StockLedgerEntry is one signed quantity movement. Rows of one
// (Type, TransactionId[, LocationId]) are always replaced as a set.
type StockLedgerEntry struct {
	ID              int             `gorm:"primaryKey" json:"id"`
	ItemId          int             `gorm:"index:idx_stock_item_location;not null" json:"item_id"`
	ItemType        ItemType        `gorm:"size:20;not null" json:"item_type"`
	Quantity        decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	NetRate         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_rate"`
	Type            StockType       `gorm:"size:30;index:idx_stock_source;not null" json:"type"`
	TransactionId   int             `gorm:"index:idx_stock_source;not null" json:"transaction_id"`
	TransactionNo   string          `gorm:"size:50" json:"transaction_no"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transaction_date"`
	LocationId      int             `gorm:"index:idx_stock_item_location;not null" json:"location_id"`
}

type StockLedgerStore struct{}

// ByTransaction returns the current stock set of (type, transactionId), any location.
func (StockLedgerStore) ByTransaction(uow UnitOfWork, stockType StockType, transactionId int) ([]StockLedgerEntry, error) {
	var rows []StockLedgerEntry
	err := uow.DB().
		Where("type = ? AND transaction_id = ?", stockType, transactionId).
		Order("id").
		Find(&rows).Error
	return rows, err
}

// ClosingStock is the running sum of movements of an item at a location up to and including at.
func (StockLedgerStore) ClosingStock(uow UnitOfWork, itemId int, locationId int, at time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := uow.DB().Model(&StockLedgerEntry{}).
		Select("SUM(quantity)").
		Where("item_id = ? AND location_id = ? AND transaction_date <= ?", itemId, locationId, at).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
