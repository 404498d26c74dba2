package models

import (
	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&AccountingEntry{}, &AccountingLine{},
		&FinancialYear{},
		&KitchenIssue{}, &KitchenIssueDetail{}, &KitchenProduction{}, &KitchenProductionDetail{},
		&Ledger{}, &Location{},
		&Order{}, &OrderDetail{},
		&Recipe{}, &RecipeDetail{},
		&Sale{}, &SaleDetail{}, &Setting{}, &StockLedgerEntry{}, &StockTransfer{}, &StockTransferDetail{},
		&TransactionSequence{},
	)
}
