// Package testdb opens throwaway sqlite databases migrated with the full schema and
// seeds the bakery fixture used across package tests.
package testdb

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var nameReplacer = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// Open returns a migrated in-memory database private to t. The pool is pinned to one
// connection so transactions and plain reads share the same database.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + nameReplacer.Replace(t.Name()) + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.MigrateTable(db))
	return db
}

// Fixture is the seeded master data: two financial years, three locations and the
// control ledgers every posting needs.
type Fixture struct {
	DB       *gorm.DB
	Database *models.Database
	Settings *models.SettingsStore

	OpenYear   models.FinancialYear
	LockedYear models.FinancialYear

	Primary models.Location
	Outlet  models.Location
	Kitchen models.Location

	CashLedger     models.Ledger
	SaleLedger     models.Ledger
	TransferLedger models.Ledger
	TaxLedger      models.Ledger
	CustomerLedger models.Ledger

	SaleVoucherId          int
	StockTransferVoucherId int
	JournalVoucherId       int

	ProductId int
	FlourId   int
	SugarId   int
}

// InOpenYear is a transaction date inside the open financial year.
var InOpenYear = time.Date(2026, 5, 10, 10, 30, 0, 0, time.UTC)

// InLockedYear is a transaction date inside the locked financial year.
var InLockedYear = time.Date(2025, 6, 10, 10, 30, 0, 0, time.UTC)

// Seed opens a database for t and fills it with the standard fixture. The settings
// store runs without a cache.
func Seed(t *testing.T) *Fixture {
	t.Helper()
	db := Open(t)
	f := &Fixture{
		DB:                     db,
		Database:               models.NewDatabase(db),
		Settings:               models.NewSettingsStore(nil, 0),
		SaleVoucherId:          1,
		StockTransferVoucherId: 2,
		JournalVoucherId:       3,
		ProductId:              101,
		FlourId:                201,
		SugarId:                202,
	}

	f.LockedYear = models.FinancialYear{
		Name:      "2025-26",
		StartDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC),
		Locked:    true,
		Status:    true,
	}
	f.OpenYear = models.FinancialYear{
		Name:      "2026-27",
		StartDate: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 3, 31, 23, 59, 59, 0, time.UTC),
		Status:    true,
	}
	require.NoError(t, db.Create(&f.LockedYear).Error)
	require.NoError(t, db.Create(&f.OpenYear).Error)

	f.CashLedger = createLedger(t, db, "Cash", "Asset")
	f.SaleLedger = createLedger(t, db, "Sales", "Income")
	f.TransferLedger = createLedger(t, db, "Stock Transfer", "Income")
	f.TaxLedger = createLedger(t, db, "Output Tax", "Liability")
	f.CustomerLedger = createLedger(t, db, "Walk-in Customer", "Asset")

	f.Primary = createLocation(t, db, "Main Store", "MS")
	f.Outlet = createLocation(t, db, "City Outlet", "CO")
	f.Kitchen = createLocation(t, db, "Central Kitchen", "CK")

	settings := map[string]int{
		models.SettingPrimaryLocationId:      f.Primary.ID,
		models.SettingRecipeLocationId:       f.Kitchen.ID,
		models.SettingCashLedgerId:           f.CashLedger.ID,
		models.SettingSaleLedgerId:           f.SaleLedger.ID,
		models.SettingStockTransferLedgerId:  f.TransferLedger.ID,
		models.SettingTaxLedgerId:            f.TaxLedger.ID,
		models.SettingSaleVoucherId:          f.SaleVoucherId,
		models.SettingStockTransferVoucherId: f.StockTransferVoucherId,
		models.SettingJournalVoucherId:       f.JournalVoucherId,
	}
	for key, value := range settings {
		require.NoError(t, db.Create(&models.Setting{Key: key, Value: strconv.Itoa(value)}).Error)
	}
	return f
}

func createLedger(t *testing.T, db *gorm.DB, name string, nature string) models.Ledger {
	t.Helper()
	ledger := models.Ledger{Name: name, Nature: nature, Status: true}
	require.NoError(t, db.Create(&ledger).Error)
	return ledger
}

// createLocation also opens the location's own ledger.
func createLocation(t *testing.T, db *gorm.DB, name string, code string) models.Location {
	t.Helper()
	ledger := createLedger(t, db, name, "Branch")
	loc := models.Location{Name: name, Code: code, LedgerId: ledger.ID, Status: true}
	require.NoError(t, db.Create(&loc).Error)
	return loc
}

// Count returns the number of rows of model matching the optional condition.
func Count(t *testing.T, db *gorm.DB, model any, query string, args ...any) int64 {
	t.Helper()
	q := db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	var n int64
	require.NoError(t, q.Count(&n).Error)
	return n
}
