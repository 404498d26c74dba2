package workflow_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/testdb"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/mmdatafocus/bakery_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestEngine(t *testing.T, f *testdb.Fixture, opts workflow.EngineOptions) *workflow.Engine {
	t.Helper()
	if opts.Logger == nil {
		logger, _ := test.NewNullLogger()
		opts.Logger = logger
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return fixedNow }
	}
	return workflow.NewEngine(f.Database, workflow.DefaultLookups(f.Settings), opts)
}

func userCtx(userId int) context.Context {
	ctx := utils.SetUserIdInContext(context.Background(), userId)
	return utils.SetPlatformInContext(ctx, "POS")
}

// newSale is the reference cash sale: 2 x 10 at 5% CGST+SGST and 1 x 20 at 5% IGST,
// base 40, tax 2, total 42.
func newSale(locationId int) (*models.Sale, []*models.SaleDetail) {
	lines := []*models.SaleDetail{
		{
			LineBase:     models.LineBase{ItemId: 101, Quantity: d("2"), Rate: d("10"), Status: true},
			TaxBreakdown: models.TaxBreakdown{CgstRate: d("2.5"), SgstRate: d("2.5")},
		},
		{
			LineBase:     models.LineBase{ItemId: 102, Quantity: d("1"), Rate: d("20"), Status: true},
			TaxBreakdown: models.TaxBreakdown{IgstRate: d("5")},
		},
	}
	sale := &models.Sale{LocationId: locationId}
	sale.TransactionDateTime = testdb.InOpenYear
	sale.ApplyCart(lines)
	sale.CashAmount = sale.TotalAmount
	return sale, lines
}

func productLine[L any](newLine func(models.LineBase) L, itemId int, qty string, rate string) L {
	return newLine(models.LineBase{ItemId: itemId, Quantity: d(qty), Rate: d(rate), Status: true})
}

func transferLine(b models.LineBase) *models.StockTransferDetail {
	return &models.StockTransferDetail{LineBase: b}
}

func productionLine(b models.LineBase) *models.KitchenProductionDetail {
	return &models.KitchenProductionDetail{LineBase: b}
}

func issueLine(b models.LineBase) *models.KitchenIssueDetail {
	return &models.KitchenIssueDetail{LineBase: b}
}

func orderLine(b models.LineBase) *models.OrderDetail {
	return &models.OrderDetail{LineBase: b}
}

func recipeLine(b models.LineBase) *models.RecipeDetail {
	return &models.RecipeDetail{LineBase: b}
}

func stockRows(t *testing.T, f *testdb.Fixture, stockType models.StockType, transactionId int) []models.StockLedgerEntry {
	t.Helper()
	rows, err := models.StockLedgerStore{}.ByTransaction(f.Database.Reader(context.Background()), stockType, transactionId)
	require.NoError(t, err)
	return rows
}

// assertStock checks the signed quantity booked for an item at a location.
func assertStock(t *testing.T, rows []models.StockLedgerEntry, itemId int, locationId int, qty string) {
	t.Helper()
	for _, r := range rows {
		if r.ItemId == itemId && r.LocationId == locationId {
			assert.True(t, r.Quantity.Equal(d(qty)), "item %d at %d: got %s, want %s", itemId, locationId, r.Quantity, qty)
			return
		}
	}
	t.Errorf("no stock row for item %d at location %d", itemId, locationId)
}

// stockContent reduces stock rows to item, location, quantity and rate, ignoring row ids.
func stockContent(rows []models.StockLedgerEntry) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, fmt.Sprintf("%s %d@%d %s x %s", r.ItemType, r.ItemId, r.LocationId, r.Quantity, r.NetRate))
	}
	sort.Strings(out)
	return out
}

func postingContent(lines []models.AccountingLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Debit.Valid {
			out = append(out, fmt.Sprintf("Dr %d %s", l.LedgerId, l.Debit.Decimal))
		} else {
			out = append(out, fmt.Sprintf("Cr %d %s", l.LedgerId, l.Credit.Decimal))
		}
	}
	sort.Strings(out)
	return out
}

// activePosting returns the single active derived entry of a source transaction.
func activePosting(t *testing.T, f *testdb.Fixture, voucherId int, referenceId int) (*models.AccountingEntry, []models.AccountingLine) {
	t.Helper()
	var entries []models.AccountingEntry
	require.NoError(t, f.DB.Where("voucher_id = ? AND reference_id = ? AND status = ?", voucherId, referenceId, true).Find(&entries).Error)
	if len(entries) == 0 {
		return nil, nil
	}
	require.Len(t, entries, 1)
	var lines []models.AccountingLine
	require.NoError(t, f.DB.Where("master_id = ? AND status = ?", entries[0].ID, true).Order("id").Find(&lines).Error)
	return &entries[0], lines
}

func assertDebit(t *testing.T, lines []models.AccountingLine, ledgerId int, amount string) {
	t.Helper()
	for _, l := range lines {
		if l.LedgerId == ledgerId && l.Debit.Valid {
			assert.True(t, l.Debit.Decimal.Equal(d(amount)), "debit ledger %d: got %s, want %s", ledgerId, l.Debit.Decimal, amount)
			return
		}
	}
	t.Errorf("no debit line for ledger %d", ledgerId)
}

func assertCredit(t *testing.T, lines []models.AccountingLine, ledgerId int, amount string) {
	t.Helper()
	for _, l := range lines {
		if l.LedgerId == ledgerId && l.Credit.Valid {
			assert.True(t, l.Credit.Decimal.Equal(d(amount)), "credit ledger %d: got %s, want %s", ledgerId, l.Credit.Decimal, amount)
			return
		}
	}
	t.Errorf("no credit line for ledger %d", ledgerId)
}

// assertNoWrites checks that nothing of a failed call reached the database.
func assertNoWrites(t *testing.T, f *testdb.Fixture) {
	t.Helper()
	for name, model := range map[string]any{
		"sales":            &models.Sale{},
		"sale lines":       &models.SaleDetail{},
		"stock":            &models.StockLedgerEntry{},
		"accounting":       &models.AccountingEntry{},
		"accounting lines": &models.AccountingLine{},
		"number sequences": &models.TransactionSequence{},
		"productions":      &models.KitchenProduction{},
		"production lines": &models.KitchenProductionDetail{},
		"transfers":        &models.StockTransfer{},
		"transfer lines":   &models.StockTransferDetail{},
	} {
		assert.Zero(t, testdb.Count(t, f.DB, model, ""), name)
	}
}
