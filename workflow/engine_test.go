package workflow_test

import (
	"fmt"
	"testing"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/testdb"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/mmdatafocus/bakery_backend/workflow"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveOrder(t *testing.T, f *testdb.Fixture, engine *workflow.Engine) *models.Order {
	t.Helper()
	lines := []*models.OrderDetail{productLine(orderLine, f.ProductId, "12", "5")}
	order := &models.Order{LocationId: f.Primary.ID, PartyId: f.CustomerLedger.ID}
	order.TransactionDateTime = testdb.InOpenYear
	order.ApplyCart(lines)
	_, err := engine.Orders.Save(userCtx(7), order, lines)
	require.NoError(t, err)
	return order
}

func TestConvertOrder_LinksOrder(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})
	ctx := userCtx(7)
	order := saveOrder(t, f, engine)
	assert.Equal(t, fmt.Sprintf("OR/FY%d/L%d/000001", f.OpenYear.ID, f.Primary.ID), order.TransactionNo)

	sale, lines := newSale(0)
	saleId, err := engine.ConvertOrder(ctx, order.ID, sale, lines)
	require.NoError(t, err)

	var stored models.Sale
	require.NoError(t, f.DB.First(&stored, saleId).Error)
	require.NotNil(t, stored.OrderId)
	assert.Equal(t, order.ID, *stored.OrderId)
	assert.Equal(t, f.Primary.ID, stored.LocationId)
	assert.Equal(t, f.CustomerLedger.ID, stored.PartyId)
	assert.Len(t, stockRows(t, f, models.StockTypeSale, saleId), 2)

	err = engine.Orders.Delete(ctx, order.ID)
	assert.ErrorIs(t, err, utils.ErrAlreadyLinked)

	order.Remarks = "more candles"
	orderLines := []*models.OrderDetail{productLine(orderLine, f.ProductId, "12", "5")}
	_, err = engine.Orders.Save(ctx, order, orderLines)
	assert.ErrorIs(t, err, utils.ErrAlreadyLinked)

	again, againLines := newSale(0)
	_, err = engine.ConvertOrder(ctx, order.ID, again, againLines)
	assert.ErrorIs(t, err, utils.ErrAlreadyLinked)
	assert.Zero(t, again.ID)
	assert.Equal(t, int64(1), testdb.Count(t, f.DB, &models.Sale{}, ""))

	// deleting the sale releases the order
	require.NoError(t, engine.Sales.Delete(ctx, saleId))
	require.NoError(t, engine.Orders.Delete(ctx, order.ID))
}

func TestConvertOrder_SaleUpdateKeepsOrderLink(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})
	ctx := userCtx(7)
	order := saveOrder(t, f, engine)

	sale, lines := newSale(0)
	saleId, err := engine.ConvertOrder(ctx, order.ID, sale, lines)
	require.NoError(t, err)

	// an edit that does not send the order reference
	_, editLines := newSale(0)
	sale.OrderId = nil
	sale.Remarks = "table 4"
	_, err = engine.Sales.Save(ctx, sale, editLines)
	require.NoError(t, err)

	var stored models.Sale
	require.NoError(t, f.DB.First(&stored, saleId).Error)
	require.NotNil(t, stored.OrderId)
	assert.Equal(t, order.ID, *stored.OrderId)

	again, againLines := newSale(0)
	_, err = engine.ConvertOrder(ctx, order.ID, again, againLines)
	assert.ErrorIs(t, err, utils.ErrAlreadyLinked)
	assert.ErrorIs(t, engine.Orders.Delete(ctx, order.ID), utils.ErrAlreadyLinked)

	other := saveOrder(t, f, engine)
	_, moveLines := newSale(0)
	sale.OrderId = &other.ID
	_, err = engine.Sales.Save(ctx, sale, moveLines)
	assert.ErrorIs(t, err, utils.ErrInvalidTransaction)
	require.NoError(t, f.DB.First(&stored, saleId).Error)
	assert.Equal(t, order.ID, *stored.OrderId)
}

func TestSaleRecover_RefusesSecondSaleForOrder(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})
	ctx := userCtx(7)
	order := saveOrder(t, f, engine)

	first, firstLines := newSale(0)
	firstId, err := engine.ConvertOrder(ctx, order.ID, first, firstLines)
	require.NoError(t, err)
	require.NoError(t, engine.Sales.Delete(ctx, firstId))

	second, secondLines := newSale(0)
	_, err = engine.ConvertOrder(ctx, order.ID, second, secondLines)
	require.NoError(t, err)

	err = engine.Sales.Recover(ctx, firstId)
	assert.ErrorIs(t, err, utils.ErrAlreadyLinked)

	var stored models.Sale
	require.NoError(t, f.DB.First(&stored, firstId).Error)
	assert.False(t, stored.Status)
	assert.Empty(t, stockRows(t, f, models.StockTypeSale, firstId))
	assert.Equal(t, int64(1), testdb.Count(t, f.DB, &models.Sale{}, "order_id = ? AND status = ?", order.ID, true))
}

func TestConvertOrder_RollsBackOnSaleFailure(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})
	ctx := userCtx(7)
	order := saveOrder(t, f, engine)

	sale, lines := newSale(0)
	sale.TransactionDateTime = testdb.InLockedYear
	_, err := engine.ConvertOrder(ctx, order.ID, sale, lines)
	assert.ErrorIs(t, err, utils.ErrPeriodClosed)
	assert.Zero(t, sale.ID)
	assert.Nil(t, sale.OrderId)
	assert.Zero(t, testdb.Count(t, f.DB, &models.Sale{}, ""))
	assert.Zero(t, testdb.Count(t, f.DB, &models.StockLedgerEntry{}, ""))

	require.NoError(t, engine.Orders.Delete(ctx, order.ID))
}

func TestConvertOrder_Rejections(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})
	ctx := userCtx(7)

	sale, lines := newSale(0)
	_, err := engine.ConvertOrder(ctx, 404, sale, lines)
	assert.ErrorIs(t, err, utils.ErrTransactionNotFound)

	order := saveOrder(t, f, engine)
	require.NoError(t, engine.Orders.Delete(ctx, order.ID))
	_, err = engine.ConvertOrder(ctx, order.ID, sale, lines)
	assert.ErrorIs(t, err, utils.ErrInvalidTransaction)

	sale.ID = 5
	_, err = engine.ConvertOrder(ctx, order.ID, sale, lines)
	assert.ErrorIs(t, err, utils.ErrInvalidTransaction)
	assert.Zero(t, testdb.Count(t, f.DB, &models.Sale{}, ""))
}

func TestProduceAndTransfer(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})

	production, productionLines := newProduction(f, f.Kitchen.ID, "5")
	transfer, transferLines := newTransfer(f, f.Kitchen.ID, f.Outlet.ID)
	require.NoError(t, engine.ProduceAndTransfer(userCtx(7), production, productionLines, transfer, transferLines))

	require.NotZero(t, production.ID)
	require.NotZero(t, transfer.ID)
	assertStock(t, stockRows(t, f, models.StockTypeKitchenProduction, production.ID), f.ProductId, f.Kitchen.ID, "5")
	rows := stockRows(t, f, models.StockTypeStockTransfer, transfer.ID)
	assertStock(t, rows, f.ProductId, f.Kitchen.ID, "-5")
	assertStock(t, rows, f.ProductId, f.Outlet.ID, "5")

	entry, postingLines := activePosting(t, f, f.StockTransferVoucherId, transfer.ID)
	require.NotNil(t, entry)
	assertDebit(t, postingLines, f.Outlet.LedgerId, "50")
}

func TestProduceAndTransfer_RollsBackBoth(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})

	production, productionLines := newProduction(f, f.Kitchen.ID, "5")
	transfer, transferLines := newTransfer(f, f.Kitchen.ID, f.Kitchen.ID)
	err := engine.ProduceAndTransfer(userCtx(7), production, productionLines, transfer, transferLines)
	assert.ErrorIs(t, err, utils.ErrInvalidTransaction)

	assert.Zero(t, production.ID)
	assert.Empty(t, production.TransactionNo)
	assert.Zero(t, transfer.ID)
	assertNoWrites(t, f)
}

func balancedJournal(amount string, debitLedger int, creditLedger int) (*models.AccountingEntry, []*models.AccountingLine) {
	lines := []*models.AccountingLine{
		models.DebitLine(debitLedger, d(amount), "opening float"),
		models.CreditLine(creditLedger, d(amount), "opening float"),
	}
	entry := &models.AccountingEntry{}
	entry.TransactionDateTime = testdb.InOpenYear
	s, _ := models.SummarizeLines(lines)
	entry.ApplySummary(s)
	return entry, lines
}

func TestManualJournal(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})
	ctx := userCtx(7)

	entry, lines := balancedJournal("100", f.CashLedger.ID, f.CustomerLedger.ID)
	id, err := engine.Journals.Save(ctx, entry, lines)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("JV/FY%d/000001", f.OpenYear.ID), entry.TransactionNo)
	assert.Equal(t, f.JournalVoucherId, entry.VoucherId)
	assert.Equal(t, models.ReferenceTypeJournal, entry.ReferenceType)
	assert.Equal(t, 2, entry.TotalItems)
	assert.Equal(t, int64(2), testdb.Count(t, f.DB, &models.AccountingLine{}, "master_id = ? AND status = ?", id, true))

	require.NoError(t, engine.Journals.Delete(ctx, id))
	var stored models.AccountingEntry
	require.NoError(t, f.DB.First(&stored, id).Error)
	assert.False(t, stored.Status)
}

func TestManualJournal_Unbalanced(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})

	entry, lines := balancedJournal("100", f.CashLedger.ID, f.CustomerLedger.ID)
	lines[1].Credit = decimal.NewNullDecimal(d("90"))
	entry.TotalCreditAmount = d("90")
	_, err := engine.Journals.Save(userCtx(7), entry, lines)
	assert.ErrorIs(t, err, utils.ErrSummaryMismatch)
	assertNoWrites(t, f)
}

func TestManualJournal_DerivedPostingsAreProtected(t *testing.T) {
	f := testdb.Seed(t)
	engine := newTestEngine(t, f, workflow.EngineOptions{})
	ctx := userCtx(7)

	sale, saleLines := newSale(f.Primary.ID)
	saleId, err := engine.Sales.Save(ctx, sale, saleLines)
	require.NoError(t, err)
	posting, _ := activePosting(t, f, f.SaleVoucherId, saleId)
	require.NotNil(t, posting)

	err = engine.Journals.Delete(ctx, posting.ID)
	assert.ErrorIs(t, err, utils.ErrAlreadyLinked)

	entry, lines := balancedJournal("42", f.CashLedger.ID, f.SaleLedger.ID)
	entry.ReferenceType = models.ReferenceTypeSale
	_, err = engine.Journals.Save(ctx, entry, lines)
	assert.ErrorIs(t, err, utils.ErrInvalidTransaction)

	posting, _ = activePosting(t, f, f.SaleVoucherId, saleId)
	assert.NotNil(t, posting)
}
