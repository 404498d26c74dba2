package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/sirupsen/logrus"
)

type (
	SaleCoordinator              = Coordinator[*models.Sale, *models.SaleDetail]
	StockTransferCoordinator     = Coordinator[*models.StockTransfer, *models.StockTransferDetail]
	KitchenIssueCoordinator      = Coordinator[*models.KitchenIssue, *models.KitchenIssueDetail]
	KitchenProductionCoordinator = Coordinator[*models.KitchenProduction, *models.KitchenProductionDetail]
	RecipeCoordinator            = Coordinator[*models.Recipe, *models.RecipeDetail]
	JournalCoordinator           = Coordinator[*models.AccountingEntry, *models.AccountingLine]
	OrderCoordinator             = Coordinator[*models.Order, *models.OrderDetail]
)

// EngineOptions carries the optional collaborators of an engine.
type EngineOptions struct {
	Notifier Notifier
	Exporter Exporter
	Locker   PostingLocker
	Clock    func() time.Time
	Logger   *logrus.Logger
}

// Engine wires one coordinator per transaction kind over shared dependencies.
type Engine struct {
	DB                 *models.Database
	Lookups            Lookups
	Sales              *SaleCoordinator
	StockTransfers     *StockTransferCoordinator
	KitchenIssues      *KitchenIssueCoordinator
	KitchenProductions *KitchenProductionCoordinator
	Recipes            *RecipeCoordinator
	Journals           *JournalCoordinator
	Orders             *OrderCoordinator
}

func NewEngine(db *models.Database, lookups Lookups, opts EngineOptions) *Engine {
	stock := NewStockLedgerProjector(lookups.Settings, lookups.Recipes)
	deps := Dependencies{
		DB:       db,
		Guard:    NewPeriodGuard(lookups.Years),
		Stock:    stock,
		Poster:   NewAccountingPoster(lookups.Settings, lookups.Locations),
		Notifier: opts.Notifier,
		Exporter: opts.Exporter,
		Locker:   opts.Locker,
		Clock:    opts.Clock,
		Logger:   opts.Logger,
	}
	return &Engine{
		DB:                 db,
		Lookups:            lookups,
		Sales:              NewCoordinator[*models.Sale, *models.SaleDetail](saleDefinition{lookups: lookups, stock: stock}, deps),
		StockTransfers:     NewCoordinator[*models.StockTransfer, *models.StockTransferDetail](stockTransferDefinition{lookups: lookups, stock: stock}, deps),
		KitchenIssues:      NewCoordinator[*models.KitchenIssue, *models.KitchenIssueDetail](kitchenIssueDefinition{stock: stock}, deps),
		KitchenProductions: NewCoordinator[*models.KitchenProduction, *models.KitchenProductionDetail](kitchenProductionDefinition{stock: stock}, deps),
		Recipes:            NewCoordinator[*models.Recipe, *models.RecipeDetail](recipeDefinition{}, deps),
		Journals:           NewCoordinator[*models.AccountingEntry, *models.AccountingLine](manualJournalDefinition{lookups: lookups}, deps),
		Orders:             NewCoordinator[*models.Order, *models.OrderDetail](orderDefinition{}, deps),
	}
}

// ConvertOrder raises sale against an active order. The order becomes linked and can no
// longer be edited or deleted while the sale is active.
func (e *Engine) ConvertOrder(ctx context.Context, orderId int, sale *models.Sale, lines []*models.SaleDetail) (int, error) {
	if sale.ID > 0 {
		return 0, fmt.Errorf("%w: an order converts into a new sale", utils.ErrInvalidTransaction)
	}
	ctx, span := e.Sales.tracer.Start(ctx, "Order.Convert")
	defer span.End()

	release, err := e.Orders.lock(ctx, orderId)
	if err != nil {
		return 0, e.Orders.fail(span, "Convert", orderId, err)
	}
	defer release()

	err = e.DB.Atomic(ctx, func(uow models.UnitOfWork) error {
		order, err := e.Orders.Load(uow, orderId)
		if err != nil {
			return err
		}
		if !order.Status {
			return fmt.Errorf("%w: order %s is deleted", utils.ErrInvalidTransaction, order.TransactionNo)
		}
		if err := e.Orders.checkLinked(uow, order); err != nil {
			return err
		}
		sale.OrderId = &order.ID
		if sale.PartyId == 0 {
			sale.PartyId = order.PartyId
		}
		if sale.LocationId == 0 {
			sale.LocationId = order.LocationId
		}
		return e.Sales.SaveIn(uow, sale, lines)
	})
	if err != nil {
		sale.ID = 0
		sale.TransactionNo = ""
		sale.OrderId = nil
		return 0, e.Orders.fail(span, "Convert", orderId, err)
	}
	e.Sales.notify(ctx, sale, ActionCreated, nil)
	return sale.ID, nil
}

// ProduceAndTransfer books a kitchen production and ships the output on in one unit.
// Either both transactions are stored or neither is.
func (e *Engine) ProduceAndTransfer(ctx context.Context,
	production *models.KitchenProduction, productionLines []*models.KitchenProductionDetail,
	transfer *models.StockTransfer, transferLines []*models.StockTransferDetail,
) error {
	if production.ID > 0 || transfer.ID > 0 {
		return fmt.Errorf("%w: produce and transfer only creates new transactions", utils.ErrInvalidTransaction)
	}
	err := e.DB.Atomic(ctx, func(uow models.UnitOfWork) error {
		if err := e.KitchenProductions.SaveIn(uow, production, productionLines); err != nil {
			return err
		}
		return e.StockTransfers.SaveIn(uow, transfer, transferLines)
	})
	if err != nil {
		production.ID, production.TransactionNo = 0, ""
		transfer.ID, transfer.TransactionNo = 0, ""
		return err
	}
	e.KitchenProductions.notify(ctx, production, ActionCreated, nil)
	e.StockTransfers.notify(ctx, transfer, ActionCreated, nil)
	return nil
}

type stockRebuilder interface {
	Kind() string
	RebuildStock(ctx context.Context) (int, error)
}

func (e *Engine) stockRebuilders() []stockRebuilder {
	return []stockRebuilder{e.Sales, e.StockTransfers, e.KitchenIssues, e.KitchenProductions}
}

// RebuildStock re-projects the stock ledger of one kind, or of every stock-moving kind
// when kind is empty. It returns the number of transactions rebuilt.
func (e *Engine) RebuildStock(ctx context.Context, kind string) (int, error) {
	total := 0
	matched := false
	for _, r := range e.stockRebuilders() {
		if kind != "" && r.Kind() != kind {
			continue
		}
		matched = true
		n, err := r.RebuildStock(ctx)
		total += n
		if err != nil {
			return total, err
		}
	}
	if !matched {
		return 0, fmt.Errorf("%w: %s does not move stock", utils.ErrInvalidTransaction, kind)
	}
	return total, nil
}
