package workflow

import (
	"fmt"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
)

// kitchenIssueDefinition takes raw materials out of the issuing location.
type kitchenIssueDefinition struct {
	stock *StockLedgerProjector
}

func (kitchenIssueDefinition) Kind() string                        { return "KitchenIssue" }
func (kitchenIssueDefinition) NewHeader() *models.KitchenIssue     { return &models.KitchenIssue{} }
func (kitchenIssueDefinition) NewLine() *models.KitchenIssueDetail { return &models.KitchenIssueDetail{} }
func (kitchenIssueDefinition) StockTypes() []models.StockType {
	return []models.StockType{models.StockTypeKitchenIssue}
}

func (kitchenIssueDefinition) NumberScope(h *models.KitchenIssue) NumberScope {
	return NumberScope{Prefix: PrefixKitchenIssue, LocationId: h.LocationId}
}

func (kitchenIssueDefinition) Prepare(uow models.UnitOfWork, h *models.KitchenIssue, lines []*models.KitchenIssueDetail) error {
	if h.LocationId == 0 || h.KitchenId == 0 {
		return fmt.Errorf("%w: issuing location and kitchen are required", utils.ErrInvalidTransaction)
	}
	return checkPositiveQuantities(lines)
}

func (kitchenIssueDefinition) IsLinked(uow models.UnitOfWork, h *models.KitchenIssue) (bool, error) {
	return false, nil
}

func (d kitchenIssueDefinition) StockSets(uow models.UnitOfWork, h *models.KitchenIssue, lines []*models.KitchenIssueDetail) ([]StockSet, error) {
	src := StockSource{Type: models.StockTypeKitchenIssue, TransactionId: h.ID, TransactionNo: h.TransactionNo, TransactionDate: h.TransactionDateTime}
	movements := make([]StockMovement, 0, len(lines))
	for _, l := range lines {
		movements = append(movements, StockMovement{ItemId: l.ItemId, ItemType: models.ItemTypeRawMaterial, Quantity: l.Quantity.Neg(), NetRate: l.NetRate, LocationId: h.LocationId})
	}
	set, err := d.stock.Project(uow, src, movements)
	if err != nil {
		return nil, err
	}
	return []StockSet{set}, nil
}

func (kitchenIssueDefinition) PostingKey(uow models.UnitOfWork, h *models.KitchenIssue) (*PostingKey, error) {
	return nil, nil
}

func (kitchenIssueDefinition) Posting(uow models.UnitOfWork, h *models.KitchenIssue, lines []*models.KitchenIssueDetail) (*PostingOverview, error) {
	return nil, nil
}

// kitchenProductionDefinition brings finished products into the producing location.
// Production at the recipe-managed kitchen consumes the recipe's raw materials.
type kitchenProductionDefinition struct {
	stock *StockLedgerProjector
}

func (kitchenProductionDefinition) Kind() string                             { return "KitchenProduction" }
func (kitchenProductionDefinition) NewHeader() *models.KitchenProduction     { return &models.KitchenProduction{} }
func (kitchenProductionDefinition) NewLine() *models.KitchenProductionDetail { return &models.KitchenProductionDetail{} }
func (kitchenProductionDefinition) StockTypes() []models.StockType {
	return []models.StockType{models.StockTypeKitchenProduction}
}

func (kitchenProductionDefinition) NumberScope(h *models.KitchenProduction) NumberScope {
	return NumberScope{Prefix: PrefixKitchenProduction, LocationId: h.LocationId}
}

func (kitchenProductionDefinition) Prepare(uow models.UnitOfWork, h *models.KitchenProduction, lines []*models.KitchenProductionDetail) error {
	if h.LocationId == 0 {
		return fmt.Errorf("%w: production location is required", utils.ErrInvalidTransaction)
	}
	if h.KitchenId == 0 {
		h.KitchenId = h.LocationId
	}
	return checkPositiveQuantities(lines)
}

func (kitchenProductionDefinition) IsLinked(uow models.UnitOfWork, h *models.KitchenProduction) (bool, error) {
	return false, nil
}

func (d kitchenProductionDefinition) StockSets(uow models.UnitOfWork, h *models.KitchenProduction, lines []*models.KitchenProductionDetail) ([]StockSet, error) {
	src := StockSource{Type: models.StockTypeKitchenProduction, TransactionId: h.ID, TransactionNo: h.TransactionNo, TransactionDate: h.TransactionDateTime}
	movements := make([]StockMovement, 0, len(lines))
	for _, l := range lines {
		movements = append(movements, StockMovement{ItemId: l.ItemId, ItemType: models.ItemTypeProduct, Quantity: l.Quantity, NetRate: l.NetRate, LocationId: h.LocationId})
	}
	set, err := d.stock.Project(uow, src, movements)
	if err != nil {
		return nil, err
	}
	return []StockSet{set}, nil
}

func (kitchenProductionDefinition) PostingKey(uow models.UnitOfWork, h *models.KitchenProduction) (*PostingKey, error) {
	return nil, nil
}

func (kitchenProductionDefinition) Posting(uow models.UnitOfWork, h *models.KitchenProduction, lines []*models.KitchenProductionDetail) (*PostingOverview, error) {
	return nil, nil
}
