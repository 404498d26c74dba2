package workflow

import (
	"fmt"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
)

type stockTransferDefinition struct {
	lookups Lookups
	stock   *StockLedgerProjector
}

func (stockTransferDefinition) Kind() string                         { return models.ReferenceTypeStockTransfer }
func (stockTransferDefinition) NewHeader() *models.StockTransfer     { return &models.StockTransfer{} }
func (stockTransferDefinition) NewLine() *models.StockTransferDetail { return &models.StockTransferDetail{} }
func (stockTransferDefinition) StockTypes() []models.StockType {
	return []models.StockType{models.StockTypeStockTransfer}
}

func (stockTransferDefinition) NumberScope(h *models.StockTransfer) NumberScope {
	return NumberScope{Prefix: PrefixStockTransfer, LocationId: h.LocationId}
}

func (stockTransferDefinition) Prepare(uow models.UnitOfWork, h *models.StockTransfer, lines []*models.StockTransferDetail) error {
	if h.LocationId == 0 || h.ToLocationId == 0 {
		return fmt.Errorf("%w: source and destination locations are required", utils.ErrInvalidTransaction)
	}
	if h.LocationId == h.ToLocationId {
		return fmt.Errorf("%w: transfers cannot be made within the same location", utils.ErrInvalidTransaction)
	}
	if paid := h.PaymentSplit.Total(); !paid.Equal(h.TotalAmount) {
		return fmt.Errorf("%w: payments %s do not settle total %s", utils.ErrSummaryMismatch, paid, h.TotalAmount)
	}
	return checkPositiveQuantities(lines)
}

func (stockTransferDefinition) IsLinked(uow models.UnitOfWork, h *models.StockTransfer) (bool, error) {
	return false, nil
}

func (d stockTransferDefinition) StockSets(uow models.UnitOfWork, h *models.StockTransfer, lines []*models.StockTransferDetail) ([]StockSet, error) {
	src := StockSource{Type: models.StockTypeStockTransfer, TransactionId: h.ID, TransactionNo: h.TransactionNo, TransactionDate: h.TransactionDateTime}
	movements := make([]StockMovement, 0, 2*len(lines))
	for _, l := range lines {
		movements = append(movements,
			StockMovement{ItemId: l.ItemId, ItemType: models.ItemTypeProduct, Quantity: l.Quantity.Neg(), NetRate: l.NetRate, LocationId: h.LocationId},
			StockMovement{ItemId: l.ItemId, ItemType: models.ItemTypeProduct, Quantity: l.Quantity, NetRate: l.NetRate, LocationId: h.ToLocationId},
		)
	}
	set, err := d.stock.Project(uow, src, movements)
	if err != nil {
		return nil, err
	}
	return []StockSet{set}, nil
}

func (d stockTransferDefinition) PostingKey(uow models.UnitOfWork, h *models.StockTransfer) (*PostingKey, error) {
	voucherId, err := d.lookups.Settings.SettingInt(uow, models.SettingStockTransferVoucherId)
	if err != nil {
		return nil, err
	}
	return &PostingKey{VoucherId: voucherId, ReferenceType: models.ReferenceTypeStockTransfer, ReferenceId: h.ID, ReferenceNo: h.TransactionNo}, nil
}

// Posting bills the receiving location: whatever is not paid up front is debited to
// its ledger.
func (d stockTransferDefinition) Posting(uow models.UnitOfWork, h *models.StockTransfer, lines []*models.StockTransferDetail) (*PostingOverview, error) {
	key, err := d.PostingKey(uow, h)
	if err != nil {
		return nil, err
	}
	controlLedgerId, err := d.lookups.Settings.SettingInt(uow, models.SettingStockTransferLedgerId)
	if err != nil {
		return nil, err
	}
	destination, err := d.lookups.Locations.Location(uow, h.ToLocationId)
	if err != nil {
		return nil, err
	}
	return &PostingOverview{
		Key:                 *key,
		TransactionDateTime: h.TransactionDateTime,
		FinancialYearId:     h.FinancialYearId,
		LocationId:          h.LocationId,
		PartyLedgerId:       destination.LedgerId,
		Payments:            h.PaymentSplit,
		TotalAmount:         h.TotalAmount,
		ExtraTaxAmount:      h.TotalExtraTaxAmount,
		ControlLedgerId:     controlLedgerId,
		Remarks:             h.Remarks,
	}, nil
}
