package workflow

import (
	"errors"
	"fmt"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type saleDefinition struct {
	lookups Lookups
	stock   *StockLedgerProjector
}

func (saleDefinition) Kind() string                   { return models.ReferenceTypeSale }
func (saleDefinition) NewHeader() *models.Sale        { return &models.Sale{} }
func (saleDefinition) NewLine() *models.SaleDetail    { return &models.SaleDetail{} }
func (saleDefinition) StockTypes() []models.StockType { return []models.StockType{models.StockTypeSale, models.StockTypePurchase} }
func (saleDefinition) NumberScope(h *models.Sale) NumberScope {
	return NumberScope{Prefix: PrefixSale, LocationId: h.LocationId}
}

func (d saleDefinition) Prepare(uow models.UnitOfWork, h *models.Sale, lines []*models.SaleDetail) error {
	if h.LocationId == 0 {
		return fmt.Errorf("%w: sale location is required", utils.ErrInvalidTransaction)
	}
	if err := d.keepOrderLink(uow, h); err != nil {
		return err
	}
	if h.CreditAmount.IsPositive() && h.PartyId == 0 {
		return fmt.Errorf("%w: sale %s", utils.ErrPartyRequired, h.TransactionNo)
	}
	if paid := h.PaymentSplit.Total(); !paid.Equal(h.TotalAmount) {
		return fmt.Errorf("%w: payments %s do not settle total %s", utils.ErrSummaryMismatch, paid, h.TotalAmount)
	}
	return checkPositiveQuantities(lines)
}

// keepOrderLink carries the stored order reference into an update and refuses a second
// active sale against the same order.
func (saleDefinition) keepOrderLink(uow models.UnitOfWork, h *models.Sale) error {
	if h.ID > 0 {
		var stored models.Sale
		if err := uow.DB().Select("id", "order_id").First(&stored, h.ID).Error; err != nil {
			return err
		}
		if stored.OrderId != nil {
			if h.OrderId != nil && *h.OrderId != *stored.OrderId {
				return fmt.Errorf("%w: sale %s belongs to order %d", utils.ErrInvalidTransaction, h.TransactionNo, *stored.OrderId)
			}
			h.OrderId = stored.OrderId
		}
	}
	if h.OrderId == nil {
		return nil
	}

	var order models.Order
	err := uow.DB().First(&order, *h.OrderId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: order %d", utils.ErrTransactionNotFound, *h.OrderId)
	}
	if err != nil {
		return err
	}
	if !order.Status {
		return fmt.Errorf("%w: order %s is deleted", utils.ErrInvalidTransaction, order.TransactionNo)
	}
	var others int64
	err = uow.DB().Model(&models.Sale{}).
		Where("order_id = ? AND status = ? AND id <> ?", order.ID, true, h.ID).
		Count(&others).Error
	if err != nil {
		return err
	}
	if others > 0 {
		return fmt.Errorf("%w: order %s is already converted", utils.ErrAlreadyLinked, order.TransactionNo)
	}
	return nil
}

func (saleDefinition) IsLinked(uow models.UnitOfWork, h *models.Sale) (bool, error) {
	return false, nil
}

// StockSets takes the goods out of the selling location. When the customer is one of
// our own locations the goods are mirrored into it as a purchase.
func (d saleDefinition) StockSets(uow models.UnitOfWork, h *models.Sale, lines []*models.SaleDetail) ([]StockSet, error) {
	src := StockSource{Type: models.StockTypeSale, TransactionId: h.ID, TransactionNo: h.TransactionNo, TransactionDate: h.TransactionDateTime}
	out := make([]StockMovement, 0, len(lines))
	for _, l := range lines {
		out = append(out, StockMovement{ItemId: l.ItemId, ItemType: models.ItemTypeProduct, Quantity: l.Quantity.Neg(), NetRate: l.NetRate, LocationId: h.LocationId})
	}
	saleSet, err := d.stock.Project(uow, src, out)
	if err != nil {
		return nil, err
	}

	var in []StockMovement
	partyLocation, ok, err := d.lookups.Locations.LocationByLedger(uow, h.PartyId)
	if err != nil {
		return nil, err
	}
	if ok && partyLocation.ID != h.LocationId {
		for _, l := range lines {
			in = append(in, StockMovement{ItemId: l.ItemId, ItemType: models.ItemTypeProduct, Quantity: l.Quantity, NetRate: l.NetRate, LocationId: partyLocation.ID})
		}
	}
	src.Type = models.StockTypePurchase
	purchaseSet, err := d.stock.Project(uow, src, in)
	if err != nil {
		return nil, err
	}
	return []StockSet{saleSet, purchaseSet}, nil
}

func (d saleDefinition) PostingKey(uow models.UnitOfWork, h *models.Sale) (*PostingKey, error) {
	voucherId, err := d.lookups.Settings.SettingInt(uow, models.SettingSaleVoucherId)
	if err != nil {
		return nil, err
	}
	return &PostingKey{VoucherId: voucherId, ReferenceType: models.ReferenceTypeSale, ReferenceId: h.ID, ReferenceNo: h.TransactionNo}, nil
}

func (d saleDefinition) Posting(uow models.UnitOfWork, h *models.Sale, lines []*models.SaleDetail) (*PostingOverview, error) {
	key, err := d.PostingKey(uow, h)
	if err != nil {
		return nil, err
	}
	saleLedgerId, err := d.lookups.Settings.SettingInt(uow, models.SettingSaleLedgerId)
	if err != nil {
		return nil, err
	}
	return &PostingOverview{
		Key:                 *key,
		TransactionDateTime: h.TransactionDateTime,
		FinancialYearId:     h.FinancialYearId,
		LocationId:          h.LocationId,
		PartyLedgerId:       h.PartyId,
		Payments:            h.PaymentSplit,
		TotalAmount:         h.TotalAmount,
		ExtraTaxAmount:      h.TotalExtraTaxAmount,
		ControlLedgerId:     saleLedgerId,
		Remarks:             h.Remarks,
	}, nil
}

type quantityLine interface {
	CountedQuantity() decimal.Decimal
}

func checkPositiveQuantities[L quantityLine](lines []L) error {
	for i, l := range lines {
		if !l.CountedQuantity().IsPositive() {
			return fmt.Errorf("%w: line %d quantity must be positive", utils.ErrInvalidTransaction, i+1)
		}
	}
	return nil
}
