package workflow

import (
	"fmt"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
)

type orderDefinition struct{}

func (orderDefinition) Kind() string                   { return "Order" }
func (orderDefinition) NewHeader() *models.Order       { return &models.Order{} }
func (orderDefinition) NewLine() *models.OrderDetail   { return &models.OrderDetail{} }
func (orderDefinition) StockTypes() []models.StockType { return nil }
func (orderDefinition) NumberScope(h *models.Order) NumberScope {
	return NumberScope{Prefix: PrefixOrder, LocationId: h.LocationId}
}

func (orderDefinition) Prepare(uow models.UnitOfWork, h *models.Order, lines []*models.OrderDetail) error {
	if h.LocationId == 0 {
		return fmt.Errorf("%w: order location is required", utils.ErrInvalidTransaction)
	}
	return checkPositiveQuantities(lines)
}

// IsLinked reports whether an active sale was raised against the order.
func (orderDefinition) IsLinked(uow models.UnitOfWork, h *models.Order) (bool, error) {
	var count int64
	err := uow.DB().Model(&models.Sale{}).Where("order_id = ? AND status = ?", h.ID, true).Count(&count).Error
	return count > 0, err
}

func (orderDefinition) StockSets(uow models.UnitOfWork, h *models.Order, lines []*models.OrderDetail) ([]StockSet, error) {
	return nil, nil
}

func (orderDefinition) PostingKey(uow models.UnitOfWork, h *models.Order) (*PostingKey, error) {
	return nil, nil
}

func (orderDefinition) Posting(uow models.UnitOfWork, h *models.Order, lines []*models.OrderDetail) (*PostingOverview, error) {
	return nil, nil
}
