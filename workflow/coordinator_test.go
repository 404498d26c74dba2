package workflow

import (
	"testing"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidateLineSet(t *testing.T) {
	header := &models.Order{}
	header.TotalItems = 2
	header.TotalQuantity = decimal.RequireFromString("3.5")
	line := func(qty string, active bool) *models.OrderDetail {
		return &models.OrderDetail{LineBase: models.LineBase{ItemId: 1, Quantity: decimal.RequireFromString(qty), Status: active}}
	}

	assert.NoError(t, validateLineSet(header, []*models.OrderDetail{line("1", true), line("2.5", true)}))
	assert.ErrorIs(t, validateLineSet(header, []*models.OrderDetail{line("1", true), line("2.5", false)}), utils.ErrInactiveLineRejected)
	assert.ErrorIs(t, validateLineSet(header, []*models.OrderDetail{line("1", true), line("2", true)}), utils.ErrSummaryMismatch)
	assert.ErrorIs(t, validateLineSet(header, []*models.OrderDetail{line("3.5", true)}), utils.ErrSummaryMismatch)
	assert.ErrorIs(t, validateLineSet(header, []*models.OrderDetail{}), utils.ErrInvalidTransaction)
}
