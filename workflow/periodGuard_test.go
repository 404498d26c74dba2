package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/testdb"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodGuard(t *testing.T) {
	f := testdb.Seed(t)
	guard := NewPeriodGuard(models.FinancialYearStore{})
	uow := f.Database.Reader(context.Background())

	fy, err := guard.Validate(uow, testdb.InOpenYear)
	require.NoError(t, err)
	assert.Equal(t, f.OpenYear.ID, fy.ID)

	_, err = guard.Validate(uow, testdb.InLockedYear)
	assert.ErrorIs(t, err, utils.ErrPeriodClosed)
	assert.Contains(t, err.Error(), "locked")

	_, err = guard.Validate(uow, testdb.InOpenYear.AddDate(5, 0, 0))
	assert.ErrorIs(t, err, utils.ErrPeriodClosed)

	require.NoError(t, f.DB.Model(&f.OpenYear).Update("status", false).Error)
	_, err = guard.Validate(uow, testdb.InOpenYear)
	assert.ErrorIs(t, err, utils.ErrPeriodClosed)
	assert.Contains(t, err.Error(), "inactive")
}

func TestPeriodGuard_LastDayCountsWhole(t *testing.T) {
	f := testdb.Seed(t)
	guard := NewPeriodGuard(models.FinancialYearStore{})
	uow := f.Database.Reader(context.Background())

	// the fixture stores the year end at 23:59:59
	fy, err := guard.Validate(uow, f.OpenYear.EndDate.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, f.OpenYear.ID, fy.ID)

	_, err = guard.Validate(uow, f.OpenYear.EndDate.Add(time.Second))
	assert.ErrorIs(t, err, utils.ErrPeriodClosed)
}
