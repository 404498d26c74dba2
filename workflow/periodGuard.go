package workflow

import (
	"fmt"
	"time"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
)

// PeriodGuard refuses writes dated inside a missing, locked or inactive financial year.
type PeriodGuard struct {
	years FinancialYearProvider
}

func NewPeriodGuard(years FinancialYearProvider) *PeriodGuard {
	return &PeriodGuard{years: years}
}

// Validate returns the open financial year covering date.
func (g *PeriodGuard) Validate(uow models.UnitOfWork, date time.Time) (*models.FinancialYear, error) {
	fy, err := g.years.FinancialYearByDate(uow, date)
	if err != nil {
		return nil, err
	}
	day := date.Format("2006-01-02")
	if fy == nil {
		return nil, fmt.Errorf("%w: no financial year covers %s", utils.ErrPeriodClosed, day)
	}
	if fy.Locked {
		return nil, fmt.Errorf("%w: financial year %q is locked (%s)", utils.ErrPeriodClosed, fy.Name, day)
	}
	if !fy.Status {
		return nil, fmt.Errorf("%w: financial year %q is inactive (%s)", utils.ErrPeriodClosed, fy.Name, day)
	}
	return fy, nil
}
