package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type FinancialYear struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:50" json:"name"`
	StartDate time.Time `gorm:"not null;index" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`
	Locked    bool      `gorm:"not null" json:"locked"`
	Status    bool      `gorm:"not null" json:"status"`
}

// Open reports whether postings dated inside the year are allowed.
func (fy FinancialYear) Open() bool {
	return fy.Status && !fy.Locked
}

type FinancialYearStore struct{}

// FinancialYearByDate returns the year whose range covers date, or nil when none does.
// The end date counts as a whole day whatever time of day it was stored with.
func (FinancialYearStore) FinancialYearByDate(uow UnitOfWork, date time.Time) (*FinancialYear, error) {
	y, m, dd := date.Date()
	day := time.Date(y, m, dd, 0, 0, 0, 0, date.Location())
	var fy FinancialYear
	err := uow.DB().
		Where("start_date <= ? AND end_date >= ?", date, day).
		Order("start_date DESC").
		First(&fy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fy, nil
}
