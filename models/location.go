package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Location is an outlet, store or kitchen. LedgerId is the location's own account: it
// receives payments taken at a non-primary outlet and identifies the location when it
// appears as the party of a sale.
type Location struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Code     string `gorm:"size:20" json:"code"`
	LedgerId int    `gorm:"index" json:"ledger_id"`
	Status   bool   `gorm:"not null" json:"status"`
}

type Ledger struct {
	ID     int    `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:100;not null" json:"name"`
	Nature string `gorm:"size:50" json:"nature"`
	Status bool   `gorm:"not null" json:"status"`
}

type LocationStore struct{}

func (LocationStore) Location(uow UnitOfWork, id int) (*Location, error) {
	var loc Location
	if err := uow.DB().First(&loc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("location %d not found", id)
		}
		return nil, err
	}
	return &loc, nil
}

// LocationByLedger finds the active location that owns ledgerId, if any.
func (LocationStore) LocationByLedger(uow UnitOfWork, ledgerId int) (*Location, bool, error) {
	if ledgerId == 0 {
		return nil, false, nil
	}
	var loc Location
	err := uow.DB().Where("ledger_id = ? AND status = ?", ledgerId, true).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &loc, true, nil
}
