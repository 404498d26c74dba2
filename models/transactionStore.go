package models

import (
	"errors"
	"fmt"

	"github.com/mmdatafocus/bakery_backend/utils"
	"gorm.io/gorm"
)

// HeaderStore persists one header type. H is a pointer to a gorm model.
type HeaderStore[H TransactionHeader] struct {
	newHeader func() H
}

func NewHeaderStore[H TransactionHeader](newHeader func() H) HeaderStore[H] {
	return HeaderStore[H]{newHeader: newHeader}
}

func (s HeaderStore[H]) New() H {
	return s.newHeader()
}

func (s HeaderStore[H]) Load(uow UnitOfWork, id int) (H, error) {
	h := s.newHeader()
	if err := uow.DB().First(h, id).Error; err != nil {
		var zero H
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, fmt.Errorf("%w: id %d", utils.ErrTransactionNotFound, id)
		}
		return zero, err
	}
	return h, nil
}

// Save inserts a draft header or overwrites an existing one.
func (s HeaderStore[H]) Save(uow UnitOfWork, h H) error {
	if err := uow.DB().Save(h).Error; err != nil {
		return err
	}
	if h.GetId() == 0 {
		return fmt.Errorf("%w: header", utils.ErrPostingFailed)
	}
	return nil
}

// ActiveIds lists every header that is not soft-deleted, oldest first.
func (s HeaderStore[H]) ActiveIds(uow UnitOfWork) ([]int, error) {
	var ids []int
	err := uow.DB().Model(s.newHeader()).Where("status = ?", true).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// LineStore keeps the versioned line set of a header: a replace closes every active
// line and inserts the new set, so earlier versions stay on file.
type LineStore[L TransactionLine] struct {
	newLine func() L
}

func NewLineStore[L TransactionLine](newLine func() L) LineStore[L] {
	return LineStore[L]{newLine: newLine}
}

func (s LineStore[L]) ActiveLines(uow UnitOfWork, masterId int) ([]L, error) {
	var lines []L
	err := uow.DB().Where("master_id = ? AND status = ?", masterId, true).Order("id").Find(&lines).Error
	return lines, err
}

func (s LineStore[L]) CloseLines(uow UnitOfWork, masterId int) error {
	return uow.DB().Model(s.newLine()).
		Where("master_id = ? AND status = ?", masterId, true).
		Update("status", false).Error
}

func (s LineStore[L]) ReplaceLines(uow UnitOfWork, masterId int, lines []L) error {
	if err := s.CloseLines(uow, masterId); err != nil {
		return err
	}
	for i, line := range lines {
		line.SetId(0)
		line.SetMasterId(masterId)
		line.SetStatus(true)
		if err := uow.DB().Create(line).Error; err != nil {
			return err
		}
		if line.GetId() == 0 {
			return fmt.Errorf("%w: line %d", utils.ErrPostingFailed, i+1)
		}
	}
	return nil
}
