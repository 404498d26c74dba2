package workflow

import (
	"errors"
	"fmt"

	"github.com/mmdatafocus/bakery_backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Number prefixes per transaction kind.
const (
	PrefixSale              = "SL"
	PrefixStockTransfer     = "ST"
	PrefixKitchenIssue      = "KI"
	PrefixKitchenProduction = "KP"
	PrefixRecipe            = "RC"
	PrefixJournal           = "JV"
	PrefixPosting           = "AC"
	PrefixOrder             = "OR"
)

type NumberScope struct {
	Prefix          string
	LocationId      int
	FinancialYearId int
}

func (s NumberScope) key() string {
	return fmt.Sprintf("%s:%d:%d", s.Prefix, s.LocationId, s.FinancialYearId)
}

func (s NumberScope) format(n int64) string {
	if s.LocationId > 0 {
		return fmt.Sprintf("%s/FY%d/L%d/%06d", s.Prefix, s.FinancialYearId, s.LocationId, n)
	}
	return fmt.Sprintf("%s/FY%d/%06d", s.Prefix, s.FinancialYearId, n)
}

// NumberGenerator issues sequential numbers per scope. The counter row is locked for
// update, so it must run inside the same unit as the header write.
type NumberGenerator struct{}

func (NumberGenerator) Generate(uow models.UnitOfWork, scope NumberScope) (string, error) {
	if scope.Prefix == "" {
		return "", errors.New("number prefix is required")
	}
	key := scope.key()

	var seq models.TransactionSequence
	err := uow.DB().
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("sequence_key = ?", key).
		First(&seq).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		seq = models.TransactionSequence{SequenceKey: key, LastNumber: 1}
		if err := uow.DB().Create(&seq).Error; err != nil {
			return "", fmt.Errorf("create sequence %s: %w", key, err)
		}
	case err != nil:
		return "", err
	default:
		seq.LastNumber++
		if err := uow.DB().Model(&seq).Update("last_number", seq.LastNumber).Error; err != nil {
			return "", err
		}
	}
	return scope.format(seq.LastNumber), nil
}
