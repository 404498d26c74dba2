package workflow

import (
	"fmt"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
)

// manualJournalDefinition stores hand-entered accounting entries. Entries derived from
// sales and transfers share the table but are owned by their source transaction.
type manualJournalDefinition struct {
	lookups Lookups
}

func (manualJournalDefinition) Kind() string                      { return models.ReferenceTypeJournal }
func (manualJournalDefinition) NewHeader() *models.AccountingEntry { return &models.AccountingEntry{} }
func (manualJournalDefinition) NewLine() *models.AccountingLine    { return &models.AccountingLine{} }
func (manualJournalDefinition) StockTypes() []models.StockType     { return nil }
func (manualJournalDefinition) NumberScope(h *models.AccountingEntry) NumberScope {
	return NumberScope{Prefix: PrefixJournal, LocationId: h.LocationId}
}

func (d manualJournalDefinition) Prepare(uow models.UnitOfWork, h *models.AccountingEntry, lines []*models.AccountingLine) error {
	if h.ReferenceType != "" && h.ReferenceType != models.ReferenceTypeJournal {
		return fmt.Errorf("%w: %s entries are posted by their source transaction", utils.ErrInvalidTransaction, h.ReferenceType)
	}
	if h.VoucherId == 0 {
		voucherId, err := d.lookups.Settings.SettingInt(uow, models.SettingJournalVoucherId)
		if err != nil {
			return err
		}
		h.VoucherId = voucherId
	}
	h.ReferenceType = models.ReferenceTypeJournal
	h.ReferenceId = 0
	h.ReferenceNo = ""

	if err := h.CheckDeclared(lines); err != nil {
		return err
	}
	s, err := models.SummarizeLines(lines)
	if err != nil {
		return err
	}
	if s.DebitAmount.IsZero() {
		return fmt.Errorf("%w: journal amount must be positive", utils.ErrInvalidTransaction)
	}
	h.ApplySummary(s)
	return nil
}

// IsLinked guards derived postings against edits through the journal screen.
func (manualJournalDefinition) IsLinked(uow models.UnitOfWork, h *models.AccountingEntry) (bool, error) {
	return h.ReferenceType != models.ReferenceTypeJournal, nil
}

func (manualJournalDefinition) StockSets(uow models.UnitOfWork, h *models.AccountingEntry, lines []*models.AccountingLine) ([]StockSet, error) {
	return nil, nil
}

func (manualJournalDefinition) PostingKey(uow models.UnitOfWork, h *models.AccountingEntry) (*PostingKey, error) {
	return nil, nil
}

func (manualJournalDefinition) Posting(uow models.UnitOfWork, h *models.AccountingEntry, lines []*models.AccountingLine) (*PostingOverview, error) {
	return nil, nil
}
