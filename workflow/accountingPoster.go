package workflow

import (
	"fmt"
	"time"

	"github.com/mmdatafocus/bakery_backend/models"
	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/shopspring/decimal"
)

// PostingKey locates the derived posting of one originating transaction.
type PostingKey struct {
	VoucherId     int
	ReferenceType string
	ReferenceId   int
	ReferenceNo   string
}

// PostingOverview is the aggregated money picture of a transaction.
type PostingOverview struct {
	Key                 PostingKey
	TransactionDateTime time.Time
	FinancialYearId     int
	LocationId          int
	// PartyLedgerId is debited with the credit-mode part of the bill.
	PartyLedgerId int
	Payments      models.PaymentSplit
	TotalAmount   decimal.Decimal
	// ExtraTaxAmount is tax charged on top of the net value; it goes to the tax ledger.
	ExtraTaxAmount decimal.Decimal
	// ControlLedgerId receives the net value (sale or stock-transfer ledger).
	ControlLedgerId int
	Remarks         string
	Audit           models.AuditStamp
}

type AccountingPoster struct {
	settings  SettingsProvider
	locations LocationProvider
	numbers   NumberGenerator
}

func NewAccountingPoster(settings SettingsProvider, locations LocationProvider) *AccountingPoster {
	return &AccountingPoster{settings: settings, locations: locations}
}

// Post reverses any earlier posting of the same key, then inserts the new balanced
// entry. A zero total posts nothing.
func (p *AccountingPoster) Post(uow models.UnitOfWork, ov PostingOverview) (*models.AccountingEntry, error) {
	prior, err := p.Reverse(uow, ov.Key, ov.Audit)
	if err != nil {
		return nil, err
	}
	if ov.TotalAmount.IsZero() {
		return nil, nil
	}

	lines, err := p.BuildLines(uow, ov)
	if err != nil {
		return nil, err
	}
	summary, err := models.SummarizeLines(lines)
	if err != nil {
		return nil, err
	}
	if !summary.Balanced() {
		return nil, fmt.Errorf("%w: %s %s debit %s, credit %s", utils.ErrSummaryMismatch,
			ov.Key.ReferenceType, ov.Key.ReferenceNo, summary.DebitAmount, summary.CreditAmount)
	}

	entry := &models.AccountingEntry{
		TransactionBase: models.TransactionBase{
			TransactionDateTime: ov.TransactionDateTime,
			FinancialYearId:     ov.FinancialYearId,
			Remarks:             ov.Remarks,
			Status:              true,
			AuditStamp:          ov.Audit,
		},
		VoucherId:     ov.Key.VoucherId,
		ReferenceType: ov.Key.ReferenceType,
		ReferenceId:   ov.Key.ReferenceId,
		ReferenceNo:   ov.Key.ReferenceNo,
		LocationId:    ov.LocationId,
	}
	entry.ApplySummary(summary)
	if prior != nil {
		entry.TransactionNo = prior.TransactionNo
	} else {
		no, err := p.numbers.Generate(uow, NumberScope{Prefix: PrefixPosting, FinancialYearId: ov.FinancialYearId})
		if err != nil {
			return nil, err
		}
		entry.TransactionNo = no
	}

	if err := uow.DB().Create(entry).Error; err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, fmt.Errorf("%w: accounting entry for %s", utils.ErrPostingFailed, ov.Key.ReferenceNo)
	}
	for i, l := range lines {
		l.MasterId = entry.ID
		if err := uow.DB().Create(l).Error; err != nil {
			return nil, err
		}
		if l.ID == 0 {
			return nil, fmt.Errorf("%w: accounting line %d for %s", utils.ErrPostingFailed, i+1, ov.Key.ReferenceNo)
		}
	}
	return entry, nil
}

// BuildLines derives the debit and credit lines of an overview.
func (p *AccountingPoster) BuildLines(uow models.UnitOfWork, ov PostingOverview) ([]*models.AccountingLine, error) {
	var lines []*models.AccountingLine

	collected := ov.Payments.CashAmount.Add(ov.Payments.CardAmount).Add(ov.Payments.UpiAmount)
	if collected.IsPositive() {
		ledgerId, err := p.collectionLedger(uow, ov.LocationId)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.DebitLine(ledgerId, collected, "cash/card/upi"))
	}
	if ov.Payments.CreditAmount.IsPositive() {
		if ov.PartyLedgerId == 0 {
			return nil, fmt.Errorf("%w: %s %s", utils.ErrPartyRequired, ov.Key.ReferenceType, ov.Key.ReferenceNo)
		}
		lines = append(lines, models.DebitLine(ov.PartyLedgerId, ov.Payments.CreditAmount, "credit"))
	}

	net := ov.TotalAmount.Sub(ov.ExtraTaxAmount)
	if net.IsPositive() {
		lines = append(lines, models.CreditLine(ov.ControlLedgerId, net, ov.Key.ReferenceType))
	}
	if ov.ExtraTaxAmount.IsPositive() {
		taxLedgerId, err := p.settings.SettingInt(uow, models.SettingTaxLedgerId)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.CreditLine(taxLedgerId, ov.ExtraTaxAmount, "tax"))
	}
	return lines, nil
}

// collectionLedger is the cash-control ledger at the primary location and the
// location's own ledger elsewhere.
func (p *AccountingPoster) collectionLedger(uow models.UnitOfWork, locationId int) (int, error) {
	primaryId, err := p.settings.SettingInt(uow, models.SettingPrimaryLocationId)
	if err != nil {
		return 0, err
	}
	if locationId == 0 || locationId == primaryId {
		return p.settings.SettingInt(uow, models.SettingCashLedgerId)
	}
	loc, err := p.locations.Location(uow, locationId)
	if err != nil {
		return 0, err
	}
	if loc.LedgerId == 0 {
		return 0, fmt.Errorf("%w: location %s has no ledger", utils.ErrInvalidTransaction, loc.Name)
	}
	return loc.LedgerId, nil
}

// Reverse closes the active posting of key and its lines, stamping them as modified by
// the originating transaction. It returns the reversed entry, or nil when none existed.
func (p *AccountingPoster) Reverse(uow models.UnitOfWork, key PostingKey, audit models.AuditStamp) (*models.AccountingEntry, error) {
	var entries []models.AccountingEntry
	err := uow.DB().
		Where("voucher_id = ? AND reference_id = ? AND reference_no = ? AND status = ?",
			key.VoucherId, key.ReferenceId, key.ReferenceNo, true).
		Order("id").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	by, at, platform := audit.CreatedBy, audit.CreatedAt, audit.CreatedFromPlatform
	if audit.LastModifiedBy != nil {
		by = *audit.LastModifiedBy
	}
	if audit.LastModifiedAt != nil {
		at = *audit.LastModifiedAt
	}
	if audit.LastModifiedFromPlatform != nil {
		platform = *audit.LastModifiedFromPlatform
	}

	ids := make([]int, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if err := uow.DB().Model(&models.AccountingEntry{}).Where("id IN ?", ids).Updates(map[string]any{
		"status":                      false,
		"last_modified_by":            by,
		"last_modified_at":            at,
		"last_modified_from_platform": platform,
	}).Error; err != nil {
		return nil, err
	}
	if err := uow.DB().Model(&models.AccountingLine{}).
		Where("master_id IN ? AND status = ?", ids, true).
		Update("status", false).Error; err != nil {
		return nil, err
	}
	last := entries[len(entries)-1]
	last.Status = false
	return &last, nil
}
