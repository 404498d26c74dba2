package models

import (
	"fmt"

	"github.com/mmdatafocus/bakery_backend/utils"
	"github.com/shopspring/decimal"
)

// Reference types stamped on derived postings.
const (
	ReferenceTypeSale          = "Sale"
	ReferenceTypeStockTransfer = "StockTransfer"
	ReferenceTypeJournal       = "Journal"
)

// AccountingEntry is one balanced double-entry posting. Derived postings are keyed by
// (VoucherId, ReferenceId, ReferenceNo); reposting first closes the previous entry.
type AccountingEntry struct {
	TransactionBase
	VoucherId          int             `gorm:"index:idx_accounting_entry_ref;not null" json:"voucher_id"`
	ReferenceType      string          `gorm:"size:30" json:"reference_type"`
	ReferenceId        int             `gorm:"index:idx_accounting_entry_ref" json:"reference_id"`
	ReferenceNo        string          `gorm:"size:50;index:idx_accounting_entry_ref" json:"reference_no"`
	LocationId         int             `gorm:"index" json:"location_id"`
	TotalDebitLedgers  int             `gorm:"not null;default:0" json:"total_debit_ledgers"`
	TotalCreditLedgers int             `gorm:"not null;default:0" json:"total_credit_ledgers"`
	TotalDebitAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_debit_amount"`
	TotalCreditAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_credit_amount"`
}

func (e *AccountingEntry) DeclaredItems() int {
	return e.TotalDebitLedgers + e.TotalCreditLedgers
}

func (e *AccountingEntry) DeclaredQuantity() decimal.Decimal {
	return e.TotalDebitAmount
}

// AccountingLine carries exactly one of Debit or Credit.
type AccountingLine struct {
	ID       int                 `gorm:"primaryKey" json:"id"`
	MasterId int                 `gorm:"index;not null" json:"master_id"`
	LedgerId int                 `gorm:"index;not null" json:"ledger_id" validate:"required"`
	Debit    decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"debit"`
	Credit   decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"credit"`
	Remarks  string              `gorm:"size:255" json:"remarks"`
	Status   bool                `gorm:"not null;index" json:"status"`
}

func (l *AccountingLine) GetId() int            { return l.ID }
func (l *AccountingLine) SetId(id int)          { l.ID = id }
func (l *AccountingLine) GetMasterId() int      { return l.MasterId }
func (l *AccountingLine) SetMasterId(id int)    { l.MasterId = id }
func (l *AccountingLine) GetStatus() bool       { return l.Status }
func (l *AccountingLine) SetStatus(status bool) { l.Status = status }

// CountedQuantity is the debit side of the line, so that the generic line-set check
// compares the summed debits with the declared debit total.
func (l *AccountingLine) CountedQuantity() decimal.Decimal {
	if l.Debit.Valid {
		return l.Debit.Decimal
	}
	return decimal.Zero
}

func DebitLine(ledgerId int, amount decimal.Decimal, remarks string) *AccountingLine {
	return &AccountingLine{LedgerId: ledgerId, Debit: decimal.NewNullDecimal(amount), Remarks: remarks, Status: true}
}

func CreditLine(ledgerId int, amount decimal.Decimal, remarks string) *AccountingLine {
	return &AccountingLine{LedgerId: ledgerId, Credit: decimal.NewNullDecimal(amount), Remarks: remarks, Status: true}
}

type LineSummary struct {
	DebitLedgers  int
	CreditLedgers int
	DebitAmount   decimal.Decimal
	CreditAmount  decimal.Decimal
}

func (s LineSummary) Balanced() bool {
	return s.DebitAmount.Equal(s.CreditAmount)
}

// SummarizeLines counts and sums both sides. A line with both sides, neither side,
// or a negative amount is rejected.
func SummarizeLines(lines []*AccountingLine) (LineSummary, error) {
	var s LineSummary
	for i, l := range lines {
		if l.Debit.Valid == l.Credit.Valid {
			return s, fmt.Errorf("%w: line %d must carry exactly one of debit or credit", utils.ErrInvalidTransaction, i+1)
		}
		if l.Debit.Valid {
			if l.Debit.Decimal.IsNegative() {
				return s, fmt.Errorf("%w: line %d has a negative debit", utils.ErrInvalidTransaction, i+1)
			}
			s.DebitLedgers++
			s.DebitAmount = s.DebitAmount.Add(l.Debit.Decimal)
			continue
		}
		if l.Credit.Decimal.IsNegative() {
			return s, fmt.Errorf("%w: line %d has a negative credit", utils.ErrInvalidTransaction, i+1)
		}
		s.CreditLedgers++
		s.CreditAmount = s.CreditAmount.Add(l.Credit.Decimal)
	}
	return s, nil
}

// ApplySummary stamps the declared counts and totals from a line summary.
func (e *AccountingEntry) ApplySummary(s LineSummary) {
	e.TotalDebitLedgers = s.DebitLedgers
	e.TotalCreditLedgers = s.CreditLedgers
	e.TotalDebitAmount = s.DebitAmount
	e.TotalCreditAmount = s.CreditAmount
	e.TotalItems = s.DebitLedgers + s.CreditLedgers
	e.TotalQuantity = s.DebitAmount
}

// CheckDeclared verifies the entry's declared counts and totals against its lines and
// that the lines balance.
func (e *AccountingEntry) CheckDeclared(lines []*AccountingLine) error {
	s, err := SummarizeLines(lines)
	if err != nil {
		return err
	}
	if !s.Balanced() {
		return fmt.Errorf("%w: debit %s does not equal credit %s", utils.ErrSummaryMismatch, s.DebitAmount, s.CreditAmount)
	}
	if s.DebitLedgers != e.TotalDebitLedgers || s.CreditLedgers != e.TotalCreditLedgers {
		return fmt.Errorf("%w: declared %d debit/%d credit ledgers, got %d/%d", utils.ErrSummaryMismatch,
			e.TotalDebitLedgers, e.TotalCreditLedgers, s.DebitLedgers, s.CreditLedgers)
	}
	if !s.DebitAmount.Equal(e.TotalDebitAmount) || !s.CreditAmount.Equal(e.TotalCreditAmount) {
		return fmt.Errorf("%w: declared totals %s/%s, lines sum to %s/%s", utils.ErrSummaryMismatch,
			e.TotalDebitAmount, e.TotalCreditAmount, s.DebitAmount, s.CreditAmount)
	}
	return nil
}
