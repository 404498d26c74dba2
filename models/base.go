package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditStamp is embedded in every transaction header and posting.
type AuditStamp struct {
	CreatedBy                int        `gorm:"not null;default:0" json:"created_by"`
	CreatedAt                time.Time  `json:"created_at"`
	CreatedFromPlatform      string     `gorm:"size:30" json:"created_from_platform"`
	LastModifiedBy           *int       `json:"last_modified_by"`
	LastModifiedAt           *time.Time `json:"last_modified_at"`
	LastModifiedFromPlatform *string    `gorm:"size:30" json:"last_modified_from_platform"`
}

func (a *AuditStamp) StampCreated(userId int, platform string, at time.Time) {
	a.CreatedBy = userId
	a.CreatedAt = at
	a.CreatedFromPlatform = platform
}

func (a *AuditStamp) StampModified(userId int, platform string, at time.Time) {
	a.LastModifiedBy = &userId
	a.LastModifiedAt = &at
	a.LastModifiedFromPlatform = &platform
}

// CopyCreated keeps the original creation stamps across a re-save.
func (a *AuditStamp) CopyCreated(from AuditStamp) {
	a.CreatedBy = from.CreatedBy
	a.CreatedAt = from.CreatedAt
	a.CreatedFromPlatform = from.CreatedFromPlatform
}

// TransactionHeader is implemented by every header the posting engine persists.
type TransactionHeader interface {
	GetId() int
	SetId(id int)
	GetTransactionNo() string
	SetTransactionNo(no string)
	GetTransactionDateTime() time.Time
	GetFinancialYearId() int
	SetFinancialYearId(id int)
	GetStatus() bool
	SetStatus(status bool)
	DeclaredItems() int
	DeclaredQuantity() decimal.Decimal
	Audit() *AuditStamp
}

// TransactionLine is implemented by every line set stored under a header.
type TransactionLine interface {
	GetId() int
	SetId(id int)
	GetMasterId() int
	SetMasterId(id int)
	GetStatus() bool
	SetStatus(status bool)
	CountedQuantity() decimal.Decimal
}

type TransactionBase struct {
	ID                  int             `gorm:"primaryKey" json:"id"`
	TransactionNo       string          `gorm:"size:50;index" json:"transaction_no"`
	TransactionDateTime time.Time       `gorm:"not null" json:"transaction_date_time" validate:"required"`
	FinancialYearId     int             `gorm:"index" json:"financial_year_id"`
	TotalItems          int             `gorm:"not null;default:0" json:"total_items"`
	TotalQuantity       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_quantity"`
	Remarks             string          `gorm:"size:255" json:"remarks"`
	Status              bool            `gorm:"not null;index" json:"status"`
	AuditStamp
}

func (t *TransactionBase) GetId() int                        { return t.ID }
func (t *TransactionBase) SetId(id int)                      { t.ID = id }
func (t *TransactionBase) GetTransactionNo() string          { return t.TransactionNo }
func (t *TransactionBase) SetTransactionNo(no string)        { t.TransactionNo = no }
func (t *TransactionBase) GetTransactionDateTime() time.Time { return t.TransactionDateTime }
func (t *TransactionBase) GetFinancialYearId() int           { return t.FinancialYearId }
func (t *TransactionBase) SetFinancialYearId(id int)         { t.FinancialYearId = id }
func (t *TransactionBase) GetStatus() bool                   { return t.Status }
func (t *TransactionBase) SetStatus(status bool)             { t.Status = status }
func (t *TransactionBase) DeclaredItems() int                { return t.TotalItems }
func (t *TransactionBase) DeclaredQuantity() decimal.Decimal { return t.TotalQuantity }
func (t *TransactionBase) Audit() *AuditStamp                { return &t.AuditStamp }

type LineBase struct {
	ID       int             `gorm:"primaryKey" json:"id"`
	MasterId int             `gorm:"index;not null" json:"master_id"`
	ItemId   int             `gorm:"index;not null" json:"item_id" validate:"required"`
	Quantity decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Rate     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	NetRate  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"net_rate"`
	Total    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	Remarks  string          `gorm:"size:255" json:"remarks"`
	Status   bool            `gorm:"not null;index" json:"status"`
}

func (l *LineBase) GetId() int                       { return l.ID }
func (l *LineBase) SetId(id int)                     { l.ID = id }
func (l *LineBase) GetMasterId() int                 { return l.MasterId }
func (l *LineBase) SetMasterId(id int)               { l.MasterId = id }
func (l *LineBase) GetStatus() bool                  { return l.Status }
func (l *LineBase) SetStatus(status bool)            { l.Status = status }
func (l *LineBase) CountedQuantity() decimal.Decimal { return l.Quantity }

// TaxBreakdown carries the per-component tax columns shared by priced lines.
type TaxBreakdown struct {
	Discount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	DiscountType   string          `gorm:"size:1" json:"discount_type"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount_amount"`
	CgstRate       decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"cgst_rate"`
	CgstAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cgst_amount"`
	SgstRate       decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"sgst_rate"`
	SgstAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sgst_amount"`
	IgstRate       decimal.Decimal `gorm:"type:decimal(7,4);default:0" json:"igst_rate"`
	IgstAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"igst_amount"`
	InclusiveTax   bool            `gorm:"not null" json:"inclusive_tax"`
	BaseTotal      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"base_total"`
	ExtraTaxAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"extra_tax_amount"`
}

// PaymentSplit is how a priced header was settled.
type PaymentSplit struct {
	CashAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cash_amount"`
	CardAmount   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"card_amount"`
	UpiAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"upi_amount"`
	CreditAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"credit_amount"`
}

func (p PaymentSplit) Total() decimal.Decimal {
	return p.CashAmount.Add(p.CardAmount).Add(p.UpiAmount).Add(p.CreditAmount)
}
