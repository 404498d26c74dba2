package models

// TransactionSequence holds the last number issued for one prefix scope
// (prefix, location and financial year).
type TransactionSequence struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	SequenceKey string `gorm:"size:100;not null;uniqueIndex" json:"sequence_key"`
	LastNumber  int64  `gorm:"not null" json:"last_number"`
}
