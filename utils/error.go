package utils

import "errors"

// Posting engine error taxonomy. Every error is fatal to the current call and is
// returned unchanged (possibly wrapped) to the caller after the scope rolls back.
var (
	ErrPeriodClosed         = errors.New("financial period is closed for the transaction date")
	ErrSummaryMismatch      = errors.New("line set does not match header totals")
	ErrInactiveLineRejected = errors.New("submitted line is not active")
	ErrPostingFailed        = errors.New("posting write returned no identifier")
	ErrAlreadyLinked        = errors.New("transaction is already linked to a downstream transaction")

	ErrPartyRequired       = errors.New("credit amount requires a party ledger")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrTransactionBusy     = errors.New("transaction is being posted by another request")
)
