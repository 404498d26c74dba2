package workflow

import (
	"context"
	"time"
)

type NotifyAction string

const (
	ActionCreated   NotifyAction = "Created"
	ActionUpdated   NotifyAction = "Updated"
	ActionDeleted   NotifyAction = "Deleted"
	ActionRecovered NotifyAction = "Recovered"
)

// TransactionEvent is published after a transaction has been committed.
// Previous and Current are export artifacts of the transaction before and after the call.
type TransactionEvent struct {
	TransactionId int          `json:"transaction_id"`
	Kind          string       `json:"kind"`
	TransactionNo string       `json:"transaction_no"`
	Action        NotifyAction `json:"action"`
	Previous      []byte       `json:"previous,omitempty"`
	Current       []byte       `json:"current,omitempty"`
	CorrelationId string       `json:"correlation_id"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// Notifier delivers post-commit events. Failures never undo the committed transaction.
type Notifier interface {
	Notify(ctx context.Context, event TransactionEvent) error
}

// Exporter renders a committed header and its lines into a document artifact.
type Exporter interface {
	Export(kind string, header any, lines any) ([]byte, error)
}
