package notification

import (
	"context"

	"github.com/mmdatafocus/bakery_backend/workflow"
	"github.com/sirupsen/logrus"
)

// LogNotifier writes committed-transaction events to the application log. It is the
// fallback when no broker is configured.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, event workflow.TransactionEvent) error {
	n.logger.WithFields(logrus.Fields{
		"module":        "notification",
		"kind":          event.Kind,
		"id":            event.TransactionId,
		"no":            event.TransactionNo,
		"action":        event.Action,
		"correlationId": event.CorrelationId,
	}).Info("transaction committed")
	return nil
}
