package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/bakery_backend/workflow"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

type BreakerConfig struct {
	ConsecutiveFailures uint32
	Timeout             time.Duration
}

var DefaultBreakerConfig = BreakerConfig{ConsecutiveFailures: 5, Timeout: 30 * time.Second}

// BreakerNotifier stops calling a failing broker for a while, so a broker outage does
// not add its timeout to every posting.
type BreakerNotifier struct {
	next    workflow.Notifier
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerNotifier(name string, next workflow.Notifier, cfg BreakerConfig, logger *logrus.Logger) *BreakerNotifier {
	settings := gobreaker.Settings{
		Name:        "notifier-" + name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"module":  "notification",
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("notifier circuit breaker changed state")
		},
	}
	return &BreakerNotifier{next: next, breaker: gobreaker.NewCircuitBreaker(settings)}
}

func (n *BreakerNotifier) Notify(ctx context.Context, event workflow.TransactionEvent) error {
	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.next.Notify(ctx, event)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return fmt.Errorf("%s skipped: %w", n.breaker.Name(), err)
	}
	return err
}

func (n *BreakerNotifier) State() gobreaker.State {
	return n.breaker.State()
}
