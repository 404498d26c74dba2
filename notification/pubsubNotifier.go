package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/mmdatafocus/bakery_backend/workflow"
)

// PubSubNotifier publishes events as JSON to one Pub/Sub topic and waits for the
// server acknowledgement.
type PubSubNotifier struct {
	topic *pubsub.Topic
}

func NewPubSubNotifier(topic *pubsub.Topic) *PubSubNotifier {
	return &PubSubNotifier{topic: topic}
}

func (n *PubSubNotifier) Notify(ctx context.Context, event workflow.TransactionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	result := n.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: eventAttributes(event),
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish %s %d: %w", event.Kind, event.TransactionId, err)
	}
	return nil
}

func eventAttributes(event workflow.TransactionEvent) map[string]string {
	return map[string]string{
		"kind":           event.Kind,
		"action":         string(event.Action),
		"transaction_no": event.TransactionNo,
		"correlation_id": event.CorrelationId,
	}
}
