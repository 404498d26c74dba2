package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mmdatafocus/bakery_backend/workflow"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaNotifier writes events keyed by kind and id, so every change of one
// transaction lands on the same partition in commit order.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(writer messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) Notify(ctx context.Context, event workflow.TransactionEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	attrs := eventAttributes(event)
	headers := make([]kafka.Header, 0, len(attrs))
	for _, key := range []string{"kind", "action", "transaction_no", "correlation_id"} {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(attrs[key])})
	}
	msg := kafka.Message{
		Key:     []byte(event.Kind + ":" + strconv.Itoa(event.TransactionId)),
		Value:   value,
		Headers: headers,
		Time:    event.OccurredAt,
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s %d: %w", event.Kind, event.TransactionId, err)
	}
	return nil
}
