package notification

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/mmdatafocus/bakery_backend/workflow"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func sampleEvent() workflow.TransactionEvent {
	return workflow.TransactionEvent{
		TransactionId: 7,
		Kind:          "Sale",
		TransactionNo: "SL/FY2/L1/000007",
		Action:        workflow.ActionCreated,
		CorrelationId: "corr-1",
		OccurredAt:    time.Date(2026, 5, 10, 10, 30, 0, 0, time.UTC),
	}
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := NewLogNotifier(logger)

	require.NoError(t, n.Notify(context.Background(), sampleEvent()))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Sale", entry.Data["kind"])
	assert.Equal(t, 7, entry.Data["id"])
	assert.Equal(t, "corr-1", entry.Data["correlationId"])
}

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestKafkaNotifier_KeysByTransaction(t *testing.T) {
	w := &recordingWriter{}
	n := NewKafkaNotifier(w)

	require.NoError(t, n.Notify(context.Background(), sampleEvent()))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "Sale:7", string(msg.Key))
	var decoded workflow.TransactionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "SL/FY2/L1/000007", decoded.TransactionNo)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Created", headers["action"])
	assert.Equal(t, "corr-1", headers["correlation_id"])
}

func TestKafkaNotifier_WrapsWriteError(t *testing.T) {
	brokerDown := errors.New("broker down")
	n := NewKafkaNotifier(&recordingWriter{err: brokerDown})

	err := n.Notify(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, brokerDown)
}

type failingNotifier struct {
	calls int
}

func (n *failingNotifier) Notify(ctx context.Context, event workflow.TransactionEvent) error {
	n.calls++
	return errors.New("unavailable")
}

func TestBreakerNotifier_OpensAfterConsecutiveFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	next := &failingNotifier{}
	n := NewBreakerNotifier("test", next, BreakerConfig{ConsecutiveFailures: 2, Timeout: time.Minute}, logger)

	ctx := context.Background()
	assert.Error(t, n.Notify(ctx, sampleEvent()))
	assert.Error(t, n.Notify(ctx, sampleEvent()))
	assert.Equal(t, gobreaker.StateOpen, n.State())

	err := n.Notify(ctx, sampleEvent())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 2, next.calls)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestPubSubNotifier_PublishesToTopic(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client, err := pubsub.NewClient(ctx, "bakery-test", option.WithGRPCConn(conn))
	require.NoError(t, err)
	defer client.Close()

	topic, err := client.CreateTopic(ctx, "transactions")
	require.NoError(t, err)
	defer topic.Stop()

	n := NewPubSubNotifier(topic)
	require.NoError(t, n.Notify(ctx, sampleEvent()))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Sale", msgs[0].Attributes["kind"])
	assert.Equal(t, "Created", msgs[0].Attributes["action"])

	var decoded workflow.TransactionEvent
	require.NoError(t, json.Unmarshal(msgs[0].Data, &decoded))
	assert.Equal(t, 7, decoded.TransactionId)
}

func TestKafkaNotifier_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run against KAFKA_BROKERS")
	}
	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("KAFKA_BROKERS not set")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers),
		Topic:                  "bakery-transactions-test",
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, NewKafkaNotifier(w).Notify(ctx, sampleEvent()))
}
