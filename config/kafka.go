package config

import (
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter returns a synchronous writer so publish errors reach the caller.
func NewKafkaWriter(s Settings) (*kafka.Writer, error) {
	if len(s.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(s.KafkaBrokers...),
		Topic:        s.KafkaTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
		BatchTimeout: 10 * time.Millisecond,
	}, nil
}
