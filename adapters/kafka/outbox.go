package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/bhargav676/intern/domain"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Outbox appends reading and alert events to a Kafka topic so downstream
// consumers can replay what dashboards may have missed. Messages are keyed by
// owner id, which keeps each owner's events ordered within one partition.
type Outbox struct {
	writer messageWriter
	logger *zap.Logger
}

// NewOutbox creates a new Kafka outbox
func NewOutbox(brokers []string, topic string, logger *zap.Logger) *Outbox {
	return &Outbox{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{}, // Partition by key (owner id)
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
			Async:        false, // Synchronous for reliability
		},
		logger: logger,
	}
}

// Publish implements repositories.EventSink. newUserSensorData duplicates
// newSensorData and is not written.
func (o *Outbox) Publish(ctx context.Context, event domain.Event) error {
	if event.Type == domain.EventNewUserSensorData || event.Origin != "" {
		return nil
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Type)},
		},
	}
	if err := o.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return nil
}

// Close closes the producer
func (o *Outbox) Close() error {
	return o.writer.Close()
}
