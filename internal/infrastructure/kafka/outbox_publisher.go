package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/microcred/internal/domain/port"
	"github.com/bibbank/microcred/pkg/events"
	pkgkafka "github.com/bibbank/microcred/pkg/kafka"
)

// Compile-time interface check.
var _ port.OutboxPublisher = (*OutboxPublisher)(nil)

// MessageProducer is satisfied by *pkgkafka.Producer.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// OutboxPublisher implements port.OutboxPublisher by writing outbox entries
// to a Kafka topic. Messages are keyed by aggregate so events of one loan or
// client stay ordered within a partition.
type OutboxPublisher struct {
	producer MessageProducer
	topic    string
	logger   *slog.Logger
}

// NewOutboxPublisher creates a publisher targeting the given producer and topic.
func NewOutboxPublisher(producer MessageProducer, topic string, logger *slog.Logger) *OutboxPublisher {
	return &OutboxPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// PublishEntries sends the stored payloads as they are.
func (p *OutboxPublisher) PublishEntries(ctx context.Context, entries []events.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	for _, e := range entries {
		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", e.EventType,
			"aggregate_id", e.AggregateID,
			"owner_id", e.OwnerID,
			"topic", p.topic,
			"payload_size", len(e.Payload),
		)
		messages = append(messages, pkgkafka.Message{
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Headers: map[string]string{
				"event_type":     e.EventType,
				"event_id":       e.ID,
				"aggregate_type": e.AggregateType,
				"owner_id":       e.OwnerID,
			},
		})
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}
