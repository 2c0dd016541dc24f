package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Mrinal-Agrawal21/veera-app/internal/domain/port"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/events"
	"github.com/Mrinal-Agrawal21/veera-app/pkg/kafka"
)

var (
	_ port.EventPublisher = (*KafkaPublisher)(nil)
	_ port.EventPublisher = (*LogPublisher)(nil)
)

// Header keys set on every published message.
const (
	HeaderEventType = "event_type"
	HeaderEventID   = "event_id"
)

// MessageProducer is satisfied by *kafka.Producer.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...kafka.Message) error
}

// Envelope is the JSON value of a published incident event.
type Envelope struct {
	OccurredAt    time.Time       `json:"occurred_at"`
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	Payload       json.RawMessage `json:"payload"`
	EventID       uuid.UUID       `json:"event_id"`
	AggregateID   uuid.UUID       `json:"aggregate_id"`
}

// KafkaPublisher implements port.EventPublisher using Kafka. Messages are
// keyed by incident ID so events of one incident stay ordered.
type KafkaPublisher struct {
	producer MessageProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaPublisher creates a new Kafka event publisher.
func NewKafkaPublisher(producer MessageProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends domain events to Kafka in a single batch.
func (p *KafkaPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if len(evts) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(evts))
	for _, evt := range evts {
		msg, err := toMessage(evt)
		if err != nil {
			return err
		}
		messages = append(messages, msg)

		p.logger.Debug("publishing event",
			slog.String("event_type", evt.EventType()),
			slog.String("aggregate_id", evt.AggregateID().String()),
			slog.String("topic", p.topic),
			slog.Int("payload_size", len(msg.Value)),
		)
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish %d events: %w", len(messages), err)
	}
	return nil
}

func toMessage(evt events.DomainEvent) (kafka.Message, error) {
	value, err := json.Marshal(Envelope{
		EventID:       evt.EventID(),
		EventType:     evt.EventType(),
		AggregateID:   evt.AggregateID(),
		AggregateType: evt.AggregateType(),
		OccurredAt:    evt.OccurredAt(),
		Payload:       evt.Payload(),
	})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
	}

	return kafka.Message{
		Key:   []byte(evt.AggregateID().String()),
		Value: value,
		Headers: map[string]string{
			HeaderEventType: evt.EventType(),
			HeaderEventID:   evt.EventID().String(),
		},
	}, nil
}

// LogPublisher stands in for Kafka when no brokers are configured. It only
// logs the events.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs each event at debug level.
func (p *LogPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	for _, evt := range evts {
		p.logger.Debug("event not published, publishing disabled",
			slog.String("event_type", evt.EventType()),
			slog.String("aggregate_id", evt.AggregateID().String()),
		)
	}
	return nil
}
