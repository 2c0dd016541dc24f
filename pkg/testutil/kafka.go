package testutil

import (
	"context"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.6.1"

// Kafka is a single-node broker.
type Kafka struct {
	Brokers []string
}

// StartKafka runs a KRaft broker in a container.
func StartKafka(t *testing.T) *Kafka {
	t.Helper()
	ctx := context.Background()

	container, err := kafka.Run(ctx, kafkaImage, kafka.WithClusterID("veera-test"))
	if err != nil {
		t.Fatalf("start kafka: %v", err)
	}
	t.Cleanup(func() { terminate(t, "kafka", container) })

	brokers, err := container.Brokers(ctx)
	if err != nil {
		t.Fatalf("kafka brokers: %v", err)
	}
	return &Kafka{Brokers: brokers}
}

// ReadMessages consumes n messages from the start of topic, failing the test
// if they do not arrive within 30 seconds.
func (k *Kafka) ReadMessages(t *testing.T, topic string, n int) []kafkago.Message {
	t.Helper()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     k.Brokers,
		Topic:       topic,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msgs := make([]kafkago.Message, 0, n)
	for len(msgs) < n {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			t.Fatalf("read %d/%d messages from %s: %v", len(msgs), n, topic, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}
