package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/Mrinal-Agrawal21/veera-app/pkg/tlsutil"
)

// Message represents a Kafka message.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Producer wraps kafka-go writers, one per topic, created lazily.
type Producer struct {
	mu           sync.Mutex
	writers      map[string]*kafkago.Writer
	transport    *kafkago.Transport
	brokers      []string
	writeTimeout time.Duration
}

// NewProducer creates a Producer. It fails only when the SASL settings
// cannot be turned into a mechanism.
func NewProducer(cfg Config) (*Producer, error) {
	transport, err := newTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{
		writers:      make(map[string]*kafkago.Writer),
		transport:    transport,
		brokers:      cfg.Brokers,
		writeTimeout: cfg.WriteTimeout,
	}, nil
}

// Publish sends messages to the specified topic.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	w := p.getOrCreateWriter(topic)

	kafkaMessages := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		km := kafkago.Message{
			Key:   msg.Key,
			Value: msg.Value,
		}
		for k, v := range msg.Headers {
			km.Headers = append(km.Headers, kafkago.Header{
				Key:   k,
				Value: []byte(v),
			})
		}
		kafkaMessages = append(kafkaMessages, km)
	}

	if err := w.WriteMessages(ctx, kafkaMessages...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

// Close closes all writers.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing writer for topic %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]*kafkago.Writer)
	return firstErr
}

func (p *Producer) getOrCreateWriter(topic string) *kafkago.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafkago.RequireAll,
		WriteTimeout:           p.writeTimeout,
		AllowAutoTopicCreation: true,
	}
	if p.transport != nil {
		w.Transport = p.transport
	}
	p.writers[topic] = w
	return w
}

// newTransport returns nil (kafka-go's default transport) unless TLS or SASL
// is configured.
func newTransport(cfg Config) (*kafkago.Transport, error) {
	if !cfg.TLS && !cfg.SASLEnabled {
		return nil, nil
	}

	t := &kafkago.Transport{ClientID: cfg.ClientID}
	if cfg.TLS {
		tlsCfg, err := tlsutil.ClientConfig(cfg.TLSCAFile)
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		t.TLS = tlsCfg
	}
	if cfg.SASLEnabled {
		mechanism, err := saslMechanism(cfg)
		if err != nil {
			return nil, err
		}
		t.SASL = mechanism
	}
	return t, nil
}

func saslMechanism(cfg Config) (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case "SCRAM-SHA-256":
		m, err := scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
		if err != nil {
			return nil, fmt.Errorf("kafka: scram-sha-256: %w", err)
		}
		return m, nil
	case "SCRAM-SHA-512":
		m, err := scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
		if err != nil {
			return nil, fmt.Errorf("kafka: scram-sha-512: %w", err)
		}
		return m, nil
	case "PLAIN", "":
		return plain.Mechanism{
			Username: cfg.SASLUsername,
			Password: cfg.SASLPassword,
		}, nil
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q", cfg.SASLMechanism)
	}
}
