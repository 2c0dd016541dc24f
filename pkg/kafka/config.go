package kafka

import "time"

// Config holds Kafka connection parameters.
type Config struct {
	// SASL configuration for authentication.
	SASLMechanism string // "PLAIN", "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	ClientID string
	Brokers  []string

	// WriteTimeout bounds a single publish; zero uses the kafka-go default.
	WriteTimeout time.Duration

	// TLSCAFile pins the broker CA; empty trusts the system roots.
	TLSCAFile string

	// TLS enables TLS for Kafka connections.
	TLS         bool
	SASLEnabled bool
}
