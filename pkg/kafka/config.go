package kafka

import "time"

// Writer defaults applied when the corresponding Config field is zero.
const (
	DefaultBatchTimeout = 10 * time.Millisecond
	DefaultWriteTimeout = 10 * time.Second
)

// Config holds the broker connection and writer settings of the producer.
type Config struct {
	Brokers []string
	// ClientID identifies the producer to the brokers.
	ClientID string

	TLS bool

	SASLEnabled   bool
	SASLMechanism string // PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512
	SASLUsername  string
	SASLPassword  string

	// BatchTimeout caps how long a partial batch waits before it is sent.
	BatchTimeout time.Duration
	// WriteTimeout bounds one WriteMessages call.
	WriteTimeout time.Duration
}

func (c Config) batchTimeout() time.Duration {
	if c.BatchTimeout > 0 {
		return c.BatchTimeout
	}
	return DefaultBatchTimeout
}

func (c Config) writeTimeout() time.Duration {
	if c.WriteTimeout > 0 {
		return c.WriteTimeout
	}
	return DefaultWriteTimeout
}
