package kafka

import (
	"time"

	"github.com/columnio/avroread/v1/logger"
)

// Default configuration values for the consumer.
const (
	DefaultMinBytes       = 1
	DefaultMaxBytes       = 10 * 1024 * 1024 // 10MB
	DefaultMaxWait        = 10 * time.Second
	DefaultCommitInterval = time.Second
	DefaultBatchSize      = 100
)

// Config holds configuration for the Kafka source.
type Config struct {
	// Brokers is the list of Kafka broker addresses.
	Brokers []string

	// Topic is the topic to consume from.
	Topic string

	// GroupID is the consumer group; when set, offsets are managed by the
	// group coordinator.
	GroupID string

	// MinBytes is the minimum batch size the broker should return.
	MinBytes int

	// MaxBytes is the maximum batch size the broker should return.
	MaxBytes int

	// MaxWait is how long the broker may wait to fill MinBytes.
	MaxWait time.Duration

	// CommitInterval is the interval at which offsets are committed.
	CommitInterval time.Duration

	// BatchSize is the number of messages FetchBatch collects before
	// returning.
	BatchSize int

	// Logger receives consumer lifecycle events and internal errors.
	// Optional.
	Logger *logger.Logger
}

// applyDefaults fills zero-valued fields in place.
func (c *Config) applyDefaults() {
	if c.MinBytes == 0 {
		c.MinBytes = DefaultMinBytes
	}
	if c.MaxBytes == 0 {
		c.MaxBytes = DefaultMaxBytes
	}
	if c.MaxWait == 0 {
		c.MaxWait = DefaultMaxWait
	}
	if c.CommitInterval == 0 {
		c.CommitInterval = DefaultCommitInterval
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
}
