package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"

	"github.com/columnio/avroread/v1/columnar"
	"github.com/columnio/avroread/v1/reader"
)

// Source consumes framed messages from one Kafka topic and hands their
// values to a Confluent reader for decoding into columns.
//
// Source implements the message-fetching side only; decoding is delegated so
// that the per-reader plan cache follows the batch lifecycle the pipeline
// chooses, not the connection lifecycle.
type Source struct {
	// cfg stores the configuration for this source
	cfg Config

	// reader is the Kafka reader used for consuming messages
	reader *kafka.Reader

	// mu protects concurrent access to reader
	mu sync.RWMutex

	// shutdownSignal is closed when the source is being shut down
	shutdownSignal chan struct{}

	closeShutdownOnce sync.Once
}

// NewSource creates and initializes a new Source with the provided
// configuration.
//
// Example:
//
//	source, err := kafka.NewSource(config)
//	if err != nil {
//	    return nil, err
//	}
//	defer source.GracefulShutdown()
func NewSource(cfg Config) (*Source, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}
	cfg.applyDefaults()

	s := &Source{
		cfg:            cfg,
		shutdownSignal: make(chan struct{}),
	}
	s.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       cfg.MinBytes,
		MaxBytes:       cfg.MaxBytes,
		MaxWait:        cfg.MaxWait,
		CommitInterval: cfg.CommitInterval,
		ErrorLogger:    createErrorLogger(cfg),
	})
	if cfg.Logger != nil {
		cfg.Logger.Info("Kafka consumer initialized", nil, map[string]interface{}{
			"topic":    cfg.Topic,
			"group_id": cfg.GroupID,
		})
	}
	return s, nil
}

// Fetch returns the next message without committing its offset.
func (s *Source) Fetch(ctx context.Context) (kafka.Message, error) {
	select {
	case <-s.shutdownSignal:
		return kafka.Message{}, errors.New("kafka: source is shut down")
	default:
	}
	s.mu.RLock()
	r := s.reader
	s.mu.RUnlock()
	if r == nil {
		return kafka.Message{}, errors.New("kafka: source is shut down")
	}
	return r.FetchMessage(ctx)
}

// FetchBatch collects up to the configured batch size of messages. It
// returns early with what it has when the context is done.
func (s *Source) FetchBatch(ctx context.Context) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, s.cfg.BatchSize)
	for len(msgs) < s.cfg.BatchSize {
		msg, err := s.Fetch(ctx)
		if err != nil {
			if len(msgs) > 0 && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
				return msgs, nil
			}
			return msgs, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Commit marks the given messages as processed.
func (s *Source) Commit(ctx context.Context, msgs ...kafka.Message) error {
	s.mu.RLock()
	r := s.reader
	s.mu.RUnlock()
	if r == nil {
		return errors.New("kafka: source is shut down")
	}
	return r.CommitMessages(ctx, msgs...)
}

// DecodeBatch decodes the values of a fetched batch through a Confluent
// reader. Messages rejected as corrupt are reported in the returned slice;
// the rest populate cols. The usual sequence is FetchBatch, DecodeBatch,
// Commit.
func (s *Source) DecodeBatch(ctx context.Context, cr *reader.ConfluentReader, msgs []kafka.Message, cols []columnar.ColumnWriter, ext *columnar.RowRead) (int, []reader.MessageError, error) {
	values := make([][]byte, len(msgs))
	for i, m := range msgs {
		values[i] = m.Value
	}
	return cr.ReadBatch(ctx, values, cols, ext)
}

// GracefulShutdown stops the source and closes the underlying reader.
// It is safe to call more than once.
func (s *Source) GracefulShutdown() error {
	s.closeShutdownOnce.Do(func() {
		close(s.shutdownSignal)
	})
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader == nil {
		return nil
	}
	err := s.reader.Close()
	s.reader = nil
	if s.cfg.Logger != nil {
		s.cfg.Logger.Info("Kafka consumer shut down", err, nil)
	}
	return err
}

// createErrorLogger routes kafka-go's internal errors through the configured
// logger when one is present.
func createErrorLogger(cfg Config) kafka.LoggerFunc {
	if cfg.Logger == nil {
		return nil
	}
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		formattedMsg := msg
		if len(args) > 0 {
			formattedMsg = fmt.Sprintf(msg, args...)
		}
		cfg.Logger.Error("Kafka internal error", nil, map[string]interface{}{
			"error": formattedMsg,
		})
	})
}
