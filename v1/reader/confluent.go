package reader

import (
	"context"
	"fmt"
	"time"

	"github.com/columnio/avroread/v1/avrowire"
	"github.com/columnio/avroread/v1/columnar"
	"github.com/columnio/avroread/v1/deserializer"
	"github.com/columnio/avroread/v1/metrics"
	"github.com/columnio/avroread/v1/schema_registry"
)

// ConfluentReader decodes headerless framed messages (1 marker byte + 4-byte
// big-endian schema id + bare Avro datum), resolving schema identifiers
// through a registry client.
//
// The reader keeps its own schema-id -> plan cache: one stream can multiplex
// rows written under several schema identifiers, and reader instances are
// recreated per batch while identifiers recur. The cache is intentionally
// not shared across instances; a plan binds this reader's column indices and
// is cheap to recompile relative to a registry fetch, which IS shared (the
// registry client's schema cache outlives the reader).
//
// Not safe for concurrent use.
type ConfluentReader struct {
	registry schema_registry.Registry
	target   columnar.Schema
	opts     Options

	plans map[uint32]*deserializer.Deserializer
}

// MessageError reports the failure of one message inside a batch.
type MessageError struct {
	// Index is the message's position in the batch.
	Index int

	// Err is the decode failure.
	Err error
}

func (e MessageError) Error() string {
	return fmt.Sprintf("message %d: %v", e.Index, e.Err)
}

func (e MessageError) Unwrap() error { return e.Err }

// NewConfluentReader creates a reader bound to a registry and a target column
// set. A nil target is inferred from the first schema the stream resolves and
// then fixed for the reader's lifetime.
func NewConfluentReader(registry schema_registry.Registry, target columnar.Schema, opts Options) *ConfluentReader {
	return &ConfluentReader{
		registry: registry,
		target:   target,
		opts:     opts,
		plans:    make(map[uint32]*deserializer.Deserializer),
	}
}

// TargetColumns returns the column set rows are decoded into. Nil until the
// first message resolves when the target is inferred.
func (r *ConfluentReader) TargetColumns() columnar.Schema { return r.target }

// DecodeMessage decodes one framed message into cols and records written
// columns in ext. The caller applies defaults for unwritten columns (or uses
// ReadBatch, which does both). Compile-time mismatches for a newly seen
// schema id, registry failures, and corrupt data all surface as errors; only
// the last category is isolated to the message.
func (r *ConfluentReader) DecodeMessage(ctx context.Context, msg []byte, cols []columnar.ColumnWriter, ext *columnar.RowRead) error {
	schemaID, payload, err := avrowire.DecodeMessageHeader(msg)
	if err != nil {
		return err
	}
	deser, err := r.planFor(ctx, schemaID)
	if err != nil {
		return err
	}
	return deser.DeserializeRow(cols, avrowire.NewDecoderBytes(payload), ext)
}

// ReadBatch decodes a batch of framed messages. Corrupt messages are
// isolated: their partial column writes are rolled back, the failure is
// recorded, and decoding resumes at the next message boundary. Registry and
// structural failures abort the batch since every later message under that
// schema id would fail identically. Returns the number of rows decoded.
func (r *ConfluentReader) ReadBatch(ctx context.Context, msgs [][]byte, cols []columnar.ColumnWriter, ext *columnar.RowRead) (int, []MessageError, error) {
	rows := 0
	var msgErrs []MessageError
	for i, msg := range msgs {
		lens := snapshotLengths(cols)
		err := r.DecodeMessage(ctx, msg, cols, ext)
		if err == nil {
			if err := columnar.ApplyDefaults(cols, ext); err != nil {
				return rows, msgErrs, err
			}
			rows++
			if r.opts.Metrics != nil {
				r.opts.Metrics.IncrementRowsDecoded(metrics.ModeConfluent)
			}
			continue
		}
		if !isDataCorruption(err) {
			return rows, msgErrs, err
		}
		rollback(cols, lens)
		msgErrs = append(msgErrs, MessageError{Index: i, Err: err})
		if r.opts.Metrics != nil {
			r.opts.Metrics.IncrementMalformedRows(metrics.ModeConfluent)
		}
		r.opts.logWarn("Malformed message skipped", err, map[string]interface{}{
			"message_index": i,
		})
	}
	return rows, msgErrs, nil
}

// planFor resolves a schema id to a compiled plan: reader-local plan cache
// first, then the registry client's schema cache, then the network.
func (r *ConfluentReader) planFor(ctx context.Context, schemaID uint32) (*deserializer.Deserializer, error) {
	if deser, ok := r.plans[schemaID]; ok {
		return deser, nil
	}

	start := time.Now()
	schema, err := r.registry.GetSchemaByID(ctx, schemaID)
	if r.opts.Metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		r.opts.Metrics.RecordSchemaFetchDuration(start, outcome)
	}
	if err != nil {
		return nil, err
	}

	if r.target == nil {
		inferred, err := deserializer.InferColumns(schema)
		if err != nil {
			return nil, err
		}
		r.target = inferred
	}

	deser, err := deserializer.Compile(r.target, schema, r.opts.compileOptions())
	if err != nil {
		return nil, err
	}
	r.plans[schemaID] = deser
	if r.opts.Metrics != nil {
		r.opts.Metrics.IncrementPlansCompiled(metrics.ModeConfluent)
	}
	r.opts.logDebug("Plan compiled for schema id", nil, map[string]interface{}{
		"schema_id": schemaID,
	})
	return deser, nil
}

// isDataCorruption separates per-message data-quality failures, which the
// framing lets us skip past, from structural and lookup failures, which
// would repeat for every message.
func isDataCorruption(err error) bool {
	return deserializer.IsMalformedDataError(err) ||
		avrowire.IsTruncatedError(err) ||
		avrowire.IsInvalidDataError(err)
}

// truncatable is implemented by column sinks that can roll back the partial
// writes of a failed row (columnar.Column does).
type truncatable interface {
	Len() int
	Truncate(n int)
}

func snapshotLengths(cols []columnar.ColumnWriter) []int {
	lens := make([]int, len(cols))
	for i, c := range cols {
		if t, ok := c.(truncatable); ok {
			lens[i] = t.Len()
		} else {
			lens[i] = -1
		}
	}
	return lens
}

func rollback(cols []columnar.ColumnWriter, lens []int) {
	for i, c := range cols {
		if lens[i] < 0 {
			continue
		}
		if t, ok := c.(truncatable); ok {
			t.Truncate(lens[i])
		}
	}
}
