// Package avrowire implements the low-level Avro binary encoding primitives
// used by the plan-based deserializer.
//
// A Decoder is a forward-only cursor over a byte stream. Every Decode/Skip
// method consumes exactly one encoded value of its shape and advances the
// cursor; nothing ever rewinds. Truncated or invalid input fails with an
// error wrapping ErrTruncated or ErrInvalidData.
//
// The package also defines the Confluent wire framing used for headerless
// messages: a single magic byte (0x0) followed by a 4-byte big-endian schema
// identifier, then the bare Avro-encoded datum.
//
// Basic Usage:
//
//	dec := avrowire.NewDecoderBytes(payload)
//	v, err := dec.DecodeLong()
//	if err != nil {
//	    return err
//	}
package avrowire
