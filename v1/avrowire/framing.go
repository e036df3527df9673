package avrowire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Confluent wire framing: every headerless message starts with a 1-byte
// marker followed by a 4-byte big-endian schema identifier at offset 0.
const (
	// MagicByte is the reserved marker at offset 0 of every framed message.
	MagicByte byte = 0x0

	// HeaderSize is the total framing prefix length in bytes.
	HeaderSize = 5
)

// EncodeMessageHeader encodes a schema ID in the Confluent wire format.
// Format: [magic_byte][schema_id]
//   - magic_byte: 0x0 (1 byte)
//   - schema_id: 4 bytes (big-endian)
func EncodeMessageHeader(schemaID uint32) []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = MagicByte
	binary.BigEndian.PutUint32(buf[1:], schemaID)
	return buf
}

// DecodeMessageHeader decodes a schema ID from the Confluent wire format.
// Returns the schema ID and the remaining payload (after the 5-byte header).
func DecodeMessageHeader(data []byte) (uint32, []byte, error) {
	if len(data) < HeaderSize {
		return 0, nil, fmt.Errorf("%w: expected at least %d bytes, got %d", ErrTruncated, HeaderSize, len(data))
	}
	if data[0] != MagicByte {
		return 0, nil, fmt.Errorf("%w: invalid magic byte 0x%x", ErrInvalidData, data[0])
	}
	return binary.BigEndian.Uint32(data[1:HeaderSize]), data[HeaderSize:], nil
}

// ReadMessageHeader consumes the 5-byte framing prefix from a stream and
// returns the schema ID. io.EOF is returned unwrapped when the stream ends
// cleanly before the first header byte, so callers can detect end of input.
func ReadMessageHeader(r io.Reader) (uint32, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:1]); err != nil {
		if err == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	if buf[0] != MagicByte {
		return 0, fmt.Errorf("%w: invalid magic byte 0x%x", ErrInvalidData, buf[0])
	}
	if _, err := io.ReadFull(r, buf[1:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return binary.BigEndian.Uint32(buf[1:]), nil
}
