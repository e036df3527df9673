package avrowire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxVarintBytes is the longest legal zigzag varint for a 64-bit value.
const maxVarintBytes = 10

// Decoder is a forward-only cursor over an Avro binary stream.
// It is not safe for concurrent use.
type Decoder struct {
	r   io.Reader
	buf [8]byte
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// NewDecoderBytes creates a Decoder over an in-memory buffer.
func NewDecoderBytes(b []byte) *Decoder {
	return &Decoder{r: bytes.NewReader(b)}
}

// readByte reads exactly one byte from the stream.
func (d *Decoder) readByte() (byte, error) {
	if br, ok := d.r.(io.ByteReader); ok {
		b, err := br.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
		}
		return b, nil
	}
	if _, err := io.ReadFull(d.r, d.buf[:1]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return d.buf[0], nil
}

// readFull fills b from the stream or fails with ErrTruncated.
func (d *Decoder) readFull(b []byte) error {
	if _, err := io.ReadFull(d.r, b); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return nil
}

// DecodeLong reads one zigzag-encoded varint as a 64-bit integer.
func (d *Decoder) DecodeLong() (int64, error) {
	var n uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		b, err := d.readByte()
		if err != nil {
			return 0, err
		}
		n |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			// zigzag decode
			return int64(n>>1) ^ -int64(n&1), nil
		}
		shift += 7
	}
	return 0, fmt.Errorf("%w: varint longer than %d bytes", ErrInvalidData, maxVarintBytes)
}

// DecodeInt reads one zigzag-encoded varint as a 32-bit integer.
func (d *Decoder) DecodeInt() (int32, error) {
	v, err := d.DecodeLong()
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: int value %d out of 32-bit range", ErrInvalidData, v)
	}
	return int32(v), nil
}

// DecodeBool reads one encoded boolean.
func (d *Decoder) DecodeBool() (bool, error) {
	b, err := d.readByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%w: bool byte 0x%x", ErrInvalidData, b)
	}
}

// DecodeFloat reads one IEEE-754 single-precision value.
func (d *Decoder) DecodeFloat() (float32, error) {
	if err := d.readFull(d.buf[:4]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(d.buf[:4])), nil
}

// DecodeDouble reads one IEEE-754 double-precision value.
func (d *Decoder) DecodeDouble() (float64, error) {
	if err := d.readFull(d.buf[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(d.buf[:8])), nil
}

// DecodeBytes reads one length-prefixed byte sequence.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	n, err := d.DecodeLong()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative bytes length %d", ErrInvalidData, n)
	}
	b := make([]byte, n)
	if err := d.readFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

// DecodeString reads one length-prefixed UTF-8 string.
func (d *Decoder) DecodeString() (string, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeFixed reads exactly size bytes.
func (d *Decoder) DecodeFixed(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: negative fixed size %d", ErrInvalidData, size)
	}
	b := make([]byte, size)
	if err := d.readFull(b); err != nil {
		return nil, err
	}
	return b, nil
}

// DecodeEnumIndex reads the symbol index of an enum value.
func (d *Decoder) DecodeEnumIndex() (int32, error) {
	return d.DecodeInt()
}

// DecodeUnionIndex reads the branch discriminant of a union value.
func (d *Decoder) DecodeUnionIndex() (int64, error) {
	return d.DecodeLong()
}

// DecodeBlockHeader reads one array/map block header and normalizes the
// negative-count form. It returns the item count of the block and, when the
// writer supplied it, the encoded byte size of the block body (-1 otherwise).
// A zero count terminates the sequence.
func (d *Decoder) DecodeBlockHeader() (count int64, size int64, err error) {
	count, err = d.DecodeLong()
	if err != nil {
		return 0, 0, err
	}
	if count >= 0 {
		return count, -1, nil
	}
	// Negative count: the writer prefixed the block with its byte size so
	// readers can skip it without decoding items.
	size, err = d.DecodeLong()
	if err != nil {
		return 0, 0, err
	}
	if size < 0 {
		return 0, 0, fmt.Errorf("%w: negative block size %d", ErrInvalidData, size)
	}
	return -count, size, nil
}

// Discard consumes and drops exactly n bytes.
func (d *Decoder) Discard(n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: negative discard %d", ErrInvalidData, n)
	}
	if _, err := io.CopyN(io.Discard, d.r, n); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return nil
}

// SkipBool consumes one encoded boolean.
func (d *Decoder) SkipBool() error {
	_, err := d.DecodeBool()
	return err
}

// SkipInt consumes one encoded int.
func (d *Decoder) SkipInt() error {
	_, err := d.DecodeInt()
	return err
}

// SkipLong consumes one encoded long.
func (d *Decoder) SkipLong() error {
	_, err := d.DecodeLong()
	return err
}

// SkipFloat consumes one encoded float.
func (d *Decoder) SkipFloat() error {
	return d.Discard(4)
}

// SkipDouble consumes one encoded double.
func (d *Decoder) SkipDouble() error {
	return d.Discard(8)
}

// SkipBytes consumes one length-prefixed byte sequence without materializing it.
func (d *Decoder) SkipBytes() error {
	n, err := d.DecodeLong()
	if err != nil {
		return err
	}
	if n < 0 {
		return fmt.Errorf("%w: negative bytes length %d", ErrInvalidData, n)
	}
	return d.Discard(n)
}

// SkipString consumes one length-prefixed string without materializing it.
func (d *Decoder) SkipString() error {
	return d.SkipBytes()
}

// SkipFixed consumes exactly size bytes.
func (d *Decoder) SkipFixed(size int) error {
	return d.Discard(int64(size))
}

// SkipBlocks consumes an entire array/map block sequence, calling skipItem
// once per item unless the block carries a byte size, in which case the whole
// block body is discarded directly.
func (d *Decoder) SkipBlocks(skipItem func(*Decoder) error) error {
	for {
		count, size, err := d.DecodeBlockHeader()
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if size >= 0 {
			if err := d.Discard(size); err != nil {
				return err
			}
			continue
		}
		for i := int64(0); i < count; i++ {
			if err := skipItem(d); err != nil {
				return err
			}
		}
	}
}
