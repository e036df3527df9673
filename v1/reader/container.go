package reader

import (
	"bufio"
	"bytes"
	"compress/flate"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/golang/snappy"
	"github.com/hamba/avro/v2"

	"github.com/columnio/avroread/v1/avrowire"
	"github.com/columnio/avroread/v1/columnar"
	"github.com/columnio/avroread/v1/deserializer"
	"github.com/columnio/avroread/v1/metrics"
)

// Object container file constants.
var containerMagic = [4]byte{'O', 'b', 'j', 1}

const (
	metaSchemaKey = "avro.schema"
	metaCodecKey  = "avro.codec"
	syncSize      = 16
)

// Container block codecs.
const (
	CodecNull    = "null"
	CodecDeflate = "deflate"
	CodecSnappy  = "snappy"
)

// ContainerReader reads rows from a self-describing Avro object container
// file. The embedded writer schema is compiled once against the target
// columns; the resulting plan decodes every row in the file. Not safe for
// concurrent use.
type ContainerReader struct {
	br   *bufio.Reader
	dec  *avrowire.Decoder
	opts Options

	schema avro.Schema
	target columnar.Schema
	deser  *deserializer.Deserializer
	codec  string
	sync   [syncSize]byte

	rowsRemaining int64
	blockDec      *avrowire.Decoder
}

// NewContainerReader opens a container stream, parses the header, and
// compiles the decode plan. A nil target column set is inferred from the
// embedded schema. Structural mismatches between schema and target fail here,
// before any row is read.
func NewContainerReader(rd io.Reader, target columnar.Schema, opts Options) (*ContainerReader, error) {
	br := bufio.NewReader(rd)
	r := &ContainerReader{
		br:   br,
		dec:  avrowire.NewDecoder(br),
		opts: opts,
	}
	if err := r.readHeader(); err != nil {
		return nil, err
	}

	if target == nil {
		inferred, err := deserializer.InferColumns(r.schema)
		if err != nil {
			return nil, err
		}
		target = inferred
	}
	deser, err := deserializer.Compile(target, r.schema, opts.compileOptions())
	if err != nil {
		return nil, err
	}
	r.target = target
	r.deser = deser
	if opts.Metrics != nil {
		opts.Metrics.IncrementPlansCompiled(metrics.ModeContainer)
	}
	return r, nil
}

// readHeader consumes the magic, the metadata map, and the sync marker.
func (r *ContainerReader) readHeader() error {
	var magic [4]byte
	if _, err := io.ReadFull(r.br, magic[:]); err != nil {
		return fmt.Errorf("%w: reading magic: %v", ErrInvalidContainer, err)
	}
	if magic != containerMagic {
		return fmt.Errorf("%w: bad magic %q", ErrInvalidContainer, magic[:])
	}

	meta := make(map[string][]byte)
	for {
		count, _, err := r.dec.DecodeBlockHeader()
		if err != nil {
			return fmt.Errorf("%w: reading metadata: %v", ErrInvalidContainer, err)
		}
		if count == 0 {
			break
		}
		for i := int64(0); i < count; i++ {
			key, err := r.dec.DecodeString()
			if err != nil {
				return fmt.Errorf("%w: reading metadata key: %v", ErrInvalidContainer, err)
			}
			value, err := r.dec.DecodeBytes()
			if err != nil {
				return fmt.Errorf("%w: reading metadata value: %v", ErrInvalidContainer, err)
			}
			meta[key] = value
		}
	}

	schemaJSON, ok := meta[metaSchemaKey]
	if !ok {
		return fmt.Errorf("%w: missing %s metadata", ErrInvalidContainer, metaSchemaKey)
	}
	schema, err := avro.ParseBytesWithCache(schemaJSON, "", &avro.SchemaCache{})
	if err != nil {
		return fmt.Errorf("%w: parsing embedded schema: %v", ErrInvalidContainer, err)
	}
	r.schema = schema

	r.codec = CodecNull
	if c, ok := meta[metaCodecKey]; ok && len(c) > 0 {
		r.codec = string(c)
	}
	switch r.codec {
	case CodecNull, CodecDeflate, CodecSnappy:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedCodec, r.codec)
	}

	if _, err := io.ReadFull(r.br, r.sync[:]); err != nil {
		return fmt.Errorf("%w: reading sync marker: %v", ErrInvalidContainer, err)
	}
	return nil
}

// Schema returns the writer schema embedded in the container header.
func (r *ContainerReader) Schema() avro.Schema { return r.schema }

// TargetColumns returns the column set rows are decoded into.
func (r *ContainerReader) TargetColumns() columnar.Schema { return r.target }

// FoundColumns reports, per target column, whether the embedded schema bound
// it. Unfound columns are defaulted by ReadRow.
func (r *ContainerReader) FoundColumns() []bool { return r.deser.FoundColumns() }

// ReadRow decodes the next row into cols, applying defaults to columns the
// schema does not populate. Returns io.EOF at a clean end of file. Any decode
// error is fatal: rows inside a block have no boundary to resynchronize to.
func (r *ContainerReader) ReadRow(cols []columnar.ColumnWriter, ext *columnar.RowRead) error {
	for r.rowsRemaining == 0 {
		if err := r.nextBlock(); err != nil {
			return err
		}
	}
	if err := r.deser.DeserializeRow(cols, r.blockDec, ext); err != nil {
		if r.opts.Metrics != nil {
			r.opts.Metrics.IncrementMalformedRows(metrics.ModeContainer)
		}
		return fmt.Errorf("reader: decoding row: %w", err)
	}
	r.rowsRemaining--
	if err := columnar.ApplyDefaults(cols, ext); err != nil {
		return err
	}
	if r.opts.Metrics != nil {
		r.opts.Metrics.IncrementRowsDecoded(metrics.ModeContainer)
	}
	return nil
}

// nextBlock reads, verifies, and decompresses one data block.
func (r *ContainerReader) nextBlock() error {
	if _, err := r.br.Peek(1); err == io.EOF {
		return io.EOF
	}

	count, err := r.dec.DecodeLong()
	if err != nil {
		return fmt.Errorf("%w: reading block row count: %v", ErrInvalidContainer, err)
	}
	size, err := r.dec.DecodeLong()
	if err != nil {
		return fmt.Errorf("%w: reading block size: %v", ErrInvalidContainer, err)
	}
	if count < 0 || size < 0 {
		return fmt.Errorf("%w: negative block header (%d rows, %d bytes)", ErrInvalidContainer, count, size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r.br, data); err != nil {
		return fmt.Errorf("%w: reading block body: %v", ErrInvalidContainer, err)
	}

	var marker [syncSize]byte
	if _, err := io.ReadFull(r.br, marker[:]); err != nil {
		return fmt.Errorf("%w: reading block sync marker: %v", ErrInvalidContainer, err)
	}
	if marker != r.sync {
		return fmt.Errorf("%w: sync marker mismatch", ErrInvalidContainer)
	}

	body, err := r.decompress(data)
	if err != nil {
		return err
	}
	r.blockDec = avrowire.NewDecoderBytes(body)
	r.rowsRemaining = count
	r.opts.logDebug("Container block loaded", nil, map[string]interface{}{
		"rows":  count,
		"bytes": size,
		"codec": r.codec,
	})
	return nil
}

func (r *ContainerReader) decompress(data []byte) ([]byte, error) {
	switch r.codec {
	case CodecNull:
		return data, nil
	case CodecDeflate:
		fr := flate.NewReader(bytes.NewReader(data))
		defer fr.Close()
		out, err := io.ReadAll(fr)
		if err != nil {
			return nil, fmt.Errorf("%w: inflating block: %v", ErrInvalidContainer, err)
		}
		return out, nil
	case CodecSnappy:
		// Avro snappy blocks carry a 4-byte big-endian CRC32 of the
		// uncompressed body after the compressed data.
		if len(data) < 4 {
			return nil, fmt.Errorf("%w: snappy block shorter than its checksum", ErrInvalidContainer)
		}
		sum := binary.BigEndian.Uint32(data[len(data)-4:])
		out, err := snappy.Decode(nil, data[:len(data)-4])
		if err != nil {
			return nil, fmt.Errorf("%w: snappy block: %v", ErrInvalidContainer, err)
		}
		if crc32.ChecksumIEEE(out) != sum {
			return nil, fmt.Errorf("%w: snappy block checksum mismatch", ErrInvalidContainer)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCodec, r.codec)
	}
}
