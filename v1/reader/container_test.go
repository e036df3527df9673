package reader

import (
	"bytes"
	"io"
	"testing"

	"github.com/hamba/avro/v2/ocf"

	"github.com/columnio/avroread/v1/columnar"
)

const eventSchemaJSON = `{
	"type": "record", "name": "Event",
	"fields": [
		{"name": "id", "type": "long"},
		{"name": "name", "type": "string"}
	]
}`

type eventRow struct {
	ID   int64  `avro:"id"`
	Name string `avro:"name"`
}

func writeEventContainer(t *testing.T, codec ocf.CodecName, rows []eventRow) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := ocf.NewEncoder(eventSchemaJSON, &buf, ocf.WithCodec(codec))
	if err != nil {
		t.Fatalf("creating container encoder: %v", err)
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			t.Fatalf("encoding fixture row: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing container encoder: %v", err)
	}
	return buf.Bytes()
}

func readAllRows(t *testing.T, r *ContainerReader, cols []*columnar.Column) int {
	t.Helper()
	ws := columnar.Writers(cols)
	ext := columnar.NewRowRead(len(cols))
	n := 0
	for {
		err := r.ReadRow(ws, ext)
		if err == io.EOF {
			return n
		}
		if err != nil {
			t.Fatalf("ReadRow %d: %v", n, err)
		}
		n++
	}
}

func testCodecRoundTrip(t *testing.T, codec ocf.CodecName) {
	t.Helper()
	rows := []eventRow{{1, "a"}, {2, "b"}, {3, "c"}}
	data := writeEventContainer(t, codec, rows)

	r, err := NewContainerReader(bytes.NewReader(data), nil, Options{})
	if err != nil {
		t.Fatalf("NewContainerReader: %v", err)
	}
	cols := columnar.NewColumns(r.TargetColumns())
	if n := readAllRows(t, r, cols); n != len(rows) {
		t.Fatalf("decoded %d rows, want %d", n, len(rows))
	}
	for i, row := range rows {
		if cols[0].Value(i) != row.ID || cols[1].Value(i) != row.Name {
			t.Errorf("row %d = (%v, %v), want (%d, %q)",
				i, cols[0].Value(i), cols[1].Value(i), row.ID, row.Name)
		}
	}
}

func TestContainerReader_NullCodec(t *testing.T) {
	testCodecRoundTrip(t, ocf.Null)
}

func TestContainerReader_DeflateCodec(t *testing.T) {
	testCodecRoundTrip(t, ocf.Deflate)
}

func TestContainerReader_SnappyCodec(t *testing.T) {
	testCodecRoundTrip(t, ocf.Snappy)
}

func TestContainerReader_ExplicitTargetSubset(t *testing.T) {
	data := writeEventContainer(t, ocf.Null, []eventRow{{7, "seven"}})
	target := columnar.Schema{
		{Name: "name", Type: columnar.ColumnType{Kind: columnar.KindString}},
	}
	r, err := NewContainerReader(bytes.NewReader(data), target, Options{})
	if err != nil {
		t.Fatalf("NewContainerReader: %v", err)
	}
	cols := columnar.NewColumns(target)
	if n := readAllRows(t, r, cols); n != 1 {
		t.Fatalf("decoded %d rows, want 1", n)
	}
	if cols[0].Value(0) != "seven" {
		t.Errorf("name = %v", cols[0].Value(0))
	}
}

func TestContainerReader_MissingColumnDefaulted(t *testing.T) {
	data := writeEventContainer(t, ocf.Null, []eventRow{{1, "a"}})
	target := columnar.Schema{
		{Name: "id", Type: columnar.ColumnType{Kind: columnar.KindInt64}},
		{Name: "added_later", Type: columnar.ColumnType{Kind: columnar.KindString, Nullable: true}},
	}

	// Without the option the unmatched column fails construction.
	if _, err := NewContainerReader(bytes.NewReader(data), target, Options{}); err == nil {
		t.Fatal("expected construction to fail for unmatched column")
	}

	r, err := NewContainerReader(bytes.NewReader(data), target, Options{AllowMissingFields: true})
	if err != nil {
		t.Fatalf("NewContainerReader: %v", err)
	}
	found := r.FoundColumns()
	if !found[0] || found[1] {
		t.Errorf("FoundColumns = %v, want [true false]", found)
	}
	cols := columnar.NewColumns(target)
	if n := readAllRows(t, r, cols); n != 1 {
		t.Fatalf("decoded %d rows, want 1", n)
	}
	if !cols[1].IsNull(0) {
		t.Error("unmatched column must be defaulted to null")
	}
}

func TestContainerReader_TypeMismatchFailsBeforeRows(t *testing.T) {
	data := writeEventContainer(t, ocf.Null, []eventRow{{1, "a"}})
	target := columnar.Schema{
		{Name: "id", Type: columnar.ColumnType{Kind: columnar.KindString}},
	}
	if _, err := NewContainerReader(bytes.NewReader(data), target, Options{}); err == nil {
		t.Fatal("expected type mismatch at construction")
	}
}

func TestContainerReader_BadMagic(t *testing.T) {
	_, err := NewContainerReader(bytes.NewReader([]byte("PK\x03\x04junk")), nil, Options{})
	if !IsInvalidContainerError(err) {
		t.Errorf("expected invalid container error, got %v", err)
	}
}

// Hand-assembled containers for the corruption cases the reference encoder
// cannot produce.

func appendZigzag(b []byte, v int64) []byte {
	u := uint64((v << 1) ^ (v >> 63))
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

func appendLenPrefixed(b []byte, s []byte) []byte {
	b = appendZigzag(b, int64(len(s)))
	return append(b, s...)
}

func buildContainerHeader(schemaJSON, codec string, sync [16]byte) []byte {
	b := []byte("Obj\x01")
	b = appendZigzag(b, 2)
	b = appendLenPrefixed(b, []byte("avro.schema"))
	b = appendLenPrefixed(b, []byte(schemaJSON))
	b = appendLenPrefixed(b, []byte("avro.codec"))
	b = appendLenPrefixed(b, []byte(codec))
	b = appendZigzag(b, 0)
	return append(b, sync[:]...)
}

func TestContainerReader_UnsupportedCodec(t *testing.T) {
	var sync [16]byte
	data := buildContainerHeader(`{"type":"record","name":"R","fields":[{"name":"a","type":"long"}]}`, "lzma", sync)
	_, err := NewContainerReader(bytes.NewReader(data), nil, Options{})
	if !IsUnsupportedCodecError(err) {
		t.Errorf("expected unsupported codec error, got %v", err)
	}
}

func TestContainerReader_SyncMarkerMismatch(t *testing.T) {
	sync := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	data := buildContainerHeader(`{"type":"record","name":"R","fields":[{"name":"a","type":"long"}]}`, "null", sync)
	// One block of one row (a=1), followed by the wrong marker.
	data = appendZigzag(data, 1)
	data = appendZigzag(data, 1)
	data = append(data, 0x02)
	var wrong [16]byte
	data = append(data, wrong[:]...)

	r, err := NewContainerReader(bytes.NewReader(data), nil, Options{})
	if err != nil {
		t.Fatalf("NewContainerReader: %v", err)
	}
	cols := columnar.NewColumns(r.TargetColumns())
	err = r.ReadRow(columnar.Writers(cols), columnar.NewRowRead(len(cols)))
	if !IsInvalidContainerError(err) {
		t.Errorf("expected invalid container error, got %v", err)
	}
}

func TestContainerReader_MultipleBlocks(t *testing.T) {
	sync := [16]byte{0xaa, 0xbb, 0xcc, 0xdd, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	data := buildContainerHeader(`{"type":"record","name":"R","fields":[{"name":"a","type":"long"}]}`, "null", sync)
	// Block 1: rows a=1, a=2. Block 2: row a=3.
	data = appendZigzag(data, 2)
	data = appendZigzag(data, 2)
	data = append(data, 0x02, 0x04)
	data = append(data, sync[:]...)
	data = appendZigzag(data, 1)
	data = appendZigzag(data, 1)
	data = append(data, 0x06)
	data = append(data, sync[:]...)

	r, err := NewContainerReader(bytes.NewReader(data), nil, Options{})
	if err != nil {
		t.Fatalf("NewContainerReader: %v", err)
	}
	cols := columnar.NewColumns(r.TargetColumns())
	if n := readAllRows(t, r, cols); n != 3 {
		t.Fatalf("decoded %d rows, want 3", n)
	}
	for i, want := range []int64{1, 2, 3} {
		if cols[0].Value(i) != want {
			t.Errorf("row %d = %v, want %d", i, cols[0].Value(i), want)
		}
	}
}
