package deserializer

import (
	"bytes"
	"testing"

	"github.com/hamba/avro/v2"

	"github.com/columnio/avroread/v1/avrowire"
	"github.com/columnio/avroread/v1/columnar"
)

// Fixtures in this file are produced by the reference encoder so the plan is
// exercised against real writer output rather than hand-assembled bytes.

func marshalRow(t *testing.T, schema avro.Schema, v any) []byte {
	t.Helper()
	data, err := avro.Marshal(schema, v)
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	return data
}

func TestRoundTrip_Primitives(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "Primitives",
		"fields": [
			{"name": "b", "type": "boolean"},
			{"name": "i", "type": "int"},
			{"name": "l", "type": "long"},
			{"name": "f", "type": "float"},
			{"name": "d", "type": "double"},
			{"name": "s", "type": "string"},
			{"name": "raw", "type": "bytes"}
		]
	}`)
	type row struct {
		B   bool    `avro:"b"`
		I   int32   `avro:"i"`
		L   int64   `avro:"l"`
		F   float32 `avro:"f"`
		D   float64 `avro:"d"`
		S   string  `avro:"s"`
		Raw []byte  `avro:"raw"`
	}
	target := columnar.Schema{
		{Name: "b", Type: columnar.ColumnType{Kind: columnar.KindBool}},
		{Name: "i", Type: columnar.ColumnType{Kind: columnar.KindInt32}},
		{Name: "l", Type: columnar.ColumnType{Kind: columnar.KindInt64}},
		{Name: "f", Type: columnar.ColumnType{Kind: columnar.KindFloat32}},
		{Name: "d", Type: columnar.ColumnType{Kind: columnar.KindFloat64}},
		{Name: "s", Type: columnar.ColumnType{Kind: columnar.KindString}},
		{Name: "raw", Type: columnar.ColumnType{Kind: columnar.KindBytes}},
	}
	d, err := Compile(target, schema, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	data := marshalRow(t, schema, row{
		B: true, I: -7, L: 1 << 40, F: 0.5, D: -3.75, S: "hello", Raw: []byte{1, 2, 3},
	})
	cols := columnar.NewColumns(target)
	decodeOneRow(t, d, cols, data)

	if cols[0].Value(0) != true {
		t.Errorf("b = %v", cols[0].Value(0))
	}
	if cols[1].Value(0) != int32(-7) {
		t.Errorf("i = %v", cols[1].Value(0))
	}
	if cols[2].Value(0) != int64(1<<40) {
		t.Errorf("l = %v", cols[2].Value(0))
	}
	if cols[3].Value(0) != float32(0.5) {
		t.Errorf("f = %v", cols[3].Value(0))
	}
	if cols[4].Value(0) != float64(-3.75) {
		t.Errorf("d = %v", cols[4].Value(0))
	}
	if cols[5].Value(0) != "hello" {
		t.Errorf("s = %v", cols[5].Value(0))
	}
	if !bytes.Equal(cols[6].Value(0).([]byte), []byte{1, 2, 3}) {
		t.Errorf("raw = %v", cols[6].Value(0))
	}
}

func TestRoundTrip_NumericWidening(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "W",
		"fields": [
			{"name": "i", "type": "int"},
			{"name": "f", "type": "float"}
		]
	}`)
	type row struct {
		I int32   `avro:"i"`
		F float32 `avro:"f"`
	}
	target := columnar.Schema{
		{Name: "i", Type: columnar.ColumnType{Kind: columnar.KindInt64}},
		{Name: "f", Type: columnar.ColumnType{Kind: columnar.KindFloat64}},
	}
	d, err := Compile(target, schema, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cols := columnar.NewColumns(target)
	decodeOneRow(t, d, cols, marshalRow(t, schema, row{I: 42, F: 1.5}))
	if cols[0].Value(0) != int64(42) {
		t.Errorf("widened int = %v (%T)", cols[0].Value(0), cols[0].Value(0))
	}
	if cols[1].Value(0) != float64(1.5) {
		t.Errorf("widened float = %v (%T)", cols[1].Value(0), cols[1].Value(0))
	}
}

func TestRoundTrip_NullableUnion(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "N",
		"fields": [{"name": "s", "type": ["null", "string"]}]
	}`)
	type row struct {
		S *string `avro:"s"`
	}
	target := columnar.Schema{
		{Name: "s", Type: columnar.ColumnType{Kind: columnar.KindString, Nullable: true}},
	}
	d, err := Compile(target, schema, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cols := columnar.NewColumns(target)

	v := "set"
	decodeOneRow(t, d, cols, marshalRow(t, schema, row{S: &v}))
	decodeOneRow(t, d, cols, marshalRow(t, schema, row{S: nil}))

	if cols[0].Value(0) != "set" || cols[0].IsNull(0) {
		t.Errorf("row 0 = %v (null=%v)", cols[0].Value(0), cols[0].IsNull(0))
	}
	if !cols[0].IsNull(1) {
		t.Error("row 1 must be null")
	}
}

func TestRoundTrip_NullableUnionNeedsNullableColumn(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "N",
		"fields": [{"name": "s", "type": ["null", "string"]}]
	}`)
	target := columnar.Schema{
		{Name: "s", Type: columnar.ColumnType{Kind: columnar.KindString}},
	}
	_, err := Compile(target, schema, Options{})
	if !IsTypeMismatchError(err) {
		t.Errorf("expected type mismatch, got %v", err)
	}
}

func TestRoundTrip_ArrayAndMap(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "C",
		"fields": [
			{"name": "xs", "type": {"type": "array", "items": "long"}},
			{"name": "m", "type": {"type": "map", "values": "long"}}
		]
	}`)
	type row struct {
		Xs []int64          `avro:"xs"`
		M  map[string]int64 `avro:"m"`
	}
	target := columnar.Schema{
		{Name: "xs", Type: columnar.ColumnType{Kind: columnar.KindList, Elem: &columnar.ColumnType{Kind: columnar.KindInt64}}},
		{Name: "m", Type: columnar.ColumnType{Kind: columnar.KindMap, Value: &columnar.ColumnType{Kind: columnar.KindInt64}}},
	}
	d, err := Compile(target, schema, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cols := columnar.NewColumns(target)
	decodeOneRow(t, d, cols, marshalRow(t, schema, row{
		Xs: []int64{10, 20, 30},
		M:  map[string]int64{"k": 9},
	}))

	xs := cols[0].Value(0).([]any)
	if len(xs) != 3 || xs[0] != int64(10) || xs[2] != int64(30) {
		t.Errorf("xs = %v", xs)
	}
	m := cols[1].Value(0).(map[string]any)
	if len(m) != 1 || m["k"] != int64(9) {
		t.Errorf("m = %v", m)
	}
}

func TestRoundTrip_EmptyArray(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "C",
		"fields": [{"name": "xs", "type": {"type": "array", "items": "long"}}]
	}`)
	type row struct {
		Xs []int64 `avro:"xs"`
	}
	target := columnar.Schema{
		{Name: "xs", Type: columnar.ColumnType{Kind: columnar.KindList, Elem: &columnar.ColumnType{Kind: columnar.KindInt64}}},
	}
	d, err := Compile(target, schema, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cols := columnar.NewColumns(target)
	decodeOneRow(t, d, cols, marshalRow(t, schema, row{Xs: []int64{}}))
	if xs := cols[0].Value(0).([]any); len(xs) != 0 {
		t.Errorf("xs = %v, want empty", xs)
	}
}

func TestRoundTrip_Enum(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "E",
		"fields": [{
			"name": "color",
			"type": {"type": "enum", "name": "Color", "symbols": ["RED", "GREEN", "BLUE"]}
		}]
	}`)
	type row struct {
		Color string `avro:"color"`
	}
	target := columnar.Schema{
		{Name: "color", Type: columnar.ColumnType{Kind: columnar.KindString}},
	}
	d, err := Compile(target, schema, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cols := columnar.NewColumns(target)
	decodeOneRow(t, d, cols, marshalRow(t, schema, row{Color: "GREEN"}))
	if cols[0].Value(0) != "GREEN" {
		t.Errorf("color = %v", cols[0].Value(0))
	}
}

func TestRoundTrip_EnumIndexOutOfRange(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "E",
		"fields": [{
			"name": "color",
			"type": {"type": "enum", "name": "Color", "symbols": ["RED"]}
		}]
	}`)
	target := columnar.Schema{
		{Name: "color", Type: columnar.ColumnType{Kind: columnar.KindString}},
	}
	d, err := Compile(target, schema, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cols := columnar.NewColumns(target)
	dec := avrowire.NewDecoderBytes([]byte{0x06}) // index 3
	rr := columnar.NewRowRead(len(cols))
	err = d.DeserializeRow(columnar.Writers(cols), dec, rr)
	if !IsMalformedDataError(err) {
		t.Errorf("expected malformed data error, got %v", err)
	}
}

func TestRoundTrip_Fixed(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "F",
		"fields": [{
			"name": "id",
			"type": {"type": "fixed", "name": "ID4", "size": 4}
		}]
	}`)
	target := columnar.Schema{
		{Name: "id", Type: columnar.ColumnType{Kind: columnar.KindFixed, Size: 4}},
	}
	d, err := Compile(target, schema, Options{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	cols := columnar.NewColumns(target)
	decodeOneRow(t, d, cols, []byte{0xde, 0xad, 0xbe, 0xef})
	if !bytes.Equal(cols[0].Value(0).([]byte), []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("id = % x", cols[0].Value(0))
	}
}

func TestRoundTrip_FixedSizeMismatch(t *testing.T) {
	schema := mustParse(t, `{
		"type": "record", "name": "F",
		"fields": [{
			"name": "id",
			"type": {"type": "fixed", "name": "ID4", "size": 4}
		}]
	}`)
	target := columnar.Schema{
		{Name: "id", Type: columnar.ColumnType{Kind: columnar.KindFixed, Size: 8}},
	}
	_, err := Compile(target, schema, Options{})
	if !IsTypeMismatchError(err) {
		t.Errorf("expected type mismatch, got %v", err)
	}
}
