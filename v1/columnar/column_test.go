package columnar

import (
	"reflect"
	"testing"
)

func TestColumn_AppendAndRead(t *testing.T) {
	c := NewColumn(ColumnType{Kind: KindInt64})
	if err := c.Append(int64(7)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := c.Append(int64(9)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.Value(0) != int64(7) || c.Value(1) != int64(9) {
		t.Errorf("values = %v, %v", c.Value(0), c.Value(1))
	}
}

func TestColumn_NullRejectedOnNonNullable(t *testing.T) {
	c := NewColumn(ColumnType{Kind: KindString})
	if err := c.AppendNull(); err == nil {
		t.Error("expected error appending null to non-nullable column")
	}
	if err := c.Append(nil); err == nil {
		t.Error("expected error appending nil to non-nullable column")
	}
	if c.Len() != 0 {
		t.Errorf("rejected appends must not grow the column, Len = %d", c.Len())
	}
}

func TestColumn_Nullable(t *testing.T) {
	c := NewColumn(ColumnType{Kind: KindString, Nullable: true})
	if err := c.Append("a"); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := c.AppendNull(); err != nil {
		t.Fatalf("AppendNull: %v", err)
	}
	if c.IsNull(0) || !c.IsNull(1) {
		t.Errorf("null bitmap = %v, %v", c.IsNull(0), c.IsNull(1))
	}
}

func TestColumn_Truncate(t *testing.T) {
	c := NewColumn(ColumnType{Kind: KindInt32})
	for i := 0; i < 5; i++ {
		if err := c.Append(int32(i)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	c.Truncate(3)
	if c.Len() != 3 {
		t.Fatalf("Len after Truncate = %d, want 3", c.Len())
	}
	c.Truncate(10) // no-op past length
	if c.Len() != 3 {
		t.Errorf("Truncate past length changed Len to %d", c.Len())
	}
}

func TestZeroValue(t *testing.T) {
	cases := []struct {
		typ  ColumnType
		want any
	}{
		{ColumnType{Kind: KindBool}, false},
		{ColumnType{Kind: KindInt64}, int64(0)},
		{ColumnType{Kind: KindString}, ""},
		{ColumnType{Kind: KindString, Nullable: true}, nil},
		{ColumnType{Kind: KindFixed, Size: 4}, []byte{0, 0, 0, 0}},
		{ColumnType{Kind: KindList, Elem: &ColumnType{Kind: KindInt64}}, []any{}},
	}
	for _, c := range cases {
		if got := ZeroValue(c.typ); !reflect.DeepEqual(got, c.want) {
			t.Errorf("ZeroValue(%s) = %#v, want %#v", c.typ, got, c.want)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	schema := Schema{
		{Name: "a", Type: ColumnType{Kind: KindInt64}},
		{Name: "b", Type: ColumnType{Kind: KindString, Nullable: true}},
	}
	cols := NewColumns(schema)
	ws := Writers(cols)

	rr := NewRowRead(len(schema))
	rr.Written[0] = true
	if err := ws[0].Append(int64(5)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := ApplyDefaults(ws, rr); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}
	if cols[0].Len() != 1 || cols[1].Len() != 1 {
		t.Fatalf("lengths = %d, %d, want 1, 1", cols[0].Len(), cols[1].Len())
	}
	if !cols[1].IsNull(0) {
		t.Error("nullable column must default to null")
	}

	rr.Reset()
	for i, w := range rr.Written {
		if w {
			t.Errorf("Reset left Written[%d] set", i)
		}
	}
}

func TestSchema_IndexOf(t *testing.T) {
	s := Schema{
		{Name: "id", Type: ColumnType{Kind: KindInt64}},
		{Name: "name", Type: ColumnType{Kind: KindString}},
	}
	if got := s.IndexOf("name"); got != 1 {
		t.Errorf("IndexOf(name) = %d, want 1", got)
	}
	if got := s.IndexOf("missing"); got != -1 {
		t.Errorf("IndexOf(missing) = %d, want -1", got)
	}
}

func TestColumnType_String(t *testing.T) {
	typ := ColumnType{Kind: KindList, Nullable: true, Elem: &ColumnType{Kind: KindInt64}}
	if got := typ.String(); got != "nullable list<int64>" {
		t.Errorf("String() = %q", got)
	}
}
