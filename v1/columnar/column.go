package columnar

import "fmt"

// ColumnWriter is the sink the deserializer produces into. Implementations
// own the storage; the deserializer only appends and never reads back.
type ColumnWriter interface {
	// Append writes one value to the end of the column.
	Append(v any) error

	// AppendNull writes one null to the end of the column.
	AppendNull() error

	// AppendZero writes the column's default value.
	AppendZero() error
}

// Column is an in-memory ColumnWriter used by tests and small batch jobs.
type Column struct {
	typ    ColumnType
	values []any
	nulls  []bool
}

// NewColumn creates an empty in-memory column of the given type.
func NewColumn(t ColumnType) *Column {
	return &Column{typ: t}
}

// Type returns the declared column type.
func (c *Column) Type() ColumnType { return c.typ }

// Len returns the number of appended rows.
func (c *Column) Len() int { return len(c.values) }

// Value returns the value at row i (nil when null).
func (c *Column) Value(i int) any { return c.values[i] }

// IsNull reports whether row i is null.
func (c *Column) IsNull(i int) bool { return c.nulls[i] }

// Truncate drops rows from the end until n remain. Used by batch readers to
// roll back the partial writes of a row that failed mid-decode.
func (c *Column) Truncate(n int) {
	if n < 0 || n >= len(c.values) {
		return
	}
	c.values = c.values[:n]
	c.nulls = c.nulls[:n]
}

// Append writes one value to the end of the column.
func (c *Column) Append(v any) error {
	if v == nil {
		return c.AppendNull()
	}
	c.values = append(c.values, v)
	c.nulls = append(c.nulls, false)
	return nil
}

// AppendNull writes one null to the end of the column. Non-nullable columns
// reject nulls.
func (c *Column) AppendNull() error {
	if !c.typ.Nullable {
		return fmt.Errorf("columnar: null appended to non-nullable %s column", c.typ)
	}
	c.values = append(c.values, nil)
	c.nulls = append(c.nulls, true)
	return nil
}

// AppendZero writes the column's default value.
func (c *Column) AppendZero() error {
	if c.typ.Nullable {
		return c.AppendNull()
	}
	return c.Append(ZeroValue(c.typ))
}

// NewColumns creates one in-memory column per target schema slot.
func NewColumns(s Schema) []*Column {
	cols := make([]*Column, len(s))
	for i, tc := range s {
		cols[i] = NewColumn(tc.Type)
	}
	return cols
}

// Writers adapts a slice of concrete columns to the sink interface.
func Writers(cols []*Column) []ColumnWriter {
	ws := make([]ColumnWriter, len(cols))
	for i, c := range cols {
		ws[i] = c
	}
	return ws
}

// RowRead records, for one decoded row, which columns the plan wrote.
// Columns left false must be defaulted by the caller.
type RowRead struct {
	Written []bool
}

// NewRowRead creates a RowRead sized for n columns.
func NewRowRead(n int) *RowRead {
	return &RowRead{Written: make([]bool, n)}
}

// Reset clears the record for reuse on the next row.
func (r *RowRead) Reset() {
	for i := range r.Written {
		r.Written[i] = false
	}
}

// ApplyDefaults appends a default value to every column the row did not write.
func ApplyDefaults(cols []ColumnWriter, r *RowRead) error {
	for i, written := range r.Written {
		if written {
			continue
		}
		if err := cols[i].AppendZero(); err != nil {
			return fmt.Errorf("columnar: defaulting column %d: %w", i, err)
		}
	}
	return nil
}
