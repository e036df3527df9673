// Package columnar defines the target column model the deserializer writes
// into: an ordered, immutable set of named typed columns, the narrow
// ColumnWriter sink interface, and the per-row bookkeeping (RowRead) that
// records which columns an executed plan actually populated.
//
// The package also ships an in-memory Column implementation of ColumnWriter.
// Production pipelines are expected to adapt their own columnar storage to
// ColumnWriter; the deserializer only ever appends, it never reads back.
package columnar
