// Package deserializer compiles an Avro schema against a fixed set of typed
// target columns into an executable decode plan, and executes that plan row
// by row against a binary decoder cursor.
//
// Compilation walks the schema graph once and produces a tree of actions:
// deserialize a matched field into its column, skip an unmatched field,
// iterate a record's fields, or dispatch on a union discriminant. The plan is
// bound to exactly one target column set and is reused for every row decoded
// under the same schema. Self-referential named types (a record whose field
// references the record itself) compile in bounded time: skip logic is
// memoized per symbolic type name, so a re-encountered name resolves to the
// in-progress entry instead of recursing.
//
// Structural problems (a matched field whose Avro type cannot be stored in
// the column's declared type, or a target column absent from the schema when
// missing fields are not allowed) fail at compile time and are never
// downgraded to per-row errors. Corrupt input at execution time (a union
// discriminant outside the declared branch range, a truncated value) fails
// the row with an error wrapping ErrMalformedData.
//
// Basic Usage:
//
//	target := columnar.Schema{
//	    {Name: "id", Type: columnar.ColumnType{Kind: columnar.KindInt64}},
//	    {Name: "name", Type: columnar.ColumnType{Kind: columnar.KindString}},
//	}
//	deser, err := deserializer.Compile(target, schema, deserializer.Options{
//	    AllowMissingFields: true,
//	})
//	if err != nil {
//	    return err
//	}
//	cols := columnar.Writers(columnar.NewColumns(target))
//	ext := columnar.NewRowRead(len(target))
//	err = deser.DeserializeRow(cols, avrowire.NewDecoderBytes(payload), ext)
package deserializer
