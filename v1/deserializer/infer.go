package deserializer

import (
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/columnio/avroread/v1/columnar"
)

// InferColumns maps a record schema to a target column set when no explicit
// target is supplied: one column per top-level field, with nested records
// becoming struct columns and two-branch null unions becoming nullable
// columns. Shapes with no single-column representation fail with
// ErrUnsupportedSchema.
func InferColumns(schema avro.Schema) (columnar.Schema, error) {
	root := dereference(schema)
	record, ok := root.(*avro.RecordSchema)
	if !ok {
		return nil, fmt.Errorf("%w: root schema must be a record, got %s", ErrUnsupportedSchema, root.Type())
	}
	seen := map[string]bool{record.FullName(): true}
	out := make(columnar.Schema, 0, len(record.Fields()))
	for _, f := range record.Fields() {
		t, err := inferType(f.Type(), seen)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name(), err)
		}
		out = append(out, columnar.TargetColumn{Name: f.Name(), Type: t})
	}
	return out, nil
}

// inferType maps one schema node to a column type. seen guards against
// self-referential named types, which have no finite column representation.
func inferType(schema avro.Schema, seen map[string]bool) (columnar.ColumnType, error) {
	schema = dereference(schema)

	if named, ok := schema.(avro.NamedSchema); ok {
		name := named.FullName()
		if seen[name] {
			return columnar.ColumnType{}, fmt.Errorf("%w: self-referential type %s", ErrUnsupportedSchema, name)
		}
		seen[name] = true
		defer delete(seen, name)
	}

	switch n := schema.(type) {
	case *avro.PrimitiveSchema:
		return inferPrimitive(n.Type())
	case *avro.EnumSchema:
		return columnar.ColumnType{Kind: columnar.KindString}, nil
	case *avro.FixedSchema:
		return columnar.ColumnType{Kind: columnar.KindFixed, Size: n.Size()}, nil
	case *avro.ArraySchema:
		elem, err := inferType(n.Items(), seen)
		if err != nil {
			return columnar.ColumnType{}, err
		}
		return columnar.ColumnType{Kind: columnar.KindList, Elem: &elem}, nil
	case *avro.MapSchema:
		value, err := inferType(n.Values(), seen)
		if err != nil {
			return columnar.ColumnType{}, err
		}
		return columnar.ColumnType{Kind: columnar.KindMap, Value: &value}, nil
	case *avro.RecordSchema:
		fields := make([]columnar.TargetColumn, 0, len(n.Fields()))
		for _, f := range n.Fields() {
			t, err := inferType(f.Type(), seen)
			if err != nil {
				return columnar.ColumnType{}, fmt.Errorf("field %q: %w", f.Name(), err)
			}
			fields = append(fields, columnar.TargetColumn{Name: f.Name(), Type: t})
		}
		return columnar.ColumnType{Kind: columnar.KindStruct, Fields: fields}, nil
	case *avro.UnionSchema:
		return inferUnion(n, seen)
	default:
		return columnar.ColumnType{}, fmt.Errorf("%w: avro %s has no column mapping", ErrUnsupportedSchema, schema.Type())
	}
}

// inferUnion accepts only the optionality form: exactly null plus one value
// type maps to a nullable column. A single-branch union collapses to its
// branch. Anything wider would need a sum-type column, which the target
// model does not have.
func inferUnion(n *avro.UnionSchema, seen map[string]bool) (columnar.ColumnType, error) {
	types := n.Types()
	if len(types) == 1 && types[0].Type() != avro.Null {
		return inferType(types[0], seen)
	}
	if len(types) == 2 {
		var value avro.Schema
		nulls := 0
		for _, b := range types {
			if b.Type() == avro.Null {
				nulls++
			} else {
				value = b
			}
		}
		if nulls == 1 {
			t, err := inferType(value, seen)
			if err != nil {
				return columnar.ColumnType{}, err
			}
			t.Nullable = true
			return t, nil
		}
	}
	return columnar.ColumnType{}, fmt.Errorf("%w: union of %d branches has no column mapping", ErrUnsupportedSchema, len(types))
}

func inferPrimitive(typ avro.Type) (columnar.ColumnType, error) {
	switch typ {
	case avro.Boolean:
		return columnar.ColumnType{Kind: columnar.KindBool}, nil
	case avro.Int:
		return columnar.ColumnType{Kind: columnar.KindInt32}, nil
	case avro.Long:
		return columnar.ColumnType{Kind: columnar.KindInt64}, nil
	case avro.Float:
		return columnar.ColumnType{Kind: columnar.KindFloat32}, nil
	case avro.Double:
		return columnar.ColumnType{Kind: columnar.KindFloat64}, nil
	case avro.String:
		return columnar.ColumnType{Kind: columnar.KindString}, nil
	case avro.Bytes:
		return columnar.ColumnType{Kind: columnar.KindBytes}, nil
	default:
		return columnar.ColumnType{}, fmt.Errorf("%w: avro %s has no column mapping", ErrUnsupportedSchema, typ)
	}
}
