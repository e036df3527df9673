package deserializer

import (
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/columnio/avroread/v1/avrowire"
	"github.com/columnio/avroread/v1/columnar"
)

// valueFn decodes exactly one encoded value of its bound shape and returns it
// as the target column's value representation (nil for null).
type valueFn func(dec *avrowire.Decoder) (any, error)

// createDeserializeFn selects the decode operation for a matched schema node
// against the column's declared type, or fails with ErrTypeMismatch when no
// lossless mapping exists.
func (d *Deserializer) createDeserializeFn(schema avro.Schema, target columnar.ColumnType) (DeserializeFn, error) {
	fn, err := d.createValueFn(schema, target)
	if err != nil {
		return nil, err
	}
	return func(w columnar.ColumnWriter, dec *avrowire.Decoder) error {
		v, err := fn(dec)
		if err != nil {
			return err
		}
		if v == nil {
			return w.AppendNull()
		}
		return w.Append(v)
	}, nil
}

func (d *Deserializer) createValueFn(schema avro.Schema, target columnar.ColumnType) (valueFn, error) {
	schema = dereference(schema)

	switch n := schema.(type) {
	case *avro.NullSchema:
		if !target.Nullable {
			return nil, fmt.Errorf("%w: null does not fit non-nullable %s", ErrTypeMismatch, target)
		}
		return func(dec *avrowire.Decoder) (any, error) { return nil, nil }, nil
	case *avro.PrimitiveSchema:
		return createPrimitiveFn(n.Type(), target)
	case *avro.EnumSchema:
		if target.Kind != columnar.KindString {
			return nil, mismatch(schema, target)
		}
		symbols := n.Symbols()
		return func(dec *avrowire.Decoder) (any, error) {
			idx, err := dec.DecodeEnumIndex()
			if err != nil {
				return nil, err
			}
			if idx < 0 || int(idx) >= len(symbols) {
				return nil, fmt.Errorf("%w: enum index %d out of range [0,%d)", ErrMalformedData, idx, len(symbols))
			}
			return symbols[idx], nil
		}, nil
	case *avro.FixedSchema:
		size := n.Size()
		switch target.Kind {
		case columnar.KindFixed:
			if target.Size != size {
				return nil, fmt.Errorf("%w: fixed(%d) does not fit %s", ErrTypeMismatch, size, target)
			}
		case columnar.KindBytes:
		default:
			return nil, mismatch(schema, target)
		}
		return func(dec *avrowire.Decoder) (any, error) {
			return dec.DecodeFixed(size)
		}, nil
	case *avro.ArraySchema:
		if target.Kind != columnar.KindList {
			return nil, mismatch(schema, target)
		}
		elemFn, err := d.createValueFn(n.Items(), *target.Elem)
		if err != nil {
			return nil, err
		}
		return func(dec *avrowire.Decoder) (any, error) {
			items := []any{}
			for {
				count, _, err := dec.DecodeBlockHeader()
				if err != nil {
					return nil, err
				}
				if count == 0 {
					return items, nil
				}
				for i := int64(0); i < count; i++ {
					v, err := elemFn(dec)
					if err != nil {
						return nil, err
					}
					items = append(items, v)
				}
			}
		}, nil
	case *avro.MapSchema:
		if target.Kind != columnar.KindMap {
			return nil, mismatch(schema, target)
		}
		valFn, err := d.createValueFn(n.Values(), *target.Value)
		if err != nil {
			return nil, err
		}
		return func(dec *avrowire.Decoder) (any, error) {
			entries := map[string]any{}
			for {
				count, _, err := dec.DecodeBlockHeader()
				if err != nil {
					return nil, err
				}
				if count == 0 {
					return entries, nil
				}
				for i := int64(0); i < count; i++ {
					k, err := dec.DecodeString()
					if err != nil {
						return nil, err
					}
					v, err := valFn(dec)
					if err != nil {
						return nil, err
					}
					entries[k] = v
				}
			}
		}, nil
	case *avro.RecordSchema:
		if target.Kind != columnar.KindStruct {
			return nil, mismatch(schema, target)
		}
		return d.createStructFn(n, target)
	case *avro.UnionSchema:
		return d.createUnionFn(n, target)
	default:
		return nil, mismatch(schema, target)
	}
}

// recordStep decodes or skips one field of a nested record value.
type recordStep struct {
	name string
	val  valueFn // nil means skip
	skip SkipFn
}

// createStructFn maps a nested record to a struct column field by field:
// schema fields with a matching struct field decode, the rest are skipped,
// and every struct field must be covered.
func (d *Deserializer) createStructFn(n *avro.RecordSchema, target columnar.ColumnType) (valueFn, error) {
	covered := make(map[string]bool, len(target.Fields))
	steps := make([]recordStep, 0, len(n.Fields()))
	for _, f := range n.Fields() {
		var fieldType *columnar.ColumnType
		for i := range target.Fields {
			if target.Fields[i].Name == f.Name() {
				fieldType = &target.Fields[i].Type
				break
			}
		}
		if fieldType == nil {
			skip, err := d.createSkipFn(f.Type())
			if err != nil {
				return nil, err
			}
			steps = append(steps, recordStep{name: f.Name(), skip: skip})
			continue
		}
		fn, err := d.createValueFn(f.Type(), *fieldType)
		if err != nil {
			return nil, fmt.Errorf("struct field %q: %w", f.Name(), err)
		}
		covered[f.Name()] = true
		steps = append(steps, recordStep{name: f.Name(), val: fn})
	}
	for _, tf := range target.Fields {
		if !covered[tf.Name] {
			return nil, fmt.Errorf("%w: struct field %q not present in record %s", ErrTypeMismatch, tf.Name, n.FullName())
		}
	}
	return func(dec *avrowire.Decoder) (any, error) {
		out := make(map[string]any, len(covered))
		for _, step := range steps {
			if step.val == nil {
				if err := step.skip(dec); err != nil {
					return nil, err
				}
				continue
			}
			v, err := step.val(dec)
			if err != nil {
				return nil, err
			}
			out[step.name] = v
		}
		return out, nil
	}, nil
}

// createUnionFn maps a union to a column. Only the optionality form is
// representable: a two-branch union of null and one value type matched to a
// nullable column. The null branch writes null (the column's presence flag);
// any other union shape has no single-column representation.
func (d *Deserializer) createUnionFn(n *avro.UnionSchema, target columnar.ColumnType) (valueFn, error) {
	types := n.Types()
	nullIdx := -1
	valueIdx := -1
	for i, b := range types {
		if b.Type() == avro.Null {
			nullIdx = i
		} else {
			valueIdx = i
		}
	}
	if len(types) == 1 && nullIdx == -1 {
		// Single-branch union: decode the discriminant, then the sole branch.
		inner, err := d.createValueFn(types[0], target)
		if err != nil {
			return nil, err
		}
		return func(dec *avrowire.Decoder) (any, error) {
			idx, err := dec.DecodeUnionIndex()
			if err != nil {
				return nil, err
			}
			if idx != 0 {
				return nil, fmt.Errorf("%w: union discriminant %d out of range [0,1)", ErrMalformedData, idx)
			}
			return inner(dec)
		}, nil
	}
	if len(types) != 2 || nullIdx == -1 {
		return nil, fmt.Errorf("%w: union of %d branches has no single-column representation", ErrTypeMismatch, len(types))
	}
	if !target.Nullable {
		return nil, fmt.Errorf("%w: nullable union does not fit non-nullable %s", ErrTypeMismatch, target)
	}
	innerTarget := target
	innerTarget.Nullable = false
	inner, err := d.createValueFn(types[valueIdx], innerTarget)
	if err != nil {
		return nil, err
	}
	return func(dec *avrowire.Decoder) (any, error) {
		idx, err := dec.DecodeUnionIndex()
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= int64(len(types)) {
			return nil, fmt.Errorf("%w: union discriminant %d out of range [0,%d)", ErrMalformedData, idx, len(types))
		}
		if int(idx) == nullIdx {
			return nil, nil
		}
		return inner(dec)
	}, nil
}

// createPrimitiveFn is the matched-leaf operation table. Only lossless
// numeric widenings are allowed.
func createPrimitiveFn(typ avro.Type, target columnar.ColumnType) (valueFn, error) {
	switch typ {
	case avro.Boolean:
		if target.Kind != columnar.KindBool {
			return nil, primitiveMismatch(typ, target)
		}
		return func(dec *avrowire.Decoder) (any, error) { return dec.DecodeBool() }, nil
	case avro.Int:
		switch target.Kind {
		case columnar.KindInt32:
			return func(dec *avrowire.Decoder) (any, error) { return dec.DecodeInt() }, nil
		case columnar.KindInt64:
			return func(dec *avrowire.Decoder) (any, error) {
				v, err := dec.DecodeInt()
				return int64(v), err
			}, nil
		case columnar.KindFloat64:
			return func(dec *avrowire.Decoder) (any, error) {
				v, err := dec.DecodeInt()
				return float64(v), err
			}, nil
		}
		return nil, primitiveMismatch(typ, target)
	case avro.Long:
		if target.Kind != columnar.KindInt64 {
			return nil, primitiveMismatch(typ, target)
		}
		return func(dec *avrowire.Decoder) (any, error) { return dec.DecodeLong() }, nil
	case avro.Float:
		switch target.Kind {
		case columnar.KindFloat32:
			return func(dec *avrowire.Decoder) (any, error) { return dec.DecodeFloat() }, nil
		case columnar.KindFloat64:
			return func(dec *avrowire.Decoder) (any, error) {
				v, err := dec.DecodeFloat()
				return float64(v), err
			}, nil
		}
		return nil, primitiveMismatch(typ, target)
	case avro.Double:
		if target.Kind != columnar.KindFloat64 {
			return nil, primitiveMismatch(typ, target)
		}
		return func(dec *avrowire.Decoder) (any, error) { return dec.DecodeDouble() }, nil
	case avro.String:
		switch target.Kind {
		case columnar.KindString:
			return func(dec *avrowire.Decoder) (any, error) { return dec.DecodeString() }, nil
		case columnar.KindBytes:
			return func(dec *avrowire.Decoder) (any, error) { return dec.DecodeBytes() }, nil
		}
		return nil, primitiveMismatch(typ, target)
	case avro.Bytes:
		switch target.Kind {
		case columnar.KindBytes:
			return func(dec *avrowire.Decoder) (any, error) { return dec.DecodeBytes() }, nil
		case columnar.KindString:
			return func(dec *avrowire.Decoder) (any, error) { return dec.DecodeString() }, nil
		}
		return nil, primitiveMismatch(typ, target)
	default:
		return nil, primitiveMismatch(typ, target)
	}
}

func mismatch(schema avro.Schema, target columnar.ColumnType) error {
	return fmt.Errorf("%w: avro %s does not fit %s", ErrTypeMismatch, schema.Type(), target)
}

func primitiveMismatch(typ avro.Type, target columnar.ColumnType) error {
	return fmt.Errorf("%w: avro %s does not fit %s", ErrTypeMismatch, typ, target)
}
