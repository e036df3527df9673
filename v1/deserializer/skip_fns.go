package deserializer

import (
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/columnio/avroread/v1/avrowire"
)

// createSkipFn compiles the operation that consumes one encoded value of the
// given shape without storing it. Skip logic for named types (record, enum,
// fixed) is memoized by symbolic name: the memo entry is installed before the
// children are compiled, so a self-reference resolves to the in-progress
// entry instead of recursing forever.
func (d *Deserializer) createSkipFn(schema avro.Schema) (SkipFn, error) {
	schema = dereference(schema)

	if named, ok := schema.(avro.NamedSchema); ok {
		name := named.FullName()
		if cell, ok := d.symbolicSkip[name]; ok {
			return cell.resolve, nil
		}
		cell := &skipCell{}
		d.symbolicSkip[name] = cell
		fn, err := d.createNamedSkipFn(named)
		if err != nil {
			return nil, err
		}
		cell.fn = fn
		return cell.resolve, nil
	}

	switch n := schema.(type) {
	case *avro.NullSchema:
		return func(dec *avrowire.Decoder) error { return nil }, nil
	case *avro.PrimitiveSchema:
		return createPrimitiveSkipFn(n.Type())
	case *avro.ArraySchema:
		itemSkip, err := d.createSkipFn(n.Items())
		if err != nil {
			return nil, err
		}
		return func(dec *avrowire.Decoder) error {
			return dec.SkipBlocks(itemSkip)
		}, nil
	case *avro.MapSchema:
		valueSkip, err := d.createSkipFn(n.Values())
		if err != nil {
			return nil, err
		}
		entrySkip := func(dec *avrowire.Decoder) error {
			if err := dec.SkipString(); err != nil {
				return err
			}
			return valueSkip(dec)
		}
		return func(dec *avrowire.Decoder) error {
			return dec.SkipBlocks(entrySkip)
		}, nil
	case *avro.UnionSchema:
		types := n.Types()
		branchSkips := make([]SkipFn, 0, len(types))
		for _, b := range types {
			skip, err := d.createSkipFn(b)
			if err != nil {
				return nil, err
			}
			branchSkips = append(branchSkips, skip)
		}
		return func(dec *avrowire.Decoder) error {
			index, err := dec.DecodeUnionIndex()
			if err != nil {
				return fmt.Errorf("%w: reading union discriminant: %v", ErrMalformedData, err)
			}
			if index < 0 || index >= int64(len(branchSkips)) {
				return fmt.Errorf("%w: union discriminant %d out of range [0,%d)", ErrMalformedData, index, len(branchSkips))
			}
			return branchSkips[index](dec)
		}, nil
	default:
		return nil, fmt.Errorf("%w: no skip operation for avro %s", ErrTypeMismatch, schema.Type())
	}
}

// createNamedSkipFn builds the real skip logic behind a named type's memo cell.
func (d *Deserializer) createNamedSkipFn(named avro.NamedSchema) (SkipFn, error) {
	switch n := named.(type) {
	case *avro.RecordSchema:
		fields := n.Fields()
		fieldSkips := make([]SkipFn, 0, len(fields))
		for _, f := range fields {
			skip, err := d.createSkipFn(f.Type())
			if err != nil {
				return nil, err
			}
			fieldSkips = append(fieldSkips, skip)
		}
		return func(dec *avrowire.Decoder) error {
			for _, skip := range fieldSkips {
				if err := skip(dec); err != nil {
					return err
				}
			}
			return nil
		}, nil
	case *avro.EnumSchema:
		return func(dec *avrowire.Decoder) error { return dec.SkipInt() }, nil
	case *avro.FixedSchema:
		size := n.Size()
		return func(dec *avrowire.Decoder) error { return dec.SkipFixed(size) }, nil
	default:
		return nil, fmt.Errorf("%w: no skip operation for named avro %s", ErrTypeMismatch, named.Type())
	}
}

func createPrimitiveSkipFn(typ avro.Type) (SkipFn, error) {
	switch typ {
	case avro.Boolean:
		return func(dec *avrowire.Decoder) error { return dec.SkipBool() }, nil
	case avro.Int:
		return func(dec *avrowire.Decoder) error { return dec.SkipInt() }, nil
	case avro.Long:
		return func(dec *avrowire.Decoder) error { return dec.SkipLong() }, nil
	case avro.Float:
		return func(dec *avrowire.Decoder) error { return dec.SkipFloat() }, nil
	case avro.Double:
		return func(dec *avrowire.Decoder) error { return dec.SkipDouble() }, nil
	case avro.String, avro.Bytes:
		return func(dec *avrowire.Decoder) error { return dec.SkipBytes() }, nil
	default:
		return nil, fmt.Errorf("%w: no skip operation for avro %s", ErrTypeMismatch, typ)
	}
}

// resolve dispatches through the cell so in-progress entries work once the
// definition finishes compiling.
func (c *skipCell) resolve(dec *avrowire.Decoder) error {
	if c.fn == nil {
		return fmt.Errorf("deserializer: skip logic invoked before compilation finished")
	}
	return c.fn(dec)
}
