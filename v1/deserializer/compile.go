package deserializer

import (
	"fmt"

	"github.com/hamba/avro/v2"

	"github.com/columnio/avroread/v1/avrowire"
	"github.com/columnio/avroread/v1/columnar"
)

// DefaultPathSeparator joins nested record field names into column names.
const DefaultPathSeparator = "."

// Options controls plan compilation.
type Options struct {
	// AllowMissingFields permits target columns with no matching schema
	// field; such columns are defaulted by the caller on every row. When
	// false, an unmatched column fails compilation.
	AllowMissingFields bool

	// PathSeparator joins a nested field name with its parent path when
	// matching target columns (default ".").
	PathSeparator string
}

// Deserializer is a compiled decode plan bound to one target column set.
// It is immutable after Compile and safe for concurrent row execution only
// insofar as each execution owns its decoder cursor and column writers.
type Deserializer struct {
	target columnar.Schema
	opts   Options

	// root decodes one full row.
	rowAction action

	// found marks target columns bound to a Deserialize action.
	found []bool

	// symbolicSkip memoizes skip logic per named-type symbolic name so
	// self-referential schemas compile without unbounded recursion. Cells
	// resolve lazily: an entry is installed before its children are compiled,
	// so a re-encountered name points back at the in-progress compilation.
	symbolicSkip map[string]*skipCell
}

// skipCell is the lazily-resolved indirection for one named type's skip fn.
type skipCell struct {
	fn SkipFn
}

// Compile walks the schema graph against the target column set and produces
// an executable plan. The root schema must be a record. Structural problems
// fail here and never at row time.
func Compile(target columnar.Schema, schema avro.Schema, opts Options) (*Deserializer, error) {
	if opts.PathSeparator == "" {
		opts.PathSeparator = DefaultPathSeparator
	}

	root := dereference(schema)
	if _, ok := root.(*avro.RecordSchema); !ok {
		return nil, fmt.Errorf("%w: root schema must be a record, got %s", ErrTypeMismatch, root.Type())
	}

	d := &Deserializer{
		target:       target,
		opts:         opts,
		found:        make([]bool, len(target)),
		symbolicSkip: make(map[string]*skipCell),
	}

	rowAction, err := d.createAction(root, "")
	if err != nil {
		return nil, err
	}
	d.rowAction = rowAction

	if !opts.AllowMissingFields {
		for i, ok := range d.found {
			if !ok {
				return nil, fmt.Errorf("%w: column %q not found in schema", ErrMissingRequiredField, target[i].Name)
			}
		}
	}
	return d, nil
}

// createAction compiles the plan node for one schema node at the given field
// path. A node whose path names a target column becomes a Deserialize action;
// records and unions recurse so deeper paths can still match; everything else
// is skipped.
func (d *Deserializer) createAction(schema avro.Schema, path string) (action, error) {
	if idx := d.target.IndexOf(path); idx >= 0 && path != "" {
		fn, err := d.createDeserializeFn(schema, d.target[idx].Type)
		if err != nil {
			return action{}, fmt.Errorf("column %q: %w", path, err)
		}
		d.found[idx] = true
		return deserializeAction(idx, fn), nil
	}

	// A named-type back-reference never binds columns: recursing into it
	// would not terminate for self-referential schemas, so it is skipped
	// whole through the memoized skip logic.
	if _, ok := schema.(*avro.RefSchema); ok {
		fn, err := d.createSkipFn(schema)
		if err != nil {
			return action{}, err
		}
		return skipAction(fn), nil
	}

	switch n := schema.(type) {
	case *avro.RecordSchema:
		fields := n.Fields()
		children := make([]action, 0, len(fields))
		for _, f := range fields {
			child, err := d.createAction(f.Type(), d.joinPath(path, f.Name()))
			if err != nil {
				return action{}, err
			}
			children = append(children, child)
		}
		return recordAction(children), nil
	case *avro.UnionSchema:
		types := n.Types()
		branches := make([]action, 0, len(types))
		for _, b := range types {
			branch, err := d.createAction(b, path)
			if err != nil {
				return action{}, err
			}
			branches = append(branches, branch)
		}
		return unionAction(branches), nil
	default:
		fn, err := d.createSkipFn(schema)
		if err != nil {
			return action{}, err
		}
		return skipAction(fn), nil
	}
}

func (d *Deserializer) joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + d.opts.PathSeparator + name
}

// DeserializeRow executes the plan against one encoded row, advancing the
// decoder by exactly one row and appending matched values to cols. ext
// records which columns were written; the caller defaults the rest.
func (d *Deserializer) DeserializeRow(cols []columnar.ColumnWriter, dec *avrowire.Decoder, ext *columnar.RowRead) error {
	if len(cols) != len(d.target) {
		return fmt.Errorf("deserializer: got %d columns, plan is bound to %d", len(cols), len(d.target))
	}
	if len(ext.Written) != len(d.target) {
		return fmt.Errorf("deserializer: row read record sized %d, plan is bound to %d", len(ext.Written), len(d.target))
	}
	ext.Reset()
	return d.rowAction.execute(cols, dec, ext)
}

// TargetColumns returns the column set the plan is bound to.
func (d *Deserializer) TargetColumns() columnar.Schema {
	return d.target
}

// FoundColumns returns, per target column, whether the schema walk bound a
// Deserialize action to it. Unfound columns must be defaulted on every row.
func (d *Deserializer) FoundColumns() []bool {
	found := make([]bool, len(d.found))
	copy(found, d.found)
	return found
}

// dereference resolves named-type back-references to their definitions.
func dereference(schema avro.Schema) avro.Schema {
	if ref, ok := schema.(*avro.RefSchema); ok {
		return ref.Schema()
	}
	return schema
}
