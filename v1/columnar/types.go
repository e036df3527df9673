package columnar

import (
	"fmt"
	"strings"
)

// Kind enumerates the value kinds a target column can hold.
type Kind int

// Column kinds
const (
	KindInvalid Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindFixed
	KindList
	KindMap
	KindStruct
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindFixed:
		return "fixed"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindStruct:
		return "struct"
	default:
		return "invalid"
	}
}

// ColumnType describes the declared type of one target column.
// Exactly one of Elem, Value, Fields is set for List, Map, Struct kinds.
type ColumnType struct {
	Kind     Kind
	Nullable bool

	// Size is the byte width for KindFixed.
	Size int

	// Elem is the element type for KindList.
	Elem *ColumnType

	// Value is the value type for KindMap (keys are always strings).
	Value *ColumnType

	// Fields are the nested columns for KindStruct, in declaration order.
	Fields []TargetColumn
}

// String renders the type for error messages, e.g. "list<int64>" or
// "nullable string".
func (t ColumnType) String() string {
	var s string
	switch t.Kind {
	case KindFixed:
		s = fmt.Sprintf("fixed(%d)", t.Size)
	case KindList:
		s = fmt.Sprintf("list<%s>", t.Elem)
	case KindMap:
		s = fmt.Sprintf("map<string,%s>", t.Value)
	case KindStruct:
		names := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			names[i] = f.Name
		}
		s = fmt.Sprintf("struct{%s}", strings.Join(names, ","))
	default:
		s = t.Kind.String()
	}
	if t.Nullable {
		return "nullable " + s
	}
	return s
}

// TargetColumn is one (name, type) slot in a target schema.
type TargetColumn struct {
	Name string
	Type ColumnType
}

// Schema is an ordered list of target columns. It is immutable for the
// lifetime of any plan compiled against it.
type Schema []TargetColumn

// IndexOf returns the position of the named column, or -1.
func (s Schema) IndexOf(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the column names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// ZeroValue returns the default value appended to a column when a row did not
// populate it. Nullable columns default to null (nil).
func ZeroValue(t ColumnType) any {
	if t.Nullable {
		return nil
	}
	switch t.Kind {
	case KindBool:
		return false
	case KindInt32:
		return int32(0)
	case KindInt64:
		return int64(0)
	case KindFloat32:
		return float32(0)
	case KindFloat64:
		return float64(0)
	case KindString:
		return ""
	case KindBytes:
		return []byte{}
	case KindFixed:
		return make([]byte, t.Size)
	case KindList:
		return []any{}
	case KindMap:
		return map[string]any{}
	case KindStruct:
		m := make(map[string]any, len(t.Fields))
		for _, f := range t.Fields {
			m[f.Name] = ZeroValue(f.Type)
		}
		return m
	default:
		return nil
	}
}
