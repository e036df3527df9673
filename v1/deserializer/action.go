package deserializer

import (
	"fmt"

	"github.com/columnio/avroread/v1/avrowire"
	"github.com/columnio/avroread/v1/columnar"
)

// DeserializeFn consumes exactly one encoded value of its bound schema shape
// from the decoder and appends it to the column writer.
type DeserializeFn func(w columnar.ColumnWriter, dec *avrowire.Decoder) error

// SkipFn consumes exactly one encoded value without storing it.
type SkipFn func(dec *avrowire.Decoder) error

type actionType int

const (
	actionNoop actionType = iota
	actionDeserialize
	actionSkip
	actionRecord
	actionUnion
)

// action is one node of a compiled plan. The variant set is closed; execute
// switches exhaustively over it.
type action struct {
	typ actionType

	// Deserialize
	targetColumn  int
	deserializeFn DeserializeFn

	// Skip
	skipFn SkipFn

	// Record | Union
	children []action
}

func noopAction() action {
	return action{typ: actionNoop}
}

func deserializeAction(targetColumn int, fn DeserializeFn) action {
	return action{typ: actionDeserialize, targetColumn: targetColumn, deserializeFn: fn}
}

func skipAction(fn SkipFn) action {
	return action{typ: actionSkip, skipFn: fn}
}

func recordAction(fieldActions []action) action {
	return action{typ: actionRecord, children: fieldActions}
}

func unionAction(branchActions []action) action {
	return action{typ: actionUnion, children: branchActions}
}

// execute consumes exactly the bytes of one encoded value of this action's
// shape. It never rewinds the decoder.
func (a *action) execute(cols []columnar.ColumnWriter, dec *avrowire.Decoder, ext *columnar.RowRead) error {
	switch a.typ {
	case actionNoop:
		return nil
	case actionDeserialize:
		if err := a.deserializeFn(cols[a.targetColumn], dec); err != nil {
			return err
		}
		ext.Written[a.targetColumn] = true
		return nil
	case actionSkip:
		return a.skipFn(dec)
	case actionRecord:
		for i := range a.children {
			if err := a.children[i].execute(cols, dec, ext); err != nil {
				return err
			}
		}
		return nil
	case actionUnion:
		index, err := dec.DecodeUnionIndex()
		if err != nil {
			return fmt.Errorf("%w: reading union discriminant: %v", ErrMalformedData, err)
		}
		if index < 0 || index >= int64(len(a.children)) {
			return fmt.Errorf("%w: union discriminant %d out of range [0,%d)", ErrMalformedData, index, len(a.children))
		}
		return a.children[index].execute(cols, dec, ext)
	default:
		return fmt.Errorf("deserializer: unknown action type %d", a.typ)
	}
}
