package tuple

import (
	"fmt"
	"strings"

	dberror "tinybase/pkg/error"
	"tinybase/pkg/types"
)

// Tuple is a row: a TupleDescription plus one Field per column, and an
// optional RecordID recording where it lives on disk (nil for tuples that
// were constructed in memory, e.g. aggregator output).
type Tuple struct {
	TupleDesc *TupleDescription
	RecordID  *RecordID
	fields    []types.Field
}

func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{TupleDesc: td, fields: make([]types.Field, td.NumFields())}
}

func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return dberror.New(dberror.NotFound, "Tuple", "SetField", "field index out of bounds")
	}
	expected, err := t.TupleDesc.TypeAtIndex(i)
	if err != nil {
		return err
	}
	if field.Type() != expected {
		return dberror.New(dberror.DbError, "Tuple", "SetField",
			fmt.Sprintf("field type mismatch: expected %s, got %s", expected, field.Type()))
	}
	t.fields[i] = field
	return nil
}

func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, dberror.New(dberror.NotFound, "Tuple", "GetField", "field index out of bounds")
	}
	return t.fields[i], nil
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.fields))
	for i, f := range t.fields {
		if f == nil {
			parts[i] = "null"
		} else {
			parts[i] = f.String()
		}
	}
	return strings.Join(parts, "\t")
}

// CombineTuples concatenates two tuples' fields for a join's output row.
func CombineTuples(left, right *Tuple) (*Tuple, error) {
	merged := NewTuple(Combine(left.TupleDesc, right.TupleDesc))
	if err := left.copyFieldsTo(merged, 0); err != nil {
		return nil, err
	}
	if err := right.copyFieldsTo(merged, left.TupleDesc.NumFields()); err != nil {
		return nil, err
	}
	return merged, nil
}

func (t *Tuple) copyFieldsTo(target *Tuple, startIndex int) error {
	for i := 0; i < t.TupleDesc.NumFields(); i++ {
		field, err := t.GetField(i)
		if err != nil {
			return err
		}
		if field != nil {
			if err := target.SetField(startIndex+i, field); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clone deep-copies a tuple's field values (fields themselves are
// immutable value-ish types, so this only copies the slice).
func (t *Tuple) Clone() (*Tuple, error) {
	clone := NewTuple(t.TupleDesc)
	for i := 0; i < t.TupleDesc.NumFields(); i++ {
		f, err := t.GetField(i)
		if err != nil {
			return nil, err
		}
		if f != nil {
			if err := clone.SetField(i, f); err != nil {
				return nil, err
			}
		}
	}
	clone.RecordID = t.RecordID
	return clone, nil
}
