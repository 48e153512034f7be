// Package tuple implements TupleDesc (schema), Tuple (a row), and the
// RecordID/PageID identifiers that locate a tuple on disk.
package tuple

import (
	"fmt"

	dberror "tinybase/pkg/error"
	"tinybase/pkg/types"
)

// FieldDesc names one column: its Type and an optional display name.
type FieldDesc struct {
	Type types.Type
	Name string
}

// TupleDescription is the immutable schema shared by every tuple of a
// table: an ordered list of (Type, optional name) pairs. It supports
// merging two schemas (for joins) and looking a field up by qualified
// name (for SeqScan's "alias.field" renaming).
type TupleDescription struct {
	fields []FieldDesc
}

// NewTupleDescription builds a schema from parallel type/name slices. A
// nil or empty names slice leaves every field unnamed.
func NewTupleDescription(fieldTypes []types.Type, names []string) *TupleDescription {
	fields := make([]FieldDesc, len(fieldTypes))
	for i, t := range fieldTypes {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		fields[i] = FieldDesc{Type: t, Name: name}
	}
	return &TupleDescription{fields: fields}
}

func (td *TupleDescription) NumFields() int {
	return len(td.fields)
}

func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.fields) {
		return 0, dberror.New(dberror.NotFound, "TupleDescription", "TypeAtIndex", "field index out of bounds")
	}
	return td.fields[i].Type, nil
}

func (td *TupleDescription) FieldName(i int) (string, error) {
	if i < 0 || i >= len(td.fields) {
		return "", dberror.New(dberror.NotFound, "TupleDescription", "FieldName", "field index out of bounds")
	}
	return td.fields[i].Name, nil
}

// IndexOf returns the index of the field with the given name.
func (td *TupleDescription) IndexOf(name string) (int, error) {
	for i, f := range td.fields {
		if f.Name == name {
			return i, nil
		}
	}
	return -1, dberror.New(dberror.NotFound, "TupleDescription", "IndexOf", fmt.Sprintf("no field named %q", name))
}

// RecordByteSize is the sum of each field's fixed on-disk byte length; the
// heap page uses this to compute how many tuple slots fit per page.
func (td *TupleDescription) RecordByteSize() uint32 {
	var size uint32
	for _, f := range td.fields {
		size += f.Type.ByteLength()
	}
	return size
}

// WithAlias returns a copy of td with every field renamed "alias.name",
// matching SeqScan's required output TupleDesc.
func (td *TupleDescription) WithAlias(alias string) *TupleDescription {
	renamed := make([]FieldDesc, len(td.fields))
	for i, f := range td.fields {
		renamed[i] = FieldDesc{Type: f.Type, Name: alias + "." + f.Name}
	}
	return &TupleDescription{fields: renamed}
}

// Combine merges two schemas field-wise for a join's output TupleDesc.
func Combine(a, b *TupleDescription) *TupleDescription {
	merged := make([]FieldDesc, 0, len(a.fields)+len(b.fields))
	merged = append(merged, a.fields...)
	merged = append(merged, b.fields...)
	return &TupleDescription{fields: merged}
}

// Equals reports whether two schemas have the same field types in the same
// order; names are not compared, since Insert validates a child's schema
// against a table's without caring whether the child aliased its columns.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil || len(td.fields) != len(other.fields) {
		return false
	}
	for i, f := range td.fields {
		if f.Type != other.fields[i].Type {
			return false
		}
	}
	return true
}

func (td *TupleDescription) String() string {
	s := ""
	for i, f := range td.fields {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s(%s)", f.Name, f.Type)
	}
	return s
}
