package types

import (
	"io"

	"tinybase/pkg/primitives"
)

// Field is a single typed value cell inside a Tuple. It is a closed sum
// type with exactly two variants, IntField and StringField; new variants
// are added by extending this package, not by external implementers.
type Field interface {
	Serialize(w io.Writer) error
	Compare(op primitives.Predicate, other Field) (bool, error)
	Type() Type
	String() string
	Equals(other Field) bool
	Hash() (uint32, error)
}
