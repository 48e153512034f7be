package types

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"strings"

	"tinybase/pkg/primitives"
)

// StringField is a bounded-length string value. On disk it is a 4-byte
// big-endian length prefix followed by StringMaxLength bytes of payload,
// padded with zero bytes; values longer than StringMaxLength are truncated
// at construction.
type StringField struct {
	Value     string
	maxLength int
}

// NewStringField constructs a StringField bounded by StringMaxLength.
func NewStringField(value string) *StringField {
	return NewStringFieldMax(value, StringMaxLength)
}

// NewStringFieldMax constructs a StringField bounded by an explicit maximum
// length, for callers (tests, alternate schemas) that need a narrower or
// wider bound than the default.
func NewStringFieldMax(value string, maxLength int) *StringField {
	if len(value) > maxLength {
		value = value[:maxLength]
	}
	return &StringField{Value: value, maxLength: maxLength}
}

func (f *StringField) Serialize(w io.Writer) error {
	length := len(f.Value)
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(length))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}

	max := f.effectiveMax()
	padded := make([]byte, max)
	copy(padded, f.Value)
	_, err := w.Write(padded)
	return err
}

func (f *StringField) effectiveMax() int {
	if f.maxLength > 0 {
		return f.maxLength
	}
	return StringMaxLength
}

func (f *StringField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*StringField)
	if !ok {
		return false, nil
	}
	switch op {
	case primitives.Equals:
		return f.Value == o.Value, nil
	case primitives.NotEqual:
		return f.Value != o.Value, nil
	case primitives.LessThan:
		return f.Value < o.Value, nil
	case primitives.LessThanOrEqual:
		return f.Value <= o.Value, nil
	case primitives.GreaterThan:
		return f.Value > o.Value, nil
	case primitives.GreaterThanOrEqual:
		return f.Value >= o.Value, nil
	case primitives.Like:
		return strings.Contains(f.Value, o.Value), nil
	default:
		return false, nil
	}
}

func (f *StringField) Type() Type {
	return StringType
}

func (f *StringField) String() string {
	return f.Value
}

func (f *StringField) Equals(other Field) bool {
	o, ok := other.(*StringField)
	return ok && f.Value == o.Value
}

func (f *StringField) Hash() (uint32, error) {
	h := fnv.New32a()
	if _, err := h.Write([]byte(f.Value)); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}

// DeserializeStringField reads a length-prefixed, padded StringField from
// r, given the fixed maximum payload length used to serialize it.
func DeserializeStringField(r io.Reader, maxLength int) (*StringField, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := int(binary.BigEndian.Uint32(lenBuf[:]))

	payload := make([]byte, maxLength)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	if length > maxLength {
		length = maxLength
	}
	return NewStringFieldMax(string(payload[:length]), maxLength), nil
}
