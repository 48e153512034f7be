package types

import (
	"encoding/binary"
	"hash/fnv"
	"io"
	"strconv"

	"tinybase/pkg/primitives"
)

// IntField is a 32-bit signed integer value, serialized as 4 bytes,
// big-endian, two's complement.
type IntField struct {
	Value int32
}

func NewIntField(value int32) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	var buf [IntByteLength]byte
	binary.BigEndian.PutUint32(buf[:], uint32(f.Value))
	_, err := w.Write(buf[:])
	return err
}

func (f *IntField) Compare(op primitives.Predicate, other Field) (bool, error) {
	o, ok := other.(*IntField)
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
	default:
		return false, nil
	}
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(int64(f.Value), 10)
}

func (f *IntField) Equals(other Field) bool {
	o, ok := other.(*IntField)
	return ok && f.Value == o.Value
}

func (f *IntField) Hash() (uint32, error) {
	h := fnv.New32a()
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(f.Value))
	if _, err := h.Write(buf[:]); err != nil {
		return 0, err
	}
	return h.Sum32(), nil
}

// DeserializeIntField reads a 4-byte big-endian IntField from r.
func DeserializeIntField(r io.Reader) (*IntField, error) {
	var buf [IntByteLength]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	return NewIntField(int32(binary.BigEndian.Uint32(buf[:]))), nil
}
