package types

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybase/pkg/primitives"
)

func TestIntField_SerializeRoundTrip(t *testing.T) {
	f := NewIntField(42)
	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf))
	assert.Equal(t, IntByteLength, buf.Len())

	got, err := DeserializeIntField(&buf)
	require.NoError(t, err)
	assert.True(t, f.Equals(got))
}

func TestIntField_Compare(t *testing.T) {
	five := NewIntField(5)
	ten := NewIntField(10)

	tests := []struct {
		op       primitives.Predicate
		other    *IntField
		expected bool
	}{
		{primitives.Equals, five, true},
		{primitives.Equals, ten, false},
		{primitives.LessThan, ten, true},
		{primitives.GreaterThan, ten, false},
		{primitives.NotEqual, ten, true},
		{primitives.LessThanOrEqual, five, true},
	}
	for _, tt := range tests {
		got, err := five.Compare(tt.op, tt.other)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, "op=%s", tt.op)
	}
}

func TestStringField_SerializeRoundTrip(t *testing.T) {
	f := NewStringFieldMax("hello", 16)
	var buf bytes.Buffer
	require.NoError(t, f.Serialize(&buf))
	assert.Equal(t, 4+16, buf.Len())

	got, err := DeserializeStringField(&buf, 16)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Value)
}

func TestStringField_TruncatesAtConstruction(t *testing.T) {
	f := NewStringFieldMax("this is far too long", 4)
	assert.Equal(t, "this", f.Value)
}

func TestStringField_Like(t *testing.T) {
	f := NewStringField("hello world")
	ok, err := f.Compare(primitives.Like, NewStringField("world"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Compare(primitives.Like, NewStringField("xyz"))
	require.NoError(t, err)
	assert.False(t, ok)
}
