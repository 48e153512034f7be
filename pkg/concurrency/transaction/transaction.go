// Package transaction defines the transaction handle shared by the lock
// manager, buffer pool, and operators.
package transaction

import (
	"strconv"
	"sync/atomic"
)

var nextID int64

// ID is a process-unique, monotonically increasing transaction handle.
// Equality is value equality; two IDs allocated by NewID are never equal.
type ID struct {
	value int64
}

// NewID allocates a fresh transaction id.
func NewID() *ID {
	return &ID{value: atomic.AddInt64(&nextID, 1)}
}

func (t *ID) Value() int64 {
	return t.value
}

func (t *ID) Equals(other *ID) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.value == other.value
}

func (t *ID) String() string {
	if t == nil {
		return "tx<nil>"
	}
	return "tx#" + strconv.FormatInt(t.value, 10)
}
