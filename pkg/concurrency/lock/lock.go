// Package lock implements page-granular two-phase locking with
// condition-variable blocking and DFS cycle-based deadlock detection.
package lock

import "tinybase/pkg/concurrency/transaction"

// LockType is SHARED or EXCLUSIVE.
type LockType int

const (
	Shared LockType = iota
	Exclusive
)

// heldLock records one transaction's grant on a page.
type heldLock struct {
	tid      *transaction.ID
	lockType LockType
}
