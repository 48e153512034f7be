package lock

import (
	"sync"

	dberror "tinybase/pkg/error"

	"tinybase/pkg/concurrency/transaction"
	"tinybase/pkg/logging"
	"tinybase/pkg/tuple"
)

// Manager grants page-granular SHARED/EXCLUSIVE locks under strict 2PL. All
// state is protected by a single monitor; acquire's wait is a
// condition-variable wait on that monitor, woken by Release/ReleaseAll via
// Broadcast. See the lock-compatibility table in the component design: a
// transaction already holding SHARED may upgrade to EXCLUSIVE in place iff
// no other transaction holds SHARED.
type Manager struct {
	mu   sync.Mutex
	cond *sync.Cond

	pageLocks map[tuple.PageID][]*heldLock
	txnPages  map[*transaction.ID]map[tuple.PageID]bool
	graph     *waitsForGraph
}

func NewManager() *Manager {
	m := &Manager{
		pageLocks: make(map[tuple.PageID][]*heldLock),
		txnPages:  make(map[*transaction.ID]map[tuple.PageID]bool),
		graph:     newWaitsForGraph(),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Acquire blocks until tid holds lockType on pid, or returns TransactionAborted
// if granting it would close a cycle in the waits-for graph.
func (m *Manager) Acquire(tid *transaction.ID, pid tuple.PageID, lockType LockType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		if m.holds(tid, pid, lockType) {
			return nil
		}

		if lockType == Exclusive && m.holdsExactly(tid, pid, Shared) {
			if m.onlyHolder(tid, pid) {
				m.upgrade(tid, pid)
				return nil
			}
		}

		if m.canGrant(tid, pid, lockType) {
			m.grant(tid, pid, lockType)
			delete(m.graph.edges, tid)
			return nil
		}

		// Rebuild this transaction's outgoing wait edges from scratch on
		// every iteration; do not carry edges across a wakeup. Edges other
		// waiters hold toward tid stay in place.
		delete(m.graph.edges, tid)
		for _, blocker := range m.blockers(tid, pid, lockType) {
			m.graph.addEdge(tid, blocker)
		}

		if m.graph.hasCycleFrom(tid) {
			m.graph.removeTransaction(tid)
			logging.WithLock(tid.String(), pid.String()).Warn("deadlock detected, aborting")
			return dberror.New(dberror.Aborted, "LockManager", "Acquire", "deadlock detected")
		}

		m.cond.Wait()
	}
}

func (m *Manager) holds(tid *transaction.ID, pid tuple.PageID, lockType LockType) bool {
	for _, l := range m.pageLocks[pid] {
		if l.tid.Equals(tid) {
			return l.lockType == Exclusive || lockType == Shared
		}
	}
	return false
}

func (m *Manager) holdsExactly(tid *transaction.ID, pid tuple.PageID, lockType LockType) bool {
	for _, l := range m.pageLocks[pid] {
		if l.tid.Equals(tid) {
			return l.lockType == lockType
		}
	}
	return false
}

func (m *Manager) onlyHolder(tid *transaction.ID, pid tuple.PageID) bool {
	for _, l := range m.pageLocks[pid] {
		if !l.tid.Equals(tid) {
			return false
		}
	}
	return true
}

func (m *Manager) canGrant(tid *transaction.ID, pid tuple.PageID, lockType LockType) bool {
	locks := m.pageLocks[pid]
	if len(locks) == 0 {
		return true
	}
	if lockType == Exclusive {
		for _, l := range locks {
			if !l.tid.Equals(tid) {
				return false
			}
		}
		return true
	}
	for _, l := range locks {
		if !l.tid.Equals(tid) && l.lockType == Exclusive {
			return false
		}
	}
	return true
}

// blockers returns the distinct holders of locks on pid that conflict with
// tid's request (excluding tid itself).
func (m *Manager) blockers(tid *transaction.ID, pid tuple.PageID, lockType LockType) []*transaction.ID {
	var out []*transaction.ID
	for _, l := range m.pageLocks[pid] {
		if l.tid.Equals(tid) {
			continue
		}
		if lockType == Exclusive || l.lockType == Exclusive {
			out = append(out, l.tid)
		}
	}
	return out
}

func (m *Manager) grant(tid *transaction.ID, pid tuple.PageID, lockType LockType) {
	m.pageLocks[pid] = append(m.pageLocks[pid], &heldLock{tid: tid, lockType: lockType})
	if m.txnPages[tid] == nil {
		m.txnPages[tid] = make(map[tuple.PageID]bool)
	}
	m.txnPages[tid][pid] = true
}

func (m *Manager) upgrade(tid *transaction.ID, pid tuple.PageID) {
	for _, l := range m.pageLocks[pid] {
		if l.tid.Equals(tid) {
			l.lockType = Exclusive
		}
	}
}

// Release drops tid's lock on pid and wakes every waiter; each re-checks
// can-grant itself, so a spurious wakeup is harmless.
func (m *Manager) Release(tid *transaction.ID, pid tuple.PageID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseLocked(tid, pid)
	m.cond.Broadcast()
}

func (m *Manager) releaseLocked(tid *transaction.ID, pid tuple.PageID) {
	locks := m.pageLocks[pid]
	remaining := make([]*heldLock, 0, len(locks))
	for _, l := range locks {
		if !l.tid.Equals(tid) {
			remaining = append(remaining, l)
		}
	}
	if len(remaining) > 0 {
		m.pageLocks[pid] = remaining
	} else {
		delete(m.pageLocks, pid)
	}
	if pages, ok := m.txnPages[tid]; ok {
		delete(pages, pid)
		if len(pages) == 0 {
			delete(m.txnPages, tid)
		}
	}
	m.graph.removeTransaction(tid)
}

// ReleaseAll drops every lock tid holds, leaving no trace of tid anywhere
// in the manager's state (property P3).
func (m *Manager) ReleaseAll(tid *transaction.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pages := m.txnPages[tid]
	pids := make([]tuple.PageID, 0, len(pages))
	for pid := range pages {
		pids = append(pids, pid)
	}
	for _, pid := range pids {
		m.releaseLocked(tid, pid)
	}
	delete(m.txnPages, tid)
	m.graph.removeTransaction(tid)
	m.cond.Broadcast()
}

// HoldsAny reports whether a page currently has any lock held on it at all.
func (m *Manager) HoldsAny(pid tuple.PageID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pageLocks[pid]) > 0
}
