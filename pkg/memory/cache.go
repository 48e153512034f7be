// Package memory implements the buffer pool: a bounded page cache with
// transactional commit/abort semantics sitting between the lock manager and
// the heap files.
package memory

import (
	"sync"

	dberror "tinybase/pkg/error"
	"tinybase/pkg/storage/page"
	"tinybase/pkg/tuple"
)

// pageCache holds resident pages under an LRU eviction order, tracked via a
// doubly linked list threaded through a map for O(1) get/put/remove. It
// knows nothing about dirtiness, locks, or transactions — that's the
// Pool's job.
type pageCache struct {
	capacity int
	entries  map[tuple.PageID]*cacheEntry
	lru      *lruList
	mu       sync.RWMutex
}

type cacheEntry struct {
	pid  tuple.PageID
	page page.Page
	prev *cacheEntry
	next *cacheEntry
}

// lruList is a sentinel-headed doubly linked list; front is most recently
// used, back is least recently used.
type lruList struct {
	front *cacheEntry
	back  *cacheEntry
}

func newLRUList() *lruList {
	front := &cacheEntry{}
	back := &cacheEntry{}
	front.next = back
	back.prev = front
	return &lruList{front: front, back: back}
}

func (l *lruList) pushFront(e *cacheEntry) {
	e.prev = l.front
	e.next = l.front.next
	l.front.next.prev = e
	l.front.next = e
}

func (l *lruList) unlink(e *cacheEntry) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

func (l *lruList) touch(e *cacheEntry) {
	l.unlink(e)
	l.pushFront(e)
}

func newPageCache(capacity int) *pageCache {
	return &pageCache{
		capacity: capacity,
		entries:  make(map[tuple.PageID]*cacheEntry),
		lru:      newLRUList(),
	}
}

func (c *pageCache) get(pid tuple.PageID) (page.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[pid]
	if !ok {
		return nil, false
	}
	c.lru.touch(e)
	return e.page, true
}

// put inserts or refreshes p. It never evicts on the caller's behalf — the
// pool decides when to evict and calls put only once room exists.
func (c *pageCache) put(pid tuple.PageID, p page.Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[pid]; ok {
		e.page = p
		c.lru.touch(e)
		return nil
	}
	if len(c.entries) >= c.capacity {
		return dberror.New(dberror.DbError, "pageCache", "put", "cache at capacity")
	}
	e := &cacheEntry{pid: pid, page: p}
	c.entries[pid] = e
	c.lru.pushFront(e)
	return nil
}

func (c *pageCache) remove(pid tuple.PageID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[pid]; ok {
		delete(c.entries, pid)
		c.lru.unlink(e)
	}
}

func (c *pageCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictionOrder returns resident page ids from least to most recently used;
// the pool walks this looking for a clean victim.
func (c *pageCache) evictionOrder() []tuple.PageID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pids := make([]tuple.PageID, 0, len(c.entries))
	for e := c.lru.back.prev; e != c.lru.front; e = e.prev {
		pids = append(pids, e.pid)
	}
	return pids
}
