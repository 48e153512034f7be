package memory

import (
	"sync"

	"tinybase/pkg/catalog"
	"tinybase/pkg/concurrency/lock"
	"tinybase/pkg/concurrency/transaction"
	dberror "tinybase/pkg/error"
	"tinybase/pkg/log"
	"tinybase/pkg/logging"
	"tinybase/pkg/storage/heap"
	"tinybase/pkg/storage/page"
	"tinybase/pkg/tuple"
)

// DefaultCapacity is the number of pages a Pool holds resident before it
// must start evicting to make room for a new one.
const DefaultCapacity = 50

// Permission is the access level a caller wants on a page.
type Permission int

const (
	ReadOnly Permission = iota
	ReadWrite
)

func (p Permission) lockType() lock.LockType {
	if p == ReadWrite {
		return lock.Exclusive
	}
	return lock.Shared
}

// txnState tracks the pages one transaction has dirtied, so commit and
// abort know which cache entries to visit without scanning the whole pool.
type txnState struct {
	dirtyPages map[tuple.PageID]bool
	begun      bool
}

// Pool is the buffer pool: the sole path by which operators and DbFiles
// touch a page. It acquires locks before returning a page, evicts under a
// strict NO-STEAL policy, and on commit logs to the WAL rather than
// flushing the data file.
type Pool struct {
	mu sync.Mutex

	cache   *pageCache
	locks   *lock.Manager
	catalog *catalog.Catalog
	wal     *log.WAL

	txns map[*transaction.ID]*txnState
}

func NewPool(cat *catalog.Catalog, wal *log.WAL, capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Pool{
		cache:   newPageCache(capacity),
		locks:   lock.NewManager(),
		catalog: cat,
		wal:     wal,
		txns:    make(map[*transaction.ID]*txnState),
	}
}

// GetPage acquires the lock required by perm, then returns the page,
// loading it from disk (evicting first if necessary) if it is not already
// cached.
func (p *Pool) GetPage(tid *transaction.ID, pid tuple.PageID, perm Permission) (page.Page, error) {
	if err := p.locks.Acquire(tid, pid, perm.lockType()); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if pg, ok := p.cache.get(pid); ok {
		return pg, nil
	}

	if p.cache.size() >= p.cache.capacity {
		if err := p.evictLocked(); err != nil {
			return nil, err
		}
	}

	dbFile, err := p.catalog.DbFile(pid.TableID())
	if err != nil {
		return nil, dberror.Wrap(err, dberror.DbError, "Pool", "GetPage")
	}
	pg, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.DbError, "Pool", "GetPage")
	}
	if err := p.cache.put(pid, pg); err != nil {
		return nil, err
	}
	return pg, nil
}

// evictLocked removes the least recently used clean page from the cache,
// whether or not a lock is held on it. Caller must hold p.mu. NO-STEAL: a
// dirty page is never a candidate.
func (p *Pool) evictLocked() error {
	for _, pid := range p.cache.evictionOrder() {
		pg, ok := p.cache.get(pid)
		if !ok {
			continue
		}
		if pg.IsDirty() != nil {
			continue
		}
		p.cache.remove(pid)
		return nil
	}
	return dberror.New(dberror.DbError, "Pool", "evict", "no clean page available to evict")
}

func (p *Pool) ensureBegun(tid *transaction.ID) (*txnState, error) {
	p.mu.Lock()
	state, ok := p.txns[tid]
	if !ok {
		state = &txnState{dirtyPages: make(map[tuple.PageID]bool)}
		p.txns[tid] = state
	}
	alreadyBegun := state.begun
	p.mu.Unlock()

	if alreadyBegun {
		return state, nil
	}
	if _, err := p.wal.LogBegin(tid); err != nil {
		return nil, dberror.Wrap(err, dberror.IoError, "Pool", "ensureBegun")
	}
	p.mu.Lock()
	state.begun = true
	p.mu.Unlock()
	return state, nil
}

// InsertTuple locates a page with a free slot — via GetPage, so an
// already-cached dirty page is reused rather than re-read from disk — and
// inserts t into it, appending a fresh page to the file if none has room.
// Every mutation lands on the pool's single cached copy of the page, so
// repeated inserts onto the same page within one transaction accumulate
// instead of clobbering each other.
func (p *Pool) InsertTuple(tid *transaction.ID, tableID int, t *tuple.Tuple) error {
	state, err := p.ensureBegun(tid)
	if err != nil {
		return err
	}
	dbFile, err := p.catalog.DbFile(tableID)
	if err != nil {
		return dberror.Wrap(err, dberror.DbError, "Pool", "InsertTuple")
	}

	numPages, err := dbFile.NumPages()
	if err != nil {
		return dberror.Wrap(err, dberror.DbError, "Pool", "InsertTuple")
	}

	var target page.Page
	for pageNum := 0; pageNum < numPages; pageNum++ {
		pg, err := p.GetPage(tid, dbFile.PageIDAt(pageNum), ReadWrite)
		if err != nil {
			return err
		}
		hp, ok := pg.(*heap.HeapPage)
		if !ok || hp.EmptySlots() == 0 {
			continue
		}
		target = pg
		break
	}

	if target == nil {
		pid, err := dbFile.AppendEmptyPage()
		if err != nil {
			return dberror.Wrap(err, dberror.DbError, "Pool", "InsertTuple")
		}
		target, err = p.GetPage(tid, pid, ReadWrite)
		if err != nil {
			return err
		}
	}

	if err := dbFile.InsertTupleIntoPage(target, t); err != nil {
		return dberror.Wrap(err, dberror.DbError, "Pool", "InsertTuple")
	}
	return p.markDirty(tid, state, []page.Page{target})
}

// DeleteTuple removes t from the pool-cached page named by its RecordID.
func (p *Pool) DeleteTuple(tid *transaction.ID, t *tuple.Tuple) error {
	if t.RecordID == nil {
		return dberror.New(dberror.NotFound, "Pool", "DeleteTuple", "tuple has no RecordID")
	}
	state, err := p.ensureBegun(tid)
	if err != nil {
		return err
	}
	dbFile, err := p.catalog.DbFile(t.RecordID.PageID.TableID())
	if err != nil {
		return dberror.Wrap(err, dberror.DbError, "Pool", "DeleteTuple")
	}
	target, err := p.GetPage(tid, t.RecordID.PageID, ReadWrite)
	if err != nil {
		return err
	}
	if err := dbFile.DeleteTupleFromPage(target, t); err != nil {
		return dberror.Wrap(err, dberror.DbError, "Pool", "DeleteTuple")
	}
	return p.markDirty(tid, state, []page.Page{target})
}

func (p *Pool) markDirty(tid *transaction.ID, state *txnState, pages []page.Page) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pg := range pages {
		pg.MarkDirty(true, tid)
		if err := p.cache.put(pg.ID(), pg); err != nil {
			if evErr := p.evictLocked(); evErr != nil {
				return evErr
			}
			if err := p.cache.put(pg.ID(), pg); err != nil {
				return err
			}
		}
		state.dirtyPages[pg.ID()] = true
	}
	return nil
}

// ReleasePage forwards to the lock manager directly. It is dangerous:
// releasing a lock before transaction end breaks strict two-phase locking
// and should only ever be used by recovery code, never by operators.
func (p *Pool) ReleasePage(tid *transaction.ID, pid tuple.PageID) {
	p.locks.Release(tid, pid)
}

// TransactionComplete commits or aborts tid and always releases its locks.
//
// Commit: for every page tid dirtied, log an update record carrying both
// images, force the WAL once, then refresh each page's before-image and
// mark it clean. The data file is never touched here; durability comes
// from the forced log record, not from flushing pages.
//
// Abort: discard every page tid dirtied and reload the clean on-disk
// version from its DbFile. Nothing is logged.
func (p *Pool) TransactionComplete(tid *transaction.ID, commit bool) error {
	defer p.locks.ReleaseAll(tid)

	p.mu.Lock()
	state, ok := p.txns[tid]
	if !ok {
		p.mu.Unlock()
		return nil
	}
	dirty := make([]tuple.PageID, 0, len(state.dirtyPages))
	for pid := range state.dirtyPages {
		dirty = append(dirty, pid)
	}
	p.mu.Unlock()

	var err error
	if commit {
		err = p.commit(tid, state, dirty)
	} else {
		err = p.abort(tid, dirty)
	}

	p.mu.Lock()
	delete(p.txns, tid)
	p.mu.Unlock()
	return err
}

func (p *Pool) commit(tid *transaction.ID, state *txnState, dirty []tuple.PageID) error {
	if !state.begun {
		return nil
	}

	p.mu.Lock()
	for _, pid := range dirty {
		pg, ok := p.cache.get(pid)
		if !ok {
			continue
		}
		if _, err := p.wal.LogWrite(tid, pid.String(), pg.BeforeImage().Data(), pg.Data()); err != nil {
			p.mu.Unlock()
			return dberror.Wrap(err, dberror.IoError, "Pool", "commit")
		}
	}
	p.mu.Unlock()

	if _, err := p.wal.LogCommit(tid); err != nil {
		return dberror.Wrap(err, dberror.IoError, "Pool", "commit")
	}
	if err := p.wal.Force(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pid := range dirty {
		pg, ok := p.cache.get(pid)
		if !ok {
			continue
		}
		pg.SetBeforeImage()
		pg.MarkDirty(false, nil)
	}
	logging.WithTx(tid.String()).Info("transaction committed", "dirty_pages", len(dirty))
	return nil
}

func (p *Pool) abort(tid *transaction.ID, dirty []tuple.PageID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pid := range dirty {
		dbFile, err := p.catalog.DbFile(pid.TableID())
		if err != nil {
			p.cache.remove(pid)
			continue
		}
		clean, err := dbFile.ReadPage(pid)
		if err != nil {
			p.cache.remove(pid)
			continue
		}
		_ = p.cache.put(pid, clean)
	}
	logging.WithTx(tid.String()).Info("transaction aborted", "dirty_pages", len(dirty))
	return nil
}

// FlushAllPages writes every dirty resident page to its DbFile. Nothing in
// the commit path calls this; it exists for administrative shutdown only.
func (p *Pool) FlushAllPages() error {
	p.mu.Lock()
	pids := p.cache.evictionOrder()
	p.mu.Unlock()

	for _, pid := range pids {
		if err := p.flushPage(pid); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pool) flushPage(pid tuple.PageID) error {
	p.mu.Lock()
	pg, ok := p.cache.get(pid)
	p.mu.Unlock()
	if !ok || pg.IsDirty() == nil {
		return nil
	}
	dbFile, err := p.catalog.DbFile(pid.TableID())
	if err != nil {
		return dberror.Wrap(err, dberror.DbError, "Pool", "flushPage")
	}
	if err := dbFile.WritePage(pg); err != nil {
		return dberror.Wrap(err, dberror.IoError, "Pool", "flushPage")
	}
	pg.MarkDirty(false, nil)
	return nil
}

// DiscardPage evicts pid from the cache without writing it back,
// regardless of dirtiness. Administrative use only.
func (p *Pool) DiscardPage(pid tuple.PageID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache.remove(pid)
}

func (p *Pool) Close() error {
	if err := p.FlushAllPages(); err != nil {
		return err
	}
	return p.wal.Close()
}
