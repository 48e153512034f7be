package heap

import (
	"hash/fnv"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	dberror "tinybase/pkg/error"
	"tinybase/pkg/storage/page"
	"tinybase/pkg/tuple"
)

// File is a heap file: an unordered sequence of HeapPages on disk, backed
// by a single OS file. Its id is a deterministic hash of its absolute path,
// so it can be recomputed without a registry after a restart.
type File struct {
	mu        sync.Mutex
	base      *page.BaseFile
	tupleDesc *tuple.TupleDescription
	id        int
}

// NewFile opens (creating if necessary) the heap file at path.
func NewFile(path string, td *tuple.TupleDescription) (*File, error) {
	base, err := page.OpenBaseFile(path)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve absolute path for %s", path)
	}
	return &File{base: base, tupleDesc: td, id: hashPath(abs)}, nil
}

func hashPath(path string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(path))
	return int(h.Sum32())
}

func (f *File) ID() int {
	return f.id
}

func (f *File) TupleDesc() *tuple.TupleDescription {
	return f.tupleDesc
}

func (f *File) NumPages() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.base.NumPages()
}

// PageIDAt builds the PageID for the pageNumber-th page of this file.
func (f *File) PageIDAt(pageNumber int) tuple.PageID {
	return NewPageID(f.id, pageNumber)
}

func (f *File) ReadPage(pid tuple.PageID) (page.Page, error) {
	hpid, ok := pid.(PageID)
	if !ok || hpid.TableID() != f.id {
		return nil, dberror.New(dberror.NotFound, "HeapFile", "ReadPage", "page does not belong to this file")
	}

	f.mu.Lock()
	numPages, err := f.base.NumPages()
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	if hpid.PageNumber() >= numPages {
		f.mu.Unlock()
		return nil, dberror.New(dberror.NotFound, "HeapFile", "ReadPage", "page number beyond end of file")
	}
	data, err := f.base.ReadAt(hpid.PageNumber())
	f.mu.Unlock()
	if err != nil {
		return nil, dberror.Wrap(err, dberror.IoError, "HeapFile", "ReadPage")
	}
	return NewPageFromBytes(hpid, f.tupleDesc, data)
}

func (f *File) WritePage(p page.Page) error {
	hp, ok := p.(*HeapPage)
	if !ok {
		return dberror.New(dberror.DbError, "HeapFile", "WritePage", "page is not a HeapPage")
	}
	pid, ok := hp.ID().(PageID)
	if !ok {
		return dberror.New(dberror.DbError, "HeapFile", "WritePage", "page id is not a heap PageID")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.base.WriteAt(pid.PageNumber(), hp.Data()); err != nil {
		return dberror.Wrap(err, dberror.IoError, "HeapFile", "WritePage")
	}
	return nil
}

// AppendEmptyPage extends the file by one zero-filled page and returns its
// id. The caller is expected to fetch the page back through the buffer pool
// (which will parse the zero bytes as an all-empty HeapPage) rather than
// hold onto anything returned here, so the cache — not this call — owns the
// one live copy of the page.
func (f *File) AppendEmptyPage() (tuple.PageID, error) {
	f.mu.Lock()
	pageNum, err := f.base.AppendPage()
	f.mu.Unlock()
	if err != nil {
		return nil, dberror.Wrap(err, dberror.IoError, "HeapFile", "AppendEmptyPage")
	}
	return NewPageID(f.id, pageNum), nil
}

// InsertTupleIntoPage inserts t into p's first empty slot. p must be a
// *HeapPage the caller already holds pinned via the buffer pool; this
// method performs no disk I/O of its own.
func (f *File) InsertTupleIntoPage(p page.Page, t *tuple.Tuple) error {
	hp, ok := p.(*HeapPage)
	if !ok {
		return dberror.New(dberror.DbError, "HeapFile", "InsertTupleIntoPage", "page is not a HeapPage")
	}
	return hp.InsertTuple(t)
}

// DeleteTupleFromPage removes t from p, which must be the same cached page
// the buffer pool pinned for t's RecordID.
func (f *File) DeleteTupleFromPage(p page.Page, t *tuple.Tuple) error {
	hp, ok := p.(*HeapPage)
	if !ok {
		return dberror.New(dberror.DbError, "HeapFile", "DeleteTupleFromPage", "page is not a HeapPage")
	}
	return hp.DeleteTuple(t)
}

func (f *File) Close() error {
	return f.base.Close()
}
