// Package page defines the Page and DbFile capability interfaces shared by
// every on-disk page format. The heap variant lives in storage/heap; a
// future B+tree variant (out of scope here) would implement the same
// interfaces.
package page

import (
	"tinybase/pkg/concurrency/transaction"
	"tinybase/pkg/tuple"
)

// Size is the fixed byte size of every page. It is declared as a variable,
// not a const, so tests may shrink it to exercise multi-page behavior
// without allocating megabytes of fixtures; production code never mutates
// it after startup.
var Size = 4096

// Page is a capability interface over a single fixed-size page: callers can
// read its data and identity, mutate its dirty marker, and snapshot/restore
// its before-image. An implementation may guard its own fields with a
// mutex (HeapPage does); serializing transactions' access to a page is
// left to the buffer pool and lock manager.
type Page interface {
	ID() tuple.PageID
	Data() []byte
	IsDirty() *transaction.ID
	MarkDirty(dirty bool, by *transaction.ID)
	BeforeImage() Page
	SetBeforeImage()
}

// DbFile is the capability a table's on-disk heap file exposes to the
// buffer pool and operators: read/write a page by id, report page count,
// extend the file with a fresh empty page, mutate the slots of an
// already-fetched page, and identify itself.
//
// InsertTupleIntoPage and DeleteTupleFromPage never touch disk themselves —
// the caller (the buffer pool) is responsible for obtaining p via GetPage
// first, so every mutation lands on the single cached copy of a page
// instead of a throwaway one read straight from the file.
type DbFile interface {
	ID() int
	TupleDesc() *tuple.TupleDescription
	ReadPage(pid tuple.PageID) (Page, error)
	WritePage(p Page) error
	NumPages() (int, error)
	PageIDAt(pageNumber int) tuple.PageID
	AppendEmptyPage() (tuple.PageID, error)
	InsertTupleIntoPage(p Page, t *tuple.Tuple) error
	DeleteTupleFromPage(p Page, t *tuple.Tuple) error
	Close() error
}
