package execution

import (
	"tinybase/pkg/concurrency/transaction"
	dberror "tinybase/pkg/error"
	"tinybase/pkg/memory"
	"tinybase/pkg/storage/heap"
	"tinybase/pkg/storage/page"
	"tinybase/pkg/tuple"
)

// SeqScan reads every tuple of a table, page by page, through the buffer
// pool under a SHARED lock. Its output TupleDesc renames every field
// "alias.field_name" so a later Join can disambiguate fields that share a
// name across tables.
type SeqScan struct {
	*baseIterator

	tid       *transaction.ID
	tableID   int
	alias     string
	pool      *memory.Pool
	dbFile    page.DbFile
	tupleDesc *tuple.TupleDescription

	pageNum     int
	pageTuples  []*tuple.Tuple
	tupleOffset int
}

func NewSeqScan(tid *transaction.ID, tableID int, alias string, pool *memory.Pool, dbFile page.DbFile) *SeqScan {
	s := &SeqScan{
		tid:       tid,
		tableID:   tableID,
		alias:     alias,
		pool:      pool,
		dbFile:    dbFile,
		tupleDesc: dbFile.TupleDesc().WithAlias(alias),
	}
	s.baseIterator = newBaseIterator(s.readNext)
	return s
}

func (s *SeqScan) TupleDesc() *tuple.TupleDescription {
	return s.tupleDesc
}

func (s *SeqScan) Open() error {
	s.pageNum = 0
	s.pageTuples = nil
	s.tupleOffset = 0
	s.markOpened()
	return nil
}

func (s *SeqScan) Rewind() error {
	return s.Open()
}

func (s *SeqScan) Close() error {
	s.markClosed()
	return nil
}

func (s *SeqScan) readNext() (*tuple.Tuple, error) {
	for {
		if s.tupleOffset < len(s.pageTuples) {
			t := s.pageTuples[s.tupleOffset]
			s.tupleOffset++
			return s.relabel(t), nil
		}

		numPages, err := s.dbFile.NumPages()
		if err != nil {
			return nil, dberror.Wrap(err, dberror.DbError, "SeqScan", "readNext")
		}
		if s.pageNum >= numPages {
			return nil, nil
		}

		pid := s.dbFile.PageIDAt(s.pageNum)
		s.pageNum++

		pg, err := s.pool.GetPage(s.tid, pid, memory.ReadOnly)
		if err != nil {
			return nil, err
		}
		hp, ok := pg.(*heap.HeapPage)
		if !ok {
			return nil, dberror.New(dberror.DbError, "SeqScan", "readNext", "page is not a heap page")
		}
		s.pageTuples = hp.GetTuples()
		s.tupleOffset = 0
	}
}

// relabel returns a shallow copy of t carrying this scan's aliased
// TupleDesc instead of the table's own; the underlying field values and
// RecordID are shared, not copied.
func (s *SeqScan) relabel(t *tuple.Tuple) *tuple.Tuple {
	out := tuple.NewTuple(s.tupleDesc)
	out.RecordID = t.RecordID
	for i := 0; i < t.TupleDesc.NumFields(); i++ {
		f, _ := t.GetField(i)
		_ = out.SetField(i, f)
	}
	return out
}
