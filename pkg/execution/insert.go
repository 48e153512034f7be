package execution

import (
	"tinybase/pkg/catalog"
	"tinybase/pkg/concurrency/transaction"
	dberror "tinybase/pkg/error"
	"tinybase/pkg/memory"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

// Insert drains its child, inserting every tuple into table_id via the
// buffer pool, and emits a single one-field Int tuple carrying the count of
// tuples inserted. Calling Next again after that returns end-of-stream.
type Insert struct {
	*baseIterator

	tid       *transaction.ID
	child     Operator
	tableID   int
	pool      *memory.Pool
	tupleDesc *tuple.TupleDescription
	done      bool
}

func NewInsert(tid *transaction.ID, child Operator, tableID int, pool *memory.Pool, cat *catalog.Catalog) (*Insert, error) {
	childDesc := child.TupleDesc()
	tableDesc, err := cat.TupleDesc(tableID)
	if err != nil {
		return nil, err
	}
	if !childDesc.Equals(tableDesc) {
		return nil, dberror.New(dberror.DbError, "Insert", "NewInsert", "child schema does not match table schema")
	}

	i := &Insert{
		tid:       tid,
		child:     child,
		tableID:   tableID,
		pool:      pool,
		tupleDesc: tuple.NewTupleDescription([]types.Type{types.IntType}, []string{"count"}),
	}
	i.baseIterator = newBaseIterator(i.readNext)
	return i, nil
}

func (i *Insert) TupleDesc() *tuple.TupleDescription {
	return i.tupleDesc
}

func (i *Insert) Open() error {
	if err := i.child.Open(); err != nil {
		return err
	}
	i.done = false
	i.markOpened()
	return nil
}

func (i *Insert) Rewind() error {
	if err := i.child.Rewind(); err != nil {
		return err
	}
	i.done = false
	i.markOpened()
	return nil
}

func (i *Insert) Close() error {
	i.markClosed()
	return i.child.Close()
}

func (i *Insert) readNext() (*tuple.Tuple, error) {
	if i.done {
		return nil, nil
	}
	i.done = true

	count := int32(0)
	for {
		has, err := i.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			break
		}
		t, err := i.child.Next()
		if err != nil {
			return nil, err
		}
		if err := i.pool.InsertTuple(i.tid, i.tableID, t); err != nil {
			return nil, err
		}
		count++
	}

	result := tuple.NewTuple(i.tupleDesc)
	if err := result.SetField(0, types.NewIntField(count)); err != nil {
		return nil, err
	}
	return result, nil
}
