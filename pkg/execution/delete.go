package execution

import (
	"tinybase/pkg/concurrency/transaction"
	"tinybase/pkg/memory"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

// Delete has the same one-shot shape as Insert but removes each tuple its
// child produces; the table is implied by the tuple's own RecordID, not
// passed in.
type Delete struct {
	*baseIterator

	tid       *transaction.ID
	child     Operator
	pool      *memory.Pool
	tupleDesc *tuple.TupleDescription
	done      bool
}

func NewDelete(tid *transaction.ID, child Operator, pool *memory.Pool) *Delete {
	d := &Delete{
		tid:       tid,
		child:     child,
		pool:      pool,
		tupleDesc: tuple.NewTupleDescription([]types.Type{types.IntType}, []string{"count"}),
	}
	d.baseIterator = newBaseIterator(d.readNext)
	return d
}

func (d *Delete) TupleDesc() *tuple.TupleDescription {
	return d.tupleDesc
}

func (d *Delete) Open() error {
	if err := d.child.Open(); err != nil {
		return err
	}
	d.done = false
	d.markOpened()
	return nil
}

func (d *Delete) Rewind() error {
	if err := d.child.Rewind(); err != nil {
		return err
	}
	d.done = false
	d.markOpened()
	return nil
}

func (d *Delete) Close() error {
	d.markClosed()
	return d.child.Close()
}

func (d *Delete) readNext() (*tuple.Tuple, error) {
	if d.done {
		return nil, nil
	}
	d.done = true

	count := int32(0)
	for {
		has, err := d.child.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			break
		}
		t, err := d.child.Next()
		if err != nil {
			return nil, err
		}
		if err := d.pool.DeleteTuple(d.tid, t); err != nil {
			return nil, err
		}
		count++
	}

	result := tuple.NewTuple(d.tupleDesc)
	if err := result.SetField(0, types.NewIntField(count)); err != nil {
		return nil, err
	}
	return result, nil
}
