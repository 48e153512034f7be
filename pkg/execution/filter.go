package execution

import (
	dberror "tinybase/pkg/error"
	"tinybase/pkg/primitives"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

// Filter passes through its child's tuples, keeping only those for which
// op(t[field], constant) holds. Its TupleDesc is identical to the child's.
type Filter struct {
	*baseIterator

	child    Operator
	field    int
	op       primitives.Predicate
	constant types.Field
}

func NewFilter(child Operator, field int, op primitives.Predicate, constant types.Field) *Filter {
	f := &Filter{child: child, field: field, op: op, constant: constant}
	f.baseIterator = newBaseIterator(f.readNext)
	return f
}

func (f *Filter) TupleDesc() *tuple.TupleDescription {
	return f.child.TupleDesc()
}

func (f *Filter) Open() error {
	if err := f.child.Open(); err != nil {
		return err
	}
	f.markOpened()
	return nil
}

func (f *Filter) Rewind() error {
	if err := f.child.Rewind(); err != nil {
		return err
	}
	f.markOpened()
	return nil
}

func (f *Filter) Close() error {
	f.markClosed()
	return f.child.Close()
}

func (f *Filter) readNext() (*tuple.Tuple, error) {
	for {
		has, err := f.child.HasNext()
		if err != nil {
			_ = f.child.Close()
			return nil, err
		}
		if !has {
			return nil, nil
		}
		t, err := f.child.Next()
		if err != nil {
			_ = f.child.Close()
			return nil, err
		}
		val, err := t.GetField(f.field)
		if err != nil {
			return nil, err
		}
		matches, err := val.Compare(f.op, f.constant)
		if err != nil {
			return nil, dberror.Wrap(err, dberror.DbError, "Filter", "readNext")
		}
		if matches {
			return t, nil
		}
	}
}
