package execution

import (
	dberror "tinybase/pkg/error"
	"tinybase/pkg/primitives"
	"tinybase/pkg/tuple"
)

// Join is a nested-loop join: for each left tuple, it rewinds the right
// child and emits the concatenation of every matching pair. Output
// TupleDesc is the concatenation of both children's descriptions.
type Join struct {
	*baseIterator

	predicate   primitives.JoinPredicate
	left, right Operator
	tupleDesc   *tuple.TupleDescription

	currentLeft *tuple.Tuple
}

func NewJoin(predicate primitives.JoinPredicate, left, right Operator) *Join {
	j := &Join{
		predicate: predicate,
		left:      left,
		right:     right,
		tupleDesc: tuple.Combine(left.TupleDesc(), right.TupleDesc()),
	}
	j.baseIterator = newBaseIterator(j.readNext)
	return j
}

func (j *Join) TupleDesc() *tuple.TupleDescription {
	return j.tupleDesc
}

func (j *Join) Open() error {
	if err := j.left.Open(); err != nil {
		return err
	}
	if err := j.right.Open(); err != nil {
		_ = j.left.Close()
		return err
	}
	j.currentLeft = nil
	j.markOpened()
	return nil
}

func (j *Join) Rewind() error {
	if err := j.left.Rewind(); err != nil {
		return err
	}
	if err := j.right.Rewind(); err != nil {
		return err
	}
	j.currentLeft = nil
	j.markOpened()
	return nil
}

func (j *Join) Close() error {
	j.markClosed()
	if err := j.right.Close(); err != nil {
		return err
	}
	return j.left.Close()
}

func (j *Join) readNext() (*tuple.Tuple, error) {
	for {
		if j.currentLeft == nil {
			has, err := j.left.HasNext()
			if err != nil {
				return nil, err
			}
			if !has {
				return nil, nil
			}
			j.currentLeft, err = j.left.Next()
			if err != nil {
				return nil, err
			}
			if err := j.right.Rewind(); err != nil {
				return nil, err
			}
		}

		has, err := j.right.HasNext()
		if err != nil {
			return nil, err
		}
		if !has {
			j.currentLeft = nil
			continue
		}
		rightTuple, err := j.right.Next()
		if err != nil {
			return nil, err
		}

		matches, err := j.matches(j.currentLeft, rightTuple)
		if err != nil {
			return nil, err
		}
		if !matches {
			continue
		}
		return tuple.CombineTuples(j.currentLeft, rightTuple)
	}
}

func (j *Join) matches(left, right *tuple.Tuple) (bool, error) {
	lf, err := left.GetField(j.predicate.LeftField)
	if err != nil {
		return false, err
	}
	rf, err := right.GetField(j.predicate.RightField)
	if err != nil {
		return false, err
	}
	ok, err := lf.Compare(j.predicate.Op, rf)
	if err != nil {
		return false, dberror.Wrap(err, dberror.DbError, "Join", "matches")
	}
	return ok, nil
}
