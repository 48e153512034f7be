// Package execution implements the pull-based operator pipeline: scan,
// filter, join, insert, and delete, each driving its children through one
// shared contract.
package execution

import (
	dberror "tinybase/pkg/error"
	"tinybase/pkg/tuple"
)

// Operator is the contract every node in a query plan satisfies. Next
// returns (nil, nil) at end-of-stream; calling Next again after that keeps
// returning (nil, nil) rather than erroring.
type Operator interface {
	Open() error
	HasNext() (bool, error)
	Next() (*tuple.Tuple, error)
	Rewind() error
	Close() error
	TupleDesc() *tuple.TupleDescription
}

// readNextFunc produces the next tuple from an operator's underlying
// source, or (nil, nil) once exhausted.
type readNextFunc func() (*tuple.Tuple, error)

// baseIterator supplies the open/cached-lookahead bookkeeping shared by
// every operator below, so each one only has to implement readNextFunc.
type baseIterator struct {
	cached   *tuple.Tuple
	opened   bool
	readNext readNextFunc
}

func newBaseIterator(readNext readNextFunc) *baseIterator {
	return &baseIterator{readNext: readNext}
}

func (it *baseIterator) markOpened() {
	it.opened = true
	it.cached = nil
}

func (it *baseIterator) markClosed() {
	it.opened = false
	it.cached = nil
}

func (it *baseIterator) HasNext() (bool, error) {
	if !it.opened {
		return false, dberror.New(dberror.DbError, "operator", "HasNext", "iterator not open")
	}
	if it.cached == nil {
		t, err := it.readNext()
		if err != nil {
			return false, err
		}
		it.cached = t
	}
	return it.cached != nil, nil
}

func (it *baseIterator) Next() (*tuple.Tuple, error) {
	if !it.opened {
		return nil, dberror.New(dberror.DbError, "operator", "Next", "iterator not open")
	}
	if it.cached == nil {
		t, err := it.readNext()
		if err != nil {
			return nil, err
		}
		it.cached = t
	}
	result := it.cached
	it.cached = nil
	return result, nil
}
