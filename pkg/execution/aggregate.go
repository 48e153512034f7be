package execution

import (
	"fmt"

	"tinybase/pkg/execution/aggregation"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

// Aggregate drains its child on Open, feeding every tuple to an internal
// Aggregator, and replays the materialized group results on Next. Rewind
// simply resets the replay cursor; the child is never re-drained.
type Aggregate struct {
	*baseIterator

	child      Operator
	aggField   int
	groupField int
	op         aggregation.Op

	aggregator aggregation.Aggregator
	tupleDesc  *tuple.TupleDescription

	results []*tuple.Tuple
	cursor  int
}

func NewAggregate(child Operator, aggField, groupField int, op aggregation.Op) (*Aggregate, error) {
	a := &Aggregate{
		child:      child,
		aggField:   aggField,
		groupField: groupField,
		op:         op,
	}

	aggFieldType, err := child.TupleDesc().TypeAtIndex(aggField)
	if err != nil {
		return nil, err
	}

	if groupField == aggregation.NoGrouping {
		a.tupleDesc = tuple.NewTupleDescription(
			[]types.Type{types.IntType},
			[]string{aggregateColumnName(child.TupleDesc(), aggField, op)},
		)
	} else {
		gbType, err := child.TupleDesc().TypeAtIndex(groupField)
		if err != nil {
			return nil, err
		}
		gbName, err := child.TupleDesc().FieldName(groupField)
		if err != nil {
			return nil, err
		}
		a.tupleDesc = tuple.NewTupleDescription(
			[]types.Type{gbType, types.IntType},
			[]string{gbName, aggregateColumnName(child.TupleDesc(), aggField, op)},
		)
	}

	if aggFieldType == types.StringType {
		a.aggregator, err = aggregation.NewStringAggregator(groupField, aggField, op, a.tupleDesc)
		if err != nil {
			return nil, err
		}
	} else {
		gbType := types.IntType
		if groupField != aggregation.NoGrouping {
			gbType, err = child.TupleDesc().TypeAtIndex(groupField)
			if err != nil {
				return nil, err
			}
		}
		a.aggregator = aggregation.NewIntegerAggregator(groupField, gbType, aggField, op, a.tupleDesc)
	}

	a.baseIterator = newBaseIterator(a.readNext)
	return a, nil
}

// aggregateColumnName derives "op (a_name)" fresh from the child's schema
// every time it's needed; it is never computed once and reused across the
// grouped and NO_GROUPING branches.
func aggregateColumnName(childDesc *tuple.TupleDescription, aggField int, op aggregation.Op) string {
	name, err := childDesc.FieldName(aggField)
	if err != nil {
		name = "?"
	}
	return fmt.Sprintf("%s (%s)", op, name)
}

func (a *Aggregate) TupleDesc() *tuple.TupleDescription {
	return a.tupleDesc
}

func (a *Aggregate) Open() error {
	if err := a.child.Open(); err != nil {
		return err
	}
	for {
		has, err := a.child.HasNext()
		if err != nil {
			return err
		}
		if !has {
			break
		}
		t, err := a.child.Next()
		if err != nil {
			return err
		}
		if err := a.aggregator.Merge(t); err != nil {
			return err
		}
	}
	if err := a.child.Close(); err != nil {
		return err
	}

	results, err := a.aggregator.Results()
	if err != nil {
		return err
	}
	if a.groupField == aggregation.NoGrouping && len(results) == 0 {
		results, err = a.emptyResult()
		if err != nil {
			return err
		}
	}
	a.results = results
	a.cursor = 0
	a.markOpened()
	return nil
}

// emptyResult produces the single tuple NO_GROUPING emits over zero input
// tuples: 0 for COUNT/SUM, and (per the open question on empty-set
// MIN/MAX/AVG) 0 as well.
func (a *Aggregate) emptyResult() ([]*tuple.Tuple, error) {
	t := tuple.NewTuple(a.tupleDesc)
	if err := t.SetField(0, types.NewIntField(0)); err != nil {
		return nil, err
	}
	return []*tuple.Tuple{t}, nil
}

func (a *Aggregate) Rewind() error {
	a.cursor = 0
	a.markOpened()
	return nil
}

func (a *Aggregate) Close() error {
	a.markClosed()
	return nil
}

func (a *Aggregate) readNext() (*tuple.Tuple, error) {
	if a.cursor >= len(a.results) {
		return nil, nil
	}
	t := a.results[a.cursor]
	a.cursor++
	return t, nil
}
