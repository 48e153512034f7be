package aggregation

import (
	"sort"

	dberror "tinybase/pkg/error"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

type intGroupState struct {
	groupField types.Field // nil for NoGrouping
	sum        int64
	count      int64
	acc        int32
}

// IntegerAggregator implements MIN, MAX, SUM, AVG, and COUNT over an
// integer-typed aggregate field, optionally grouped by another field.
type IntegerAggregator struct {
	gbField    int
	gbType     types.Type
	aggField   int
	op         Op
	tupleDesc  *tuple.TupleDescription
	groups     map[string]*intGroupState
	groupOrder []string
}

func NewIntegerAggregator(gbField int, gbType types.Type, aggField int, op Op, td *tuple.TupleDescription) *IntegerAggregator {
	return &IntegerAggregator{
		gbField:   gbField,
		gbType:    gbType,
		aggField:  aggField,
		op:        op,
		tupleDesc: td,
		groups:    make(map[string]*intGroupState),
	}
}

func (a *IntegerAggregator) TupleDesc() *tuple.TupleDescription {
	return a.tupleDesc
}

func (a *IntegerAggregator) Merge(t *tuple.Tuple) error {
	valField, err := t.GetField(a.aggField)
	if err != nil {
		return err
	}
	intVal, ok := valField.(*types.IntField)
	if !ok {
		return dberror.New(dberror.DbError, "IntegerAggregator", "Merge", "aggregate field is not an int")
	}

	var key string
	var groupField types.Field
	if a.gbField == NoGrouping {
		key = ""
	} else {
		groupField, err = t.GetField(a.gbField)
		if err != nil {
			return err
		}
		key = groupField.String()
	}

	state, exists := a.groups[key]
	if !exists {
		state = &intGroupState{groupField: groupField}
		a.groups[key] = state
		a.groupOrder = append(a.groupOrder, key)
	}
	a.mergeInto(state, intVal.Value)
	return nil
}

func (a *IntegerAggregator) mergeInto(state *intGroupState, v int32) {
	switch a.op {
	case Count:
		state.count++
	case Sum:
		state.sum += int64(v)
		state.count++
	case Min:
		if state.count == 0 || v < state.acc {
			state.acc = v
		}
		state.count++
	case Max:
		if state.count == 0 || v > state.acc {
			state.acc = v
		}
		state.count++
	case Avg:
		state.sum += int64(v)
		state.count++
	}
}

func (a *IntegerAggregator) Results() ([]*tuple.Tuple, error) {
	order := make([]string, len(a.groupOrder))
	copy(order, a.groupOrder)
	sort.Strings(order)

	results := make([]*tuple.Tuple, 0, len(order))
	for _, key := range order {
		state := a.groups[key]
		t := tuple.NewTuple(a.tupleDesc)
		idx := 0
		if a.gbField != NoGrouping {
			if err := t.SetField(0, state.groupField); err != nil {
				return nil, err
			}
			idx = 1
		}
		if err := t.SetField(idx, types.NewIntField(state.finalValue(a.op))); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, nil
}

func (state *intGroupState) finalValue(op Op) int32 {
	switch op {
	case Count:
		return int32(state.count)
	case Sum:
		return int32(state.sum)
	case Avg:
		if state.count == 0 {
			return 0
		}
		return int32(state.sum / state.count)
	default: // Min, Max
		return state.acc
	}
}
