package aggregation

import (
	"sort"

	dberror "tinybase/pkg/error"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

// StringAggregator supports only COUNT. Constructing it with any other op
// fails immediately with an Unsupported error.
type StringAggregator struct {
	gbField    int
	aggField   int
	tupleDesc  *tuple.TupleDescription
	counts     map[string]int64
	groupField map[string]types.Field
	groupOrder []string
}

func NewStringAggregator(gbField, aggField int, op Op, td *tuple.TupleDescription) (*StringAggregator, error) {
	if op != Count {
		return nil, dberror.New(dberror.Unsupported, "StringAggregator", "NewStringAggregator",
			"string aggregation only supports COUNT")
	}
	return &StringAggregator{
		gbField:    gbField,
		aggField:   aggField,
		tupleDesc:  td,
		counts:     make(map[string]int64),
		groupField: make(map[string]types.Field),
	}, nil
}

func (a *StringAggregator) TupleDesc() *tuple.TupleDescription {
	return a.tupleDesc
}

func (a *StringAggregator) Merge(t *tuple.Tuple) error {
	var key string
	var groupField types.Field
	if a.gbField != NoGrouping {
		var err error
		groupField, err = t.GetField(a.gbField)
		if err != nil {
			return err
		}
		key = groupField.String()
	}

	if _, exists := a.counts[key]; !exists {
		a.groupOrder = append(a.groupOrder, key)
		a.groupField[key] = groupField
	}
	a.counts[key]++
	return nil
}

func (a *StringAggregator) Results() ([]*tuple.Tuple, error) {
	order := make([]string, len(a.groupOrder))
	copy(order, a.groupOrder)
	sort.Strings(order)

	results := make([]*tuple.Tuple, 0, len(order))
	for _, key := range order {
		t := tuple.NewTuple(a.tupleDesc)
		idx := 0
		if a.gbField != NoGrouping {
			if err := t.SetField(0, a.groupField[key]); err != nil {
				return nil, err
			}
			idx = 1
		}
		if err := t.SetField(idx, types.NewIntField(int32(a.counts[key]))); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, nil
}
