package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

func rowsDesc() *tuple.TupleDescription {
	return tuple.NewTupleDescription(
		[]types.Type{types.StringType, types.IntType},
		[]string{"group", "value"},
	)
}

func mergeAll(t *testing.T, a Aggregator, groups []string, values []int32) {
	td := rowsDesc()
	for i := range values {
		row := tuple.NewTuple(td)
		require.NoError(t, row.SetField(0, types.NewStringField(groups[i])))
		require.NoError(t, row.SetField(1, types.NewIntField(values[i])))
		require.NoError(t, a.Merge(row))
	}
}

func TestIntegerAggregator_MinMaxSumAvgCount(t *testing.T) {
	td := tuple.NewTupleDescription([]types.Type{types.IntType}, []string{"result"})
	groups := []string{"", "", "", ""}
	values := []int32{3, -1, 10, 4}

	for _, tc := range []struct {
		op   Op
		want int32
	}{
		{Min, -1},
		{Max, 10},
		{Sum, 16},
		{Count, 4},
		{Avg, 4}, // 16/4
	} {
		a := NewIntegerAggregator(NoGrouping, types.IntType, 1, tc.op, td)
		mergeAll(t, a, groups, values)

		results, err := a.Results()
		require.NoError(t, err)
		require.Len(t, results, 1)

		got, err := results[0].GetField(0)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got.(*types.IntField).Value, "op=%s", tc.op)
	}
}

func TestIntegerAggregator_AvgTruncatesTowardZero(t *testing.T) {
	td := tuple.NewTupleDescription([]types.Type{types.IntType}, []string{"result"})
	a := NewIntegerAggregator(NoGrouping, types.IntType, 1, Avg, td)
	mergeAll(t, a, []string{"", "", ""}, []int32{-1, -1, -2})

	results, err := a.Results()
	require.NoError(t, err)
	got, err := results[0].GetField(0)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), got.(*types.IntField).Value) // -4/3 truncates to -1, not -2
}

func TestIntegerAggregator_GroupedResultsAreSortedByKey(t *testing.T) {
	td := tuple.NewTupleDescription([]types.Type{types.StringType, types.IntType}, []string{"group", "count"})
	a := NewIntegerAggregator(0, types.StringType, 1, Count, td)
	mergeAll(t, a, []string{"z", "a", "z"}, []int32{1, 2, 3})

	results, err := a.Results()
	require.NoError(t, err)
	require.Len(t, results, 2)

	firstGroup, err := results[0].GetField(0)
	require.NoError(t, err)
	assert.Equal(t, "a", firstGroup.String())

	secondGroup, err := results[1].GetField(0)
	require.NoError(t, err)
	assert.Equal(t, "z", secondGroup.String())
}
