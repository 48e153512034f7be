package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybase/pkg/concurrency/transaction"
	"tinybase/pkg/execution/aggregation"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

func agesDesc() *tuple.TupleDescription {
	return tuple.NewTupleDescription(
		[]types.Type{types.StringType, types.IntType},
		[]string{"dept", "age"},
	)
}

func TestAggregate_NoGroupingAverage(t *testing.T) {
	eng := newTestEngine(t)
	f := eng.createTable("ages", agesDesc())
	eng.insertAndCommit(f, [][]types.Field{
		{types.NewStringField("eng"), types.NewIntField(10)},
		{types.NewStringField("eng"), types.NewIntField(20)},
		{types.NewStringField("eng"), types.NewIntField(30)},
	})

	tid := transaction.NewID()
	scan := NewSeqScan(tid, f.ID(), "a", eng.pool, f)
	agg, err := NewAggregate(scan, 1, aggregation.NoGrouping, aggregation.Avg)
	require.NoError(t, err)

	rows := drain(t, agg)
	require.Len(t, rows, 1)
	val, err := rows[0].GetField(0)
	require.NoError(t, err)
	assert.Equal(t, "20", val.String())
}

func TestAggregate_GroupedCount(t *testing.T) {
	eng := newTestEngine(t)
	f := eng.createTable("ages", agesDesc())
	eng.insertAndCommit(f, [][]types.Field{
		{types.NewStringField("eng"), types.NewIntField(10)},
		{types.NewStringField("eng"), types.NewIntField(20)},
		{types.NewStringField("sales"), types.NewIntField(30)},
	})

	tid := transaction.NewID()
	scan := NewSeqScan(tid, f.ID(), "a", eng.pool, f)
	agg, err := NewAggregate(scan, 1, 0, aggregation.Count)
	require.NoError(t, err)

	rows := drain(t, agg)
	require.Len(t, rows, 2)

	counts := map[string]string{}
	for _, row := range rows {
		dept, err := row.GetField(0)
		require.NoError(t, err)
		count, err := row.GetField(1)
		require.NoError(t, err)
		counts[dept.String()] = count.String()
	}
	assert.Equal(t, "2", counts["eng"])
	assert.Equal(t, "1", counts["sales"])
}

func TestAggregate_EmptyInputNoGroupingEmitsZero(t *testing.T) {
	eng := newTestEngine(t)
	f := eng.createTable("ages", agesDesc())

	tid := transaction.NewID()
	scan := NewSeqScan(tid, f.ID(), "a", eng.pool, f)
	agg, err := NewAggregate(scan, 1, aggregation.NoGrouping, aggregation.Sum)
	require.NoError(t, err)

	rows := drain(t, agg)
	require.Len(t, rows, 1)
	val, err := rows[0].GetField(0)
	require.NoError(t, err)
	assert.Equal(t, "0", val.String())
}

func TestAggregate_ColumnNameReflectsOpAndField(t *testing.T) {
	eng := newTestEngine(t)
	f := eng.createTable("ages", agesDesc())

	tid := transaction.NewID()
	scan := NewSeqScan(tid, f.ID(), "a", eng.pool, f)
	agg, err := NewAggregate(scan, 1, aggregation.NoGrouping, aggregation.Max)
	require.NoError(t, err)

	name, err := agg.TupleDesc().FieldName(0)
	require.NoError(t, err)
	assert.Equal(t, "MAX (a.age)", name)
}
