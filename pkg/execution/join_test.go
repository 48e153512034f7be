package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybase/pkg/concurrency/transaction"
	"tinybase/pkg/primitives"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

func ordersDesc() *tuple.TupleDescription {
	return tuple.NewTupleDescription(
		[]types.Type{types.IntType, types.IntType},
		[]string{"order_id", "person_id"},
	)
}

func TestJoin_NestedLoopMatchesOnEquiPredicate(t *testing.T) {
	eng := newTestEngine(t)
	people := eng.createTable("people", peopleDesc())
	orders := eng.createTable("orders", ordersDesc())

	eng.insertAndCommit(people, [][]types.Field{
		{types.NewIntField(1), types.NewStringField("ada")},
		{types.NewIntField(2), types.NewStringField("alan")},
	})
	eng.insertAndCommit(orders, [][]types.Field{
		{types.NewIntField(100), types.NewIntField(1)},
		{types.NewIntField(101), types.NewIntField(1)},
		{types.NewIntField(102), types.NewIntField(2)},
	})

	tid := transaction.NewID()
	left := NewSeqScan(tid, people.ID(), "p", eng.pool, people)
	right := NewSeqScan(tid, orders.ID(), "o", eng.pool, orders)
	pred := primitives.NewJoinPredicate(0, primitives.Equals, 1)
	join := NewJoin(pred, left, right)

	rows := drain(t, join)
	require.Len(t, rows, 3)
	assert.Equal(t, 4, join.TupleDesc().NumFields())

	for _, row := range rows {
		personID, err := row.GetField(0)
		require.NoError(t, err)
		orderPersonID, err := row.GetField(3)
		require.NoError(t, err)
		assert.Equal(t, personID.String(), orderPersonID.String())
	}
}

func TestJoin_NoMatchesProducesNoRows(t *testing.T) {
	eng := newTestEngine(t)
	people := eng.createTable("people", peopleDesc())
	orders := eng.createTable("orders", ordersDesc())

	eng.insertAndCommit(people, [][]types.Field{
		{types.NewIntField(1), types.NewStringField("ada")},
	})
	eng.insertAndCommit(orders, [][]types.Field{
		{types.NewIntField(100), types.NewIntField(999)},
	})

	tid := transaction.NewID()
	left := NewSeqScan(tid, people.ID(), "p", eng.pool, people)
	right := NewSeqScan(tid, orders.ID(), "o", eng.pool, orders)
	pred := primitives.NewJoinPredicate(0, primitives.Equals, 1)
	join := NewJoin(pred, left, right)

	rows := drain(t, join)
	assert.Empty(t, rows)
}
