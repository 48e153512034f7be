package execution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybase/pkg/concurrency/transaction"
	"tinybase/pkg/primitives"
	"tinybase/pkg/types"
)

func TestFilter_KeepsOnlyMatchingRows(t *testing.T) {
	eng := newTestEngine(t)
	f := eng.createTable("people", peopleDesc())
	eng.insertAndCommit(f, [][]types.Field{
		{types.NewIntField(1), types.NewStringField("ada")},
		{types.NewIntField(2), types.NewStringField("alan")},
		{types.NewIntField(3), types.NewStringField("grace")},
	})

	tid := transaction.NewID()
	scan := NewSeqScan(tid, f.ID(), "p", eng.pool, f)
	filter := NewFilter(scan, 0, primitives.GreaterThan, types.NewIntField(1))

	rows := drain(t, filter)
	require.Len(t, rows, 2)
	for _, row := range rows {
		idField, err := row.GetField(0)
		require.NoError(t, err)
		ok, err := idField.Compare(primitives.GreaterThan, types.NewIntField(1))
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestFilter_TupleDescPassesThroughChild(t *testing.T) {
	eng := newTestEngine(t)
	f := eng.createTable("people", peopleDesc())

	tid := transaction.NewID()
	scan := NewSeqScan(tid, f.ID(), "p", eng.pool, f)
	filter := NewFilter(scan, 0, primitives.Equals, types.NewIntField(1))

	assert.Same(t, scan.TupleDesc(), filter.TupleDesc())
}
