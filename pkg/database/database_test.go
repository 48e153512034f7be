package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybase/pkg/memory"
	"tinybase/pkg/storage/heap"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

func TestDatabase_CreateTableAndRoundTripTuple(t *testing.T) {
	db, err := Open(t.TempDir(), memory.DefaultCapacity)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	td := tuple.NewTupleDescription([]types.Type{types.IntType}, []string{"n"})
	tableID, err := db.CreateTable("nums", "n", td)
	require.NoError(t, err)

	tid := db.BeginTransaction()
	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(5)))
	require.NoError(t, db.Pool().InsertTuple(tid, tableID, tup))
	require.NoError(t, db.Commit(tid))

	dbFile, err := db.DbFile(tableID)
	require.NoError(t, err)
	numPages, err := dbFile.NumPages()
	require.NoError(t, err)
	assert.Equal(t, 1, numPages)
}

func TestDatabase_AbortLeavesTableEmpty(t *testing.T) {
	db, err := Open(t.TempDir(), memory.DefaultCapacity)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	td := tuple.NewTupleDescription([]types.Type{types.IntType}, []string{"n"})
	tableID, err := db.CreateTable("nums", "n", td)
	require.NoError(t, err)

	tid := db.BeginTransaction()
	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(5)))
	require.NoError(t, db.Pool().InsertTuple(tid, tableID, tup))
	require.NoError(t, db.Abort(tid))

	dbFile, err := db.DbFile(tableID)
	require.NoError(t, err)
	pg, err := dbFile.ReadPage(dbFile.PageIDAt(0))
	require.NoError(t, err)
	assert.Empty(t, pg.(*heap.HeapPage).GetTuples())
}
