package execution

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tinybase/pkg/catalog"
	"tinybase/pkg/concurrency/transaction"
	"tinybase/pkg/log"
	"tinybase/pkg/memory"
	"tinybase/pkg/storage/heap"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

// testEngine wires up a catalog, WAL, and buffer pool against real on-disk
// heap files, the same way database.Database does, without pulling in the
// database package (execution must not depend on it).
type testEngine struct {
	t    *testing.T
	cat  *catalog.Catalog
	pool *memory.Pool
}

func newTestEngine(t *testing.T) *testEngine {
	dir := t.TempDir()
	wal, err := log.NewWAL(filepath.Join(dir, "wal.log"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wal.Close() })

	cat := catalog.NewCatalog()
	pool := memory.NewPool(cat, wal, memory.DefaultCapacity)
	return &testEngine{t: t, cat: cat, pool: pool}
}

func (e *testEngine) createTable(name string, td *tuple.TupleDescription) *heap.File {
	path := filepath.Join(e.t.TempDir(), name+".tbl")
	f, err := heap.NewFile(path, td)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = f.Close() })
	firstName, _ := td.FieldName(0)
	e.cat.AddTable(f, name, firstName)
	return f
}

func (e *testEngine) insertAndCommit(f *heap.File, rows [][]types.Field) {
	tid := transaction.NewID()
	for _, row := range rows {
		tup := tuple.NewTuple(f.TupleDesc())
		for i, v := range row {
			require.NoError(e.t, tup.SetField(i, v))
		}
		require.NoError(e.t, e.pool.InsertTuple(tid, f.ID(), tup))
	}
	require.NoError(e.t, e.pool.TransactionComplete(tid, true))
}

func drain(t *testing.T, op Operator) []*tuple.Tuple {
	require.NoError(t, op.Open())
	defer func() { require.NoError(t, op.Close()) }()

	var out []*tuple.Tuple
	for {
		has, err := op.HasNext()
		require.NoError(t, err)
		if !has {
			break
		}
		tup, err := op.Next()
		require.NoError(t, err)
		out = append(out, tup)
	}
	return out
}
