package statistics

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybase/pkg/primitives"
	"tinybase/pkg/storage/heap"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

// addTupleDirect writes a tuple straight to a heap file with no buffer pool
// in front of it, flushing after every insert so a fresh disk read never
// misses an earlier write. Good enough for a single-writer fixture builder.
func addTupleDirect(t *testing.T, f *heap.File, tup *tuple.Tuple) {
	numPages, err := f.NumPages()
	require.NoError(t, err)

	for pageNum := 0; pageNum < numPages; pageNum++ {
		pid := f.PageIDAt(pageNum)
		pg, err := f.ReadPage(pid)
		require.NoError(t, err)
		if err := f.InsertTupleIntoPage(pg, tup); err != nil {
			continue
		}
		require.NoError(t, f.WritePage(pg))
		return
	}

	pid, err := f.AppendEmptyPage()
	require.NoError(t, err)
	pg, err := f.ReadPage(pid)
	require.NoError(t, err)
	require.NoError(t, f.InsertTupleIntoPage(pg, tup))
	require.NoError(t, f.WritePage(pg))
}

func buildStatsFile(t *testing.T) *heap.File {
	td := tuple.NewTupleDescription(
		[]types.Type{types.IntType, types.StringType},
		[]string{"age", "name"},
	)
	f, err := heap.NewFile(filepath.Join(t.TempDir(), "rows.tbl"), td)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	ages := []int32{10, 20, 30, 40, 50}
	for _, age := range ages {
		tup := tuple.NewTuple(td)
		require.NoError(t, tup.SetField(0, types.NewIntField(age)))
		require.NoError(t, tup.SetField(1, types.NewStringField("row")))
		addTupleDirect(t, f, tup)
	}
	return f
}

func TestTableStats_TotalTuplesAndCardinality(t *testing.T) {
	f := buildStatsFile(t)
	ts, err := NewTableStats(f)
	require.NoError(t, err)

	assert.Equal(t, int64(5), ts.TotalTuples())
	assert.Equal(t, int64(3), ts.EstimateCardinality(0.5+0.1))
}

func TestTableStats_EstimateScanCostIsPagesTimesCost(t *testing.T) {
	f := buildStatsFile(t)
	ts, err := NewTableStats(f)
	require.NoError(t, err)

	numPages, err := f.NumPages()
	require.NoError(t, err)

	cost, err := ts.EstimateScanCost()
	require.NoError(t, err)
	assert.Equal(t, float64(numPages)*1000.0, cost)
}

func TestTableStats_SelectivityOnIntColumn(t *testing.T) {
	f := buildStatsFile(t)
	ts, err := NewTableStats(f)
	require.NoError(t, err)

	sel := ts.EstimateSelectivity(0, primitives.GreaterThan, types.NewIntField(25))
	assert.Greater(t, sel, 0.0)
	assert.Less(t, sel, 1.0)
}

func TestTableStats_UnknownFieldDefaultsToFullSelectivity(t *testing.T) {
	f := buildStatsFile(t)
	ts, err := NewTableStats(f)
	require.NoError(t, err)

	sel := ts.EstimateSelectivity(99, primitives.Equals, types.NewIntField(1))
	assert.Equal(t, 1.0, sel)
}
