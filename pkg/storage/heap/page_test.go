package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tinybase/pkg/storage/page"
	"tinybase/pkg/tuple"
	"tinybase/pkg/types"
)

func withSmallPageSize(t *testing.T, size int) {
	orig := page.Size
	page.Size = size
	t.Cleanup(func() { page.Size = orig })
}

func intOnlyDesc() *tuple.TupleDescription {
	return tuple.NewTupleDescription([]types.Type{types.IntType}, []string{"n"})
}

func TestHeapPage_InsertAndParseRoundTrip(t *testing.T) {
	withSmallPageSize(t, 64)
	td := intOnlyDesc()
	pid := NewPageID(1, 0)

	p := NewEmptyPage(pid, td)
	require.Greater(t, p.NumSlots(), 0)

	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(7)))
	require.NoError(t, p.InsertTuple(tup))

	data := p.Data()
	reloaded, err := NewPageFromBytes(pid, td, data)
	require.NoError(t, err)

	got := reloaded.GetTuples()
	require.Len(t, got, 1)
	f, err := got[0].GetField(0)
	require.NoError(t, err)
	assert.Equal(t, "7", f.String())
}

func TestHeapPage_InsertFailsWhenFull(t *testing.T) {
	withSmallPageSize(t, 64)
	td := intOnlyDesc()
	p := NewEmptyPage(NewPageID(1, 0), td)

	for p.EmptySlots() > 0 {
		tup := tuple.NewTuple(td)
		require.NoError(t, tup.SetField(0, types.NewIntField(1)))
		require.NoError(t, p.InsertTuple(tup))
	}

	overflow := tuple.NewTuple(td)
	require.NoError(t, overflow.SetField(0, types.NewIntField(1)))
	assert.Error(t, p.InsertTuple(overflow))
}

func TestHeapPage_DeleteTuple(t *testing.T) {
	withSmallPageSize(t, 64)
	td := intOnlyDesc()
	p := NewEmptyPage(NewPageID(1, 0), td)

	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(9)))
	require.NoError(t, p.InsertTuple(tup))

	require.NoError(t, p.DeleteTuple(tup))
	assert.Equal(t, p.NumSlots(), p.EmptySlots())

	assert.Error(t, p.DeleteTuple(tup))
}

func TestHeapPage_BeforeImageSnapshotsPriorState(t *testing.T) {
	withSmallPageSize(t, 64)
	td := intOnlyDesc()
	p := NewEmptyPage(NewPageID(1, 0), td)

	before := p.BeforeImage()
	assert.Equal(t, 0, len(before.(*HeapPage).GetTuples()))

	tup := tuple.NewTuple(td)
	require.NoError(t, tup.SetField(0, types.NewIntField(3)))
	require.NoError(t, p.InsertTuple(tup))

	// BeforeImage still reflects the empty snapshot until SetBeforeImage runs.
	stale := p.BeforeImage()
	assert.Equal(t, 0, len(stale.(*HeapPage).GetTuples()))

	p.SetBeforeImage()
	fresh := p.BeforeImage()
	assert.Equal(t, 1, len(fresh.(*HeapPage).GetTuples()))
}
