package gridhistory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridhist/internal/grid"
)

// TestNewDiff verifies a new diff is empty, vacuously compressed and open.
func TestNewDiff(t *testing.T) {
	d := NewDiff[bool]()

	require.Zero(t, d.Len())
	require.Empty(t, d.Changes())
	require.True(t, d.IsCompressed())
	require.False(t, d.IsFinalized())
	require.Equal(t, DiffOpen, d.State())

	var zero Diff[bool]
	require.True(t, zero.IsCompressed(), "zero value should behave like NewDiff")
	require.False(t, zero.IsFinalized())
}

func TestDiffState_String(t *testing.T) {
	require.Equal(t, "open", DiffOpen.String())
	require.Equal(t, "finalized", DiffFinalized.String())
	require.Equal(t, "unknown", DiffState(7).String())
}

// TestDiff_Add verifies changes are appended in order, including repeated
// changes to the same position, and that Add enforces its preconditions.
func TestDiff_Add(t *testing.T) {
	d := NewDiff[bool]()

	change1 := Change(grid.Pt(1, 2), false, true)
	require.NoError(t, d.Add(change1))
	require.False(t, d.IsCompressed())
	require.Equal(t, 1, d.Len())
	require.Equal(t, change1, d.Change(0))
	require.False(t, d.IsFinalized())

	change2 := Change(grid.Pt(1, 2), false, true)
	require.NoError(t, d.Add(change2))
	require.False(t, d.IsCompressed())
	require.Equal(t, 2, d.Len())
	require.Equal(t, change2, d.Change(1))

	err := d.Add(Change(grid.Pt(1, 2), false, false))
	require.ErrorIs(t, err, ErrNoOpChange)
	require.Equal(t, 2, d.Len(), "rejected change must not be recorded")

	d.FinalizeChanges()
	require.True(t, d.IsFinalized())
	require.Equal(t, DiffFinalized, d.State())

	err = d.Add(Change(grid.Pt(1, 3), false, true))
	require.ErrorIs(t, err, ErrInvalidState)
	require.Equal(t, 2, d.Len())
}

// TestDiff_CompressionBasic walks through compressions that keep, cancel and
// merge changes.
func TestDiff_CompressionBasic(t *testing.T) {
	d := NewDiff[int]()
	initial1 := Change(grid.Pt(1, 2), 0, 1)
	initial2 := Change(grid.Pt(5, 6), 0, 1)
	require.NoError(t, d.Add(initial1))
	require.NoError(t, d.Add(initial2))
	require.Equal(t, 2, d.Len())
	require.False(t, d.IsCompressed())

	// Different positions: nothing to merge, but the diff is now known-minimal.
	d.Compress()
	require.Equal(t, 2, d.Len())
	require.True(t, d.IsCompressed())

	// Offsetting change removes the position entirely.
	back := Change(grid.Pt(1, 2), 1, 0)
	require.NoError(t, d.Add(back))
	require.Equal(t, 3, d.Len())
	require.False(t, d.IsCompressed())

	d.Compress()
	require.Equal(t, 1, d.Len())
	require.True(t, d.IsCompressed())
	require.Equal(t, initial2, d.Change(0))

	// Two offsetting changes, a unique one and a final one for the first position.
	unique := Change(grid.Pt(20, 20), 0, 1)
	last := Change(grid.Pt(1, 2), 0, 2)
	require.NoError(t, d.Add(initial1))
	require.NoError(t, d.Add(unique))
	require.NoError(t, d.Add(back))
	require.NoError(t, d.Add(last))
	require.Equal(t, 5, d.Len())
	require.False(t, d.IsCompressed())

	d.Compress()
	require.True(t, d.IsCompressed())
	require.ElementsMatch(t, []ValueChange[int]{initial2, unique, last}, d.Changes())
}

// TestDiff_CompressManyWritesToOnePosition verifies 100 writes to one position
// collapse to a single change from the first old value to the last new one.
func TestDiff_CompressManyWritesToOnePosition(t *testing.T) {
	d := NewDiff[int]()
	p := grid.Pt(5, 6)

	current := 0
	for i := 1; i <= 100; i++ {
		next := (i*7)%13 + 1
		if next == current {
			next++
		}
		require.NoError(t, d.Add(Change(p, current, next)))
		current = next
	}
	require.Equal(t, 100, d.Len())

	d.Compress()
	require.Equal(t, []ValueChange[int]{Change(p, 0, current)}, d.Changes())
}

func TestDiff_CompressFinalizedIsNoOp(t *testing.T) {
	d := NewDiff[int]()
	require.NoError(t, d.Add(Change(grid.Pt(0, 0), 0, 1)))
	require.NoError(t, d.Add(Change(grid.Pt(0, 0), 1, 0)))
	d.FinalizeChanges()

	d.Compress()
	require.Equal(t, 2, d.Len(), "finalized change sets are immutable")
	require.False(t, d.IsCompressed())
}

func TestDiff_CloneIsIndependent(t *testing.T) {
	d := NewDiff[string]()
	require.NoError(t, d.Add(Change(grid.Pt(0, 0), "", "a")))

	c := d.Clone()
	require.NoError(t, c.Add(Change(grid.Pt(0, 0), "a", "b")))
	c.FinalizeChanges()

	require.Equal(t, 1, d.Len())
	require.False(t, d.IsFinalized())
	require.Equal(t, 2, c.Len())
	require.True(t, c.IsFinalized())
}

func TestDiff_ChangesReturnsCopy(t *testing.T) {
	d := NewDiff[int]()
	require.NoError(t, d.Add(Change(grid.Pt(0, 0), 0, 1)))

	changes := d.Changes()
	changes[0].NewValue = 99
	require.Equal(t, 1, d.Change(0).NewValue)
}

func TestNewFinalizedDiff(t *testing.T) {
	d, err := NewFinalizedDiff(Change(grid.Pt(0, 0), 0, 1), Change(grid.Pt(1, 0), 0, 2))
	require.NoError(t, err)
	require.True(t, d.IsFinalized())
	require.Equal(t, 2, d.Len())

	_, err = NewFinalizedDiff(Change(grid.Pt(0, 0), 0, 1), Change(grid.Pt(1, 0), 3, 3))
	require.ErrorIs(t, err, ErrNoOpChange)
	require.Contains(t, err.Error(), "change 1")
}

func TestDiff_All(t *testing.T) {
	d := NewDiff[int]()
	require.NoError(t, d.Add(Change(grid.Pt(0, 0), 0, 1)))
	require.NoError(t, d.Add(Change(grid.Pt(0, 1), 0, 2)))

	var got []ValueChange[int]
	for i, c := range d.All() {
		require.Equal(t, len(got), i)
		got = append(got, c)
	}
	require.Equal(t, d.Changes(), got)
}

// TestDiff_ApplyOldUndoesRepeatedWrites checks that reverting an uncompressed
// diff walks its changes backwards to the pre-diff value.
func TestDiff_ApplyOldUndoesRepeatedWrites(t *testing.T) {
	g := grid.NewArrayGrid[int](2, 1)
	g.Set(grid.Pt(0, 0), 7)

	d := NewDiff[int]()
	require.NoError(t, d.Add(Change(grid.Pt(0, 0), 7, 1)))
	require.NoError(t, d.Add(Change(grid.Pt(1, 0), 0, 5)))
	require.NoError(t, d.Add(Change(grid.Pt(0, 0), 1, 2)))

	d.applyNew(g)
	require.Equal(t, 2, g.Get(grid.Pt(0, 0)))
	require.Equal(t, 5, g.Get(grid.Pt(1, 0)))

	d.applyOld(g)
	require.Equal(t, 7, g.Get(grid.Pt(0, 0)))
	require.Zero(t, g.Get(grid.Pt(1, 0)))
}
