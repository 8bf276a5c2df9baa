package gridhistory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/gridhist/internal/grid"
)

const (
	propWidth  = 6
	propHeight = 4
)

func pointGen() *rapid.Generator[grid.Point] {
	return rapid.Custom(func(t *rapid.T) grid.Point {
		return grid.Pt(
			rapid.IntRange(0, propWidth-1).Draw(t, "x"),
			rapid.IntRange(0, propHeight-1).Draw(t, "y"),
		)
	})
}

// drawDiff builds an open diff of chained changes starting from the values in
// current, updating current as it goes.
func drawDiff(t *rapid.T, current map[grid.Point]int) *Diff[int] {
	d := NewDiff[int]()
	n := rapid.IntRange(1, 30).Draw(t, "changes")
	for i := 0; i < n; i++ {
		p := pointGen().Draw(t, "point")
		next := rapid.IntRange(0, 4).Filter(func(v int) bool { return v != current[p] }).Draw(t, "value")
		if err := d.Add(Change(p, current[p], next)); err != nil {
			t.Fatalf("add: %v", err)
		}
		current[p] = next
	}
	return d
}

// drawEdits performs random batches of writes on v, finalizing each batch.
func drawEdits(t *rapid.T, v *View[int]) {
	batches := rapid.IntRange(1, 6).Draw(t, "batches")
	for b := 0; b < batches; b++ {
		writes := rapid.IntRange(1, 12).Draw(t, "writes")
		for w := 0; w < writes; w++ {
			p := pointGen().Draw(t, "point")
			val := rapid.IntRange(0, 3).Draw(t, "value")
			if err := v.Set(p, val); err != nil {
				t.Fatalf("set: %v", err)
			}
		}
		if err := v.FinalizeCurrentDiff(); err != nil {
			t.Fatalf("finalize: %v", err)
		}
	}
}

// TestProperty_CompressIdempotent verifies compress(compress(d)) == compress(d).
func TestProperty_CompressIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := drawDiff(t, map[grid.Point]int{})
		d.Compress()
		once := d.Changes()

		again := d.Clone()
		again.dirty = true // force a second pass over the compressed list
		again.Compress()

		assert.ElementsMatch(t, once, again.Changes())
		assert.True(t, again.IsCompressed())
	})
}

// TestProperty_CompressMinimal verifies at most one change per position
// remains, each a real transition matching the diff's net effect.
func TestProperty_CompressMinimal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := map[grid.Point]int{}
		current := map[grid.Point]int{}
		d := drawDiff(t, current)
		d.Compress()

		seen := map[grid.Point]bool{}
		for _, c := range d.All() {
			assert.False(t, seen[c.Position], "duplicate position %s", c.Position)
			seen[c.Position] = true
			assert.NotEqual(t, c.OldValue, c.NewValue)
			assert.Equal(t, start[c.Position], c.OldValue)
			assert.Equal(t, current[c.Position], c.NewValue)
		}
		for p, val := range current {
			if val != start[p] {
				assert.True(t, seen[p], "changed position %s missing", p)
			}
		}
	})
}

// TestProperty_CompressPreservesEffect verifies replaying and reverting a
// compressed diff has the same effect as the raw one.
func TestProperty_CompressPreservesEffect(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := drawDiff(t, map[grid.Point]int{})
		compressed := raw.Clone()
		compressed.Compress()

		a := grid.NewArrayGrid[int](propWidth, propHeight)
		b := grid.NewArrayGrid[int](propWidth, propHeight)
		raw.applyNew(a)
		compressed.applyNew(b)
		assert.True(t, grid.Equal[int](a, b))

		raw.applyOld(a)
		compressed.applyOld(b)
		assert.True(t, grid.Equal[int](a, b))
		assert.True(t, grid.Equal[int](a, grid.NewArrayGrid[int](propWidth, propHeight)))
	})
}

// TestProperty_RoundTrip verifies reverting to the baseline and replaying
// forward reproduces the grid exactly.
func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		autoCompress := rapid.Bool().Draw(t, "autoCompress")
		v := NewArrayView[int](propWidth, propHeight, WithAutoCompress(autoCompress))
		drawEdits(t, v)

		final := grid.Snapshot[int](v)
		index := v.CurrentDiffIndex()

		require.NoError(t, v.RevertAll())
		assert.True(t, grid.Equal[int](grid.NewArrayGrid[int](propWidth, propHeight), v))

		for v.CurrentDiffIndex() < index {
			require.NoError(t, v.ApplyNextDiff())
		}
		assert.True(t, grid.Equal[int](final, v))
	})
}

// drawChain builds between 2 and 5 chain-consistent finalized diffs.
func drawChain(t *rapid.T) []*Diff[int] {
	current := map[grid.Point]int{}
	n := rapid.IntRange(2, 5).Draw(t, "diffs")
	diffs := make([]*Diff[int], n)
	for i := range diffs {
		diffs[i] = drawDiff(t, current)
		diffs[i].FinalizeChanges()
	}
	return diffs
}

// TestProperty_SetHistoryAcceptsConsistentChains verifies any consistent
// history is accepted at every cursor index.
func TestProperty_SetHistoryAcceptsConsistentChains(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		diffs := drawChain(t)
		index := rapid.IntRange(-1, len(diffs)-1).Draw(t, "index")

		v := NewArrayView[int](propWidth, propHeight)
		assert.NoError(t, v.SetHistory(diffs, index))
		assert.Equal(t, index, v.CurrentDiffIndex())
		assert.Equal(t, len(diffs), v.Len())
	})
}

// TestProperty_SetHistoryAcceptsRecordedHistories verifies histories recorded
// by a view can always be reinstalled at its own cursor.
func TestProperty_SetHistoryAcceptsRecordedHistories(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := NewArrayView[int](propWidth, propHeight)
		drawEdits(t, v)
		if v.Len() == 0 {
			return // every batch cancelled out
		}

		other := NewView[int](grid.Snapshot[int](v))
		assert.NoError(t, other.SetHistory(v.Diffs(), v.CurrentDiffIndex()))
	})
}

// TestProperty_SetHistoryRejectsBrokenChains verifies a change whose old value
// does not follow its position's previous new value is rejected regardless of
// the cursor index.
func TestProperty_SetHistoryRejectsBrokenChains(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		diffs := drawChain(t)

		// diffs[0] always touches this position, so a later change to it is constrained.
		p := diffs[0].Change(0).Position
		di := rapid.IntRange(1, len(diffs)-1).Draw(t, "diff")
		tampered := diffs[di].Clone()
		tampered.state = DiffOpen
		require.NoError(t, tampered.Add(Change(p, 100, 101)))
		diffs[di] = tampered

		index := rapid.IntRange(-1, len(diffs)-1).Draw(t, "index")
		v := NewArrayView[int](propWidth, propHeight)
		assert.ErrorIs(t, v.SetHistory(diffs, index), ErrInconsistentHistory)
		assert.Zero(t, v.Len())
	})
}
