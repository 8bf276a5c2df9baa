package grid

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayGrid_GetSet(t *testing.T) {
	g := NewArrayGrid[int](3, 2)
	require.Equal(t, 3, g.Width())
	require.Equal(t, 2, g.Height())
	require.Zero(t, g.Get(Pt(2, 1)))

	g.Set(Pt(2, 1), 7)
	require.Equal(t, 7, g.Get(Pt(2, 1)))
	require.Equal(t, []int{0, 0, 0, 0, 0, 7}, g.Cells())
}

func TestArrayGrid_OutOfBoundsPanics(t *testing.T) {
	g := NewArrayGrid[int](3, 2)
	require.False(t, g.Contains(Pt(3, 0)))
	require.False(t, g.Contains(Pt(0, -1)))
	require.Panics(t, func() { g.Get(Pt(3, 0)) })
	require.Panics(t, func() { g.Set(Pt(0, 2), 1) })
}

func TestPositions_RowMajor(t *testing.T) {
	got := slices.Collect(Positions(2, 2))
	require.Equal(t, []Point{Pt(0, 0), Pt(1, 0), Pt(0, 1), Pt(1, 1)}, got)

	// Early break must stop iteration.
	count := 0
	for range NewArrayGrid[int](10, 10).Positions() {
		count++
		if count == 5 {
			break
		}
	}
	require.Equal(t, 5, count)
}

func TestNewArrayGridFrom(t *testing.T) {
	cells := []string{"a", "b", "c", "d"}
	g, err := NewArrayGridFrom(2, 2, cells)
	require.NoError(t, err)
	require.Equal(t, "c", g.Get(Pt(0, 1)))

	cells[0] = "z"
	require.Equal(t, "a", g.Get(Pt(0, 0)), "cells must be copied")

	_, err = NewArrayGridFrom(3, 2, cells)
	require.ErrorIs(t, err, ErrSizeMismatch)
}

func TestApplyOverlayAndEqual(t *testing.T) {
	src := NewArrayGrid[int](2, 2)
	src.Set(Pt(1, 1), 4)
	dst := NewArrayGrid[int](2, 2)

	require.False(t, Equal[int](src, dst))
	require.NoError(t, ApplyOverlay[int](dst, src))
	require.True(t, Equal[int](src, dst))

	require.ErrorIs(t, ApplyOverlay[int](NewArrayGrid[int](3, 2), src), ErrSizeMismatch)
	require.False(t, Equal[int](src, NewArrayGrid[int](2, 3)))
}

func TestSnapshotIsIndependent(t *testing.T) {
	g := NewArrayGrid[int](2, 1)
	g.Set(Pt(0, 0), 1)
	snap := Snapshot[int](g)
	g.Set(Pt(0, 0), 2)
	require.Equal(t, 1, snap.Get(Pt(0, 0)))
}

func TestPoint_String(t *testing.T) {
	require.Equal(t, "(3,-4)", Pt(3, -4).String())
}
