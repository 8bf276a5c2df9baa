package gridhistory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridhist/internal/grid"
)

var equivalencyCases = []ValueChange[int]{
	Change(grid.Pt(1, 2), 1, 2),
	Change(grid.Pt(1, 2), 1, 3),
	Change(grid.Pt(1, 2), 3, 2),
	Change(grid.Pt(2, 3), 1, 2),
}

func TestValueChange_Construction(t *testing.T) {
	c := Change(grid.Pt(1, 2), 1, 2)
	require.Equal(t, grid.Pt(1, 2), c.Position)
	require.Equal(t, 1, c.OldValue)
	require.Equal(t, 2, c.NewValue)
}

// TestValueChange_Equivalency verifies that == and Matches agree for every pair of cases.
func TestValueChange_Equivalency(t *testing.T) {
	same := ValueChange[int]{Position: grid.Point{X: 1, Y: 2}, OldValue: 1, NewValue: 2}
	require.True(t, same == equivalencyCases[0])
	require.True(t, same.Matches(equivalencyCases[0]))
	require.True(t, equivalencyCases[0].Matches(same))

	for i, a := range equivalencyCases {
		for j, b := range equivalencyCases {
			require.Equal(t, i == j, a == b, "cases %d and %d", i, j)
			require.Equal(t, a == b, a.Matches(b), "cases %d and %d", i, j)
			require.Equal(t, a != b, b != a, "cases %d and %d", i, j)
		}
	}
}

func TestValueChange_InverseAndNoOp(t *testing.T) {
	c := Change(grid.Pt(4, 5), "a", "b")
	inv := c.Inverse()
	require.Equal(t, Change(grid.Pt(4, 5), "b", "a"), inv)
	require.Equal(t, c, inv.Inverse())

	require.False(t, c.IsNoOp())
	require.True(t, Change(grid.Pt(0, 0), "x", "x").IsNoOp())
}

func TestValueChange_String(t *testing.T) {
	require.Equal(t, "(1,2): false -> true", Change(grid.Pt(1, 2), false, true).String())
}
