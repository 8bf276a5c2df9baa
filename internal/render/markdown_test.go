package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/testutil"
)

func reportView(t *testing.T) *gridhistory.View[string] {
	t.Helper()
	return testutil.NewBuilder(t, 3, 1).
		WithDiff(testutil.Cell(0, 0, "a")).
		WithDiff(testutil.Cell(0, 0, "z"), testutil.Cell(1, 0, "z"), testutil.Cell(2, 0, "z")).
		Reverted(1).
		Build()
}

func TestReport(t *testing.T) {
	md := Report("board", "1234", reportView(t), DefaultOptions())

	require.True(t, strings.HasPrefix(md, "# board\n"))
	require.Contains(t, md, "`1234` · 3x1 grid, diff **1** of **2**")
	require.Contains(t, md, "| → | 1 | 1 | finalized | (0,0) |")
	require.Contains(t, md, "|  | 2 | 3 | finalized |")
	require.Contains(t, md, "```\na..\n```")
}

func TestReport_EmptyHistoryHasNoTable(t *testing.T) {
	v := gridhistory.NewArrayView[string](2, 1)
	md := Report("empty", "", v, DefaultOptions())

	require.NotContains(t, md, "| Diff |")
	require.Contains(t, md, "2x1 grid, diff **0** of **0**")
}

func TestCellList_Truncates(t *testing.T) {
	d := gridhistory.NewDiff[string]()
	for x := range 6 {
		require.NoError(t, d.Add(gridhistory.Change(grid.Pt(x, 0), "", "x")))
	}
	require.Equal(t, "(0,0) (1,0) (2,0) (3,0) +2 more", cellList(d))
}

func TestMarkdown_RenderPlain(t *testing.T) {
	md, err := NewMarkdown(60, false)
	require.NoError(t, err)

	out, err := md.Render(Report("board", "", reportView(t), DefaultOptions()))
	require.NoError(t, err)
	out = ansi.Strip(out)
	require.Contains(t, out, "board")
	require.Contains(t, out, "finalized")
	require.Contains(t, out, "a..")
}
