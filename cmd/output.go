package cmd

import (
	"fmt"
	"io"

	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/render"
	"github.com/zjrosen/gridhist/internal/store"
)

// printState writes the history header and its current grid.
func printState(w io.Writer, s *session, rec *store.Record[string], v *gridhistory.View[string]) {
	fmt.Fprintf(w, "%s (%s) diff %d/%d\n", rec.Name, rec.GUID, v.CurrentDiffIndex()+1, v.Len())
	fmt.Fprintln(w, renderView(s, v))
}

// renderView draws the current grid, highlighting the current diff's cells when color is on.
func renderView(s *session, v *gridhistory.View[string]) string {
	opts := s.renderOptions()
	if s.cfg.Render.Color && v.CurrentDiffIndex() >= 0 {
		touched := render.Touched(v.Diffs()[v.CurrentDiffIndex()])
		return render.Styled(v.BaseGrid(), opts, touched, render.ChangedStyle)
	}
	return render.Text(v.BaseGrid(), opts)
}
