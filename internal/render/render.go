// Package render draws string grids as text.
package render

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
)

// Options controls grid rendering.
type Options struct {
	EmptyGlyph      string // drawn for cells holding ""
	ShowCoordinates bool
}

// DefaultOptions returns the rendering used when no config is loaded.
func DefaultOptions() Options {
	return Options{EmptyGlyph: "."}
}

// Text renders g one row per line with no styling.
func Text(g grid.ReadOnly[string], opts Options) string {
	return draw(g, opts, nil, lipgloss.Style{})
}

// Styled renders g with the cells in highlight drawn in style.
func Styled(g grid.ReadOnly[string], opts Options, highlight map[grid.Point]bool, style lipgloss.Style) string {
	return draw(g, opts, highlight, style)
}

// Touched returns the positions written by d.
func Touched(d *gridhistory.Diff[string]) map[grid.Point]bool {
	out := make(map[grid.Point]bool, d.Len())
	for _, c := range d.All() {
		out[c.Position] = true
	}
	return out
}

func glyph(v string, opts Options) string {
	if v == "" {
		return opts.EmptyGlyph
	}
	return v
}

func cellWidth(g grid.ReadOnly[string], opts Options) int {
	w := 1
	for p := range g.Positions() {
		w = max(w, runewidth.StringWidth(glyph(g.Get(p), opts)))
	}
	if opts.ShowCoordinates {
		w = max(w, len(strconv.Itoa(g.Width()-1)))
	}
	return w
}

func draw(g grid.ReadOnly[string], opts Options, highlight map[grid.Point]bool, style lipgloss.Style) string {
	width := cellWidth(g, opts)
	sep := ""
	if width > 1 {
		sep = " "
	}
	gutter := len(strconv.Itoa(max(g.Height()-1, 0)))

	var sb strings.Builder
	if opts.ShowCoordinates {
		sb.WriteString(strings.Repeat(" ", gutter+1))
		for x := range g.Width() {
			if x > 0 {
				sb.WriteString(sep)
			}
			label := strconv.Itoa(x)
			if width == 1 {
				label = label[len(label)-1:]
			}
			sb.WriteString(runewidth.FillRight(label, width))
		}
		sb.WriteString("\n")
	}

	for y := range g.Height() {
		if opts.ShowCoordinates {
			sb.WriteString(runewidth.FillLeft(strconv.Itoa(y), gutter))
			sb.WriteString(" ")
		}
		for x := range g.Width() {
			if x > 0 {
				sb.WriteString(sep)
			}
			p := grid.Pt(x, y)
			cell := runewidth.FillRight(glyph(g.Get(p), opts), width)
			if highlight[p] {
				cell = style.Render(cell)
			}
			sb.WriteString(cell)
		}
		if y < g.Height()-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
