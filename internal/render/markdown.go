package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/zjrosen/gridhist/internal/gridhistory"
)

// noMarginStyle removes the document margins glamour adds by default.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Report describes a history as a markdown document: a summary line, a table
// of diffs with the current one marked, and the current grid as a code block.
func Report(name, guid string, v *gridhistory.View[string], opts Options) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", name)
	if guid != "" {
		fmt.Fprintf(&sb, "`%s` · ", guid)
	}
	fmt.Fprintf(&sb, "%dx%d grid, diff **%d** of **%d**\n\n",
		v.Width(), v.Height(), v.CurrentDiffIndex()+1, v.Len())

	if v.Len() > 0 {
		sb.WriteString("| | Diff | Changes | State | Cells |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for i, d := range v.Diffs() {
			cur := ""
			if i == v.CurrentDiffIndex() {
				cur = "→"
			}
			fmt.Fprintf(&sb, "| %s | %d | %d | %s | %s |\n", cur, i+1, d.Len(), d.State(), cellList(d))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("```\n")
	sb.WriteString(Text(v.BaseGrid(), opts))
	sb.WriteString("\n```\n")
	return sb.String()
}

func cellList(d *gridhistory.Diff[string]) string {
	const maxListed = 4
	parts := make([]string, 0, maxListed+1)
	for i, c := range d.All() {
		if i == maxListed {
			parts = append(parts, fmt.Sprintf("+%d more", d.Len()-maxListed))
			break
		}
		parts = append(parts, c.Position.String())
	}
	return strings.Join(parts, " ")
}

// Markdown renders markdown for the terminal.
type Markdown struct {
	renderer *glamour.TermRenderer
}

// NewMarkdown creates a renderer wrapping at width. With color off the
// plain "notty" style is used.
func NewMarkdown(width int, color bool) (*Markdown, error) {
	style := glamour.WithAutoStyle()
	if !color {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Markdown{renderer: r}, nil
}

// Render transforms markdown to terminal output.
func (m *Markdown) Render(markdown string) (string, error) {
	return m.renderer.Render(markdown)
}
