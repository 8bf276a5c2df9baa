package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ChangedColor = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"}
	MutedColor   = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#696969"}
	AddedColor   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	RemovedColor = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}

	// ChangedStyle marks cells written by the current diff.
	ChangedStyle = lipgloss.NewStyle().Bold(true).Foreground(ChangedColor)
	MutedStyle   = lipgloss.NewStyle().Foreground(MutedColor)
	AddedStyle   = lipgloss.NewStyle().Foreground(AddedColor)
	RemovedStyle = lipgloss.NewStyle().Foreground(RemovedColor)
)

// ColorLineDiff styles the output of LineDiff.
func ColorLineDiff(diff string) string {
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+ "):
			lines[i] = AddedStyle.Render(line)
		case strings.HasPrefix(line, "- "):
			lines[i] = RemovedStyle.Render(line)
		default:
			lines[i] = MutedStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
