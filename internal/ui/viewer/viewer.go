// Package viewer is an interactive stepper over a grid history.
package viewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/keys"
	"github.com/zjrosen/gridhist/internal/log"
	"github.com/zjrosen/gridhist/internal/render"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle = render.MutedStyle
	errorStyle  = lipgloss.NewStyle().Foreground(render.RemovedColor)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(render.MutedColor).Padding(0, 1)
	buttonStyle = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.NormalBorder(), false, true).BorderForeground(render.MutedColor)
)

// Clickable controls. Requires zone.NewGlobal() before the program starts.
const (
	zoneFirst  = "viewer-first"
	zoneRevert = "viewer-revert"
	zoneApply  = "viewer-apply"
	zoneLast   = "viewer-last"
)

// Model steps a string history backwards and forwards.
type Model struct {
	view  *gridhistory.View[string]
	title string
	opts  render.Options
	keys  keys.KeyMap
	help  help.Model

	showDiff bool
	previous string // plain rendering before the last step
	err      error
	moved    bool
	width    int
}

// New creates a viewer over v.
func New(title string, v *gridhistory.View[string], opts render.Options) Model {
	return Model{
		view:     v,
		title:    title,
		opts:     opts,
		keys:     keys.DefaultKeyMap(),
		help:     help.New(),
		previous: render.Text(v.BaseGrid(), opts),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.MouseMsg:
		if msg.Button != tea.MouseButtonLeft || msg.Action != tea.MouseActionRelease {
			return m, nil
		}
		switch {
		case inZone(zoneRevert, msg):
			m = m.step(m.view.RevertToPreviousDiff)
		case inZone(zoneApply, msg):
			m = m.step(m.view.ApplyNextDiff)
		case inZone(zoneFirst, msg):
			m = m.step(m.view.RevertAll)
		case inZone(zoneLast, msg):
			m = m.step(m.view.ApplyAll)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.ToggleDiff):
			m.showDiff = !m.showDiff
			return m, nil
		case key.Matches(msg, m.keys.Revert):
			m = m.step(m.view.RevertToPreviousDiff)
		case key.Matches(msg, m.keys.Apply):
			m = m.step(m.view.ApplyNextDiff)
		case key.Matches(msg, m.keys.First):
			m = m.step(m.view.RevertAll)
		case key.Matches(msg, m.keys.Last):
			m = m.step(m.view.ApplyAll)
		case key.Matches(msg, m.keys.Finalize):
			m = m.step(m.view.FinalizeCurrentDiff)
		}
	}
	return m, nil
}

func inZone(id string, msg tea.MouseMsg) bool {
	z := zone.Get(id)
	return z != nil && z.InBounds(msg)
}

func (m Model) step(fn func() error) Model {
	before := render.Text(m.view.BaseGrid(), m.opts)
	cursor := m.view.CurrentDiffIndex()
	if err := fn(); err != nil {
		log.Debug(log.CatUI, "Step rejected", "error", err)
		m.err = err
		return m
	}
	m.err = nil
	if m.view.CurrentDiffIndex() != cursor {
		m.moved = true
		m.previous = before
	}
	return m
}

// Moved reports whether the cursor was moved at least once.
func (m Model) Moved() bool {
	return m.moved
}

// History returns the underlying view.
func (m Model) History() *gridhistory.View[string] {
	return m.view
}

func (m Model) highlight() map[grid.Point]bool {
	i := m.view.CurrentDiffIndex()
	if i < 0 {
		return nil
	}
	return render.Touched(m.view.Diffs()[i])
}

func (m Model) status() string {
	state := "base"
	if i := m.view.CurrentDiffIndex(); i >= 0 {
		d := m.view.Diffs()[i]
		state = fmt.Sprintf("%d change(s), %s", d.Len(), d.State())
	}
	return fmt.Sprintf("diff %d/%d · %s", m.view.CurrentDiffIndex()+1, m.view.Len(), state)
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(m.status()))
	sb.WriteString("\n")

	sb.WriteString(boxStyle.Render(render.Styled(m.view.BaseGrid(), m.opts, m.highlight(), render.ChangedStyle)))
	sb.WriteString("\n")
	sb.WriteString(m.controls())
	sb.WriteString("\n")

	if m.showDiff {
		current := render.Text(m.view.BaseGrid(), m.opts)
		sb.WriteString(render.ColorLineDiff(render.LineDiff(m.previous, current)))
		sb.WriteString("\n")
	}
	if m.err != nil {
		msg := m.err.Error()
		if m.width > 0 {
			msg = wordwrap.String(msg, m.width)
		}
		sb.WriteString(errorStyle.Render(msg))
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(m.keys))
	return zone.Scan(sb.String())
}

func (m Model) controls() string {
	button := func(id, label string, enabled bool) string {
		style := buttonStyle
		if !enabled {
			style = style.Foreground(render.MutedColor)
		}
		return zone.Mark(id, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		button(zoneFirst, "|<", m.view.CanRevert()),
		button(zoneRevert, "< undo", m.view.CanRevert()),
		button(zoneApply, "redo >", m.view.CanApplyNext()),
		button(zoneLast, ">|", m.view.CanApplyNext()),
	)
}
