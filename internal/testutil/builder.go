// Package testutil builds grid histories for tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
)

// Edit is one cell write.
type Edit struct {
	X, Y  int
	Value string
}

// Cell creates an Edit.
func Cell(x, y int, value string) Edit {
	return Edit{X: x, Y: y, Value: value}
}

// step is a queued builder action, run in order by Build.
type step func(t *testing.T, v *gridhistory.View[string])

// Builder accumulates edits and cursor moves and replays them onto a new view.
type Builder struct {
	t      *testing.T
	width  int
	height int
	cfg    historyConfig
	steps  []step
}

// NewBuilder creates a builder for a width x height string grid.
func NewBuilder(t *testing.T, width, height int, opts ...Option) *Builder {
	t.Helper()
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Builder{t: t, width: width, height: height, cfg: cfg}
}

// WithDiff records the edits as one finalized diff.
func (b *Builder) WithDiff(edits ...Edit) *Builder {
	b.steps = append(b.steps, func(t *testing.T, v *gridhistory.View[string]) {
		t.Helper()
		for _, e := range edits {
			require.NoError(t, v.SetXY(e.X, e.Y, e.Value))
		}
		require.NoError(t, v.FinalizeCurrentDiff())
	})
	return b
}

// WithOpenDiff records the edits without finalizing them.
func (b *Builder) WithOpenDiff(edits ...Edit) *Builder {
	b.steps = append(b.steps, func(t *testing.T, v *gridhistory.View[string]) {
		t.Helper()
		for _, e := range edits {
			require.NoError(t, v.SetXY(e.X, e.Y, e.Value))
		}
	})
	return b
}

// Reverted reverts n diffs.
func (b *Builder) Reverted(n int) *Builder {
	b.steps = append(b.steps, func(t *testing.T, v *gridhistory.View[string]) {
		t.Helper()
		for range n {
			require.NoError(t, v.RevertToPreviousDiff())
		}
	})
	return b
}

// Build replays every step onto a fresh view.
func (b *Builder) Build() *gridhistory.View[string] {
	b.t.Helper()
	base := grid.NewArrayGrid[string](b.width, b.height)
	if b.cfg.fill != "" {
		for p := range base.Positions() {
			base.Set(p, b.cfg.fill)
		}
	}
	v := gridhistory.NewView[string](base, b.cfg.viewOptions()...)
	for _, s := range b.steps {
		s(b.t, v)
	}
	return v
}
