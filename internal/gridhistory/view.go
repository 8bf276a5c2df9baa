package gridhistory

import (
	"fmt"
	"iter"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/log"
)

// Option configures a View.
type Option func(*viewOptions)

type viewOptions struct {
	autoCompress bool
	observer     Observer
}

// WithAutoCompress controls whether diffs are compressed when they are
// finalized or when an open diff is reverted. Enabled by default.
func WithAutoCompress(enabled bool) Option {
	return func(o *viewOptions) {
		o.autoCompress = enabled
	}
}

// WithObserver registers fn to be called after every history transition.
func WithObserver(fn Observer) Option {
	return func(o *viewOptions) {
		o.observer = fn
	}
}

// View wraps a grid and records every write as part of a linear history of
// diffs that can be reverted and replayed.
//
// The cursor works as follows:
//   - -1 means the grid is at its baseline (nothing to revert)
//   - 0 to len(diffs)-1 points to the last applied diff
//   - only the last diff may be open, and only while the cursor is on it
//
// The base grid always holds the baseline with diffs[0..cursor] applied.
type View[T comparable] struct {
	base         grid.Grid[T]
	diffs        []*Diff[T]
	current      int
	autoCompress bool
	observer     Observer
}

// NewView wraps base. Its current contents become the baseline.
func NewView[T comparable](base grid.Grid[T], opts ...Option) *View[T] {
	o := viewOptions{autoCompress: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &View[T]{
		base:         base,
		current:      -1,
		autoCompress: o.autoCompress,
		observer:     o.observer,
	}
}

// NewArrayView creates a view over a new width x height ArrayGrid.
func NewArrayView[T comparable](width, height int, opts ...Option) *View[T] {
	return NewView[T](grid.NewArrayGrid[T](width, height), opts...)
}

// BaseGrid returns the wrapped grid. Writing to it directly bypasses the
// history and breaks the view's replay guarantees.
func (v *View[T]) BaseGrid() grid.Grid[T] { return v.base }

func (v *View[T]) Width() int  { return v.base.Width() }
func (v *View[T]) Height() int { return v.base.Height() }

// Positions yields every position of the grid.
func (v *View[T]) Positions() iter.Seq[grid.Point] { return v.base.Positions() }

// AutoCompress reports whether diffs are compressed automatically.
func (v *View[T]) AutoCompress() bool { return v.autoCompress }

// CurrentDiffIndex returns the index of the last applied diff, or -1.
func (v *View[T]) CurrentDiffIndex() int { return v.current }

// Len returns the number of recorded diffs.
func (v *View[T]) Len() int { return len(v.diffs) }

// Diffs returns the recorded history. Finalized diffs are immutable and are
// shared with the view; an open head diff is returned as a copy.
func (v *View[T]) Diffs() []*Diff[T] {
	out := make([]*Diff[T], len(v.diffs))
	for i, d := range v.diffs {
		if d.IsFinalized() {
			out[i] = d
		} else {
			out[i] = d.Clone()
		}
	}
	return out
}

// Get returns the current value at p.
func (v *View[T]) Get(p grid.Point) T {
	return v.base.Get(p)
}

// GetXY returns the current value at (x, y).
func (v *View[T]) GetXY(x, y int) T {
	return v.base.Get(grid.Pt(x, y))
}

// Set writes value at p and records the change in the open head diff,
// starting a new diff if the head is finalized or there is none.
// Writing a value equal to the current one still opens the diff but adds no
// change; an open diff left empty is discarded when it is finalized or reverted.
// Returns ErrInvalidState if the cursor is behind the head.
func (v *View[T]) Set(p grid.Point, value T) error {
	if !v.atHead() {
		return fmt.Errorf("%w: cannot write at %s while diff %d of %d is current",
			ErrInvalidState, p, v.current, len(v.diffs))
	}

	if len(v.diffs) == 0 || v.head().IsFinalized() {
		v.diffs = append(v.diffs, NewDiff[T]())
		v.current = len(v.diffs) - 1
		log.Debug(log.CatHistory, "opened diff", "index", v.current)
	}

	old := v.base.Get(p)
	v.base.Set(p, value)
	if old == value {
		return nil
	}

	head := v.head()
	if err := head.Add(Change(p, old, value)); err != nil {
		// Unreachable: head is open and old != value.
		v.base.Set(p, old)
		return err
	}
	v.emit(EventRecorded, head.Len())
	return nil
}

// SetXY writes value at (x, y). See Set.
func (v *View[T]) SetXY(x, y int, value T) error {
	return v.Set(grid.Pt(x, y), value)
}

// FinalizeCurrentDiff seals the open head diff so the next write starts a new
// one. With auto-compression the diff is compressed first; a diff left with no
// changes is discarded. No-op when there is no history or the head is already
// finalized. Returns ErrInvalidState if the cursor is behind the head.
func (v *View[T]) FinalizeCurrentDiff() error {
	if len(v.diffs) == 0 {
		return nil
	}
	if !v.atHead() {
		return fmt.Errorf("%w: cannot finalize while diff %d of %d is current",
			ErrInvalidState, v.current, len(v.diffs))
	}

	head := v.head()
	if head.IsFinalized() {
		return nil
	}
	if v.autoCompress {
		head.Compress()
	}
	if head.Len() == 0 {
		v.dropHead()
		return nil
	}

	head.FinalizeChanges()
	log.Debug(log.CatHistory, "finalized diff", "index", v.current, "changes", head.Len())
	v.emit(EventFinalized, head.Len())
	return nil
}

// RevertToPreviousDiff undoes the current diff and moves the cursor back one.
// An open head diff is compressed (with auto-compression) and discarded if
// empty; otherwise it is finalized and kept so it can be replayed.
// Returns ErrInvalidState if the cursor is already at the baseline.
func (v *View[T]) RevertToPreviousDiff() error {
	if v.current < 0 {
		return fmt.Errorf("%w: no diff to revert", ErrInvalidState)
	}

	d := v.diffs[v.current]
	if !d.IsFinalized() {
		if v.autoCompress {
			d.Compress()
		}
		if d.Len() == 0 {
			v.dropHead()
			return nil
		}
		d.FinalizeChanges()
	}

	d.applyOld(v.base)
	v.current--
	log.Debug(log.CatHistory, "reverted diff", "index", v.current+1, "changes", d.Len())
	v.emit(EventReverted, d.Len())
	return nil
}

// ApplyNextDiff replays the diff after the cursor and moves the cursor forward.
// Returns ErrInvalidState if the cursor is at the head.
func (v *View[T]) ApplyNextDiff() error {
	if v.atHead() {
		return fmt.Errorf("%w: no diff to apply after %d", ErrInvalidState, v.current)
	}

	d := v.diffs[v.current+1]
	d.applyNew(v.base)
	v.current++
	log.Debug(log.CatHistory, "applied diff", "index", v.current, "changes", d.Len())
	v.emit(EventApplied, d.Len())
	return nil
}

// ApplyNextDiffOrFinalize applies the next diff and returns true if there is
// one; otherwise it finalizes the head diff and returns false.
func (v *View[T]) ApplyNextDiffOrFinalize() (bool, error) {
	if v.CanApplyNext() {
		return true, v.ApplyNextDiff()
	}
	return false, v.FinalizeCurrentDiff()
}

// CanRevert returns true if there is a diff to revert.
func (v *View[T]) CanRevert() bool {
	return v.current >= 0
}

// CanApplyNext returns true if there is a diff after the cursor.
func (v *View[T]) CanApplyNext() bool {
	return !v.atHead()
}

// RevertAll reverts until the cursor reaches the baseline.
func (v *View[T]) RevertAll() error {
	for v.CanRevert() {
		if err := v.RevertToPreviousDiff(); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll replays every diff after the cursor.
func (v *View[T]) ApplyAll() error {
	for v.CanApplyNext() {
		if err := v.ApplyNextDiff(); err != nil {
			return err
		}
	}
	return nil
}

// SetBaseline copies every value of baseline into the grid. It is only
// allowed while there is no history at all, committed or not.
// Returns ErrSizeMismatch if the dimensions differ and ErrInvalidState if
// any diff exists.
func (v *View[T]) SetBaseline(baseline grid.ReadOnly[T]) error {
	if !grid.SameSize[T, T](v.base, baseline) {
		return fmt.Errorf("%w: baseline is %dx%d, view is %dx%d",
			ErrSizeMismatch, baseline.Width(), baseline.Height(), v.Width(), v.Height())
	}
	if len(v.diffs) > 0 {
		return fmt.Errorf("%w: cannot set baseline with %d recorded diffs", ErrInvalidState, len(v.diffs))
	}
	if err := grid.ApplyOverlay(v.base, baseline); err != nil {
		return err
	}
	v.emit(EventBaselineSet, 0)
	return nil
}

// ClearHistory discards every diff. The grid keeps its current contents,
// which become the new baseline.
func (v *View[T]) ClearHistory() {
	dropped := len(v.diffs)
	v.diffs = nil
	v.current = -1
	log.Debug(log.CatHistory, "cleared history", "dropped", dropped)
	v.emit(EventCleared, 0)
}

func (v *View[T]) atHead() bool {
	return v.current == len(v.diffs)-1
}

func (v *View[T]) head() *Diff[T] {
	return v.diffs[len(v.diffs)-1]
}

// dropHead discards the head diff, which must be the current one.
func (v *View[T]) dropHead() {
	v.diffs[len(v.diffs)-1] = nil
	v.diffs = v.diffs[:len(v.diffs)-1]
	v.current--
	log.Debug(log.CatHistory, "pruned empty diff", "index", v.current+1)
	v.emit(EventPruned, 0)
}

func (v *View[T]) emit(t EventType, changes int) {
	if v.observer == nil {
		return
	}
	v.observer(Event{Type: t, Index: v.current, Diffs: len(v.diffs), Changes: changes})
}
