package gridhistory

import (
	"fmt"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/log"
)

// CheckHistory validates a diff sequence and cursor for SetHistory without
// installing them. The checks do not look at any grid's contents:
//   - diffs must be non-empty (ErrEmptyHistory)
//   - no diff may be blank (ErrBlankDiff)
//   - index must lie in [-1, len(diffs)-1] (ErrIndexOutOfRange)
//   - scanning all changes in order, each change's old value must equal the
//     new value of the previous change to the same position, if any
//     (*InconsistentHistoryError, which unwraps to ErrInconsistentHistory)
func CheckHistory[T comparable](diffs []*Diff[T], index int) error {
	if len(diffs) == 0 {
		return ErrEmptyHistory
	}
	for i, d := range diffs {
		if d == nil || d.Len() == 0 {
			return fmt.Errorf("%w: diff %d has no changes", ErrBlankDiff, i)
		}
	}
	if index < -1 || index > len(diffs)-1 {
		return fmt.Errorf("%w: %d not in [-1, %d]", ErrIndexOutOfRange, index, len(diffs)-1)
	}

	latest := make(map[grid.Point]T)
	for i, d := range diffs {
		for j, c := range d.All() {
			if prev, ok := latest[c.Position]; ok && prev != c.OldValue {
				return &InconsistentHistoryError{
					DiffIndex:   i,
					ChangeIndex: j,
					Position:    c.Position,
					Expected:    prev,
					Actual:      c.OldValue,
				}
			}
			latest[c.Position] = c.NewValue
		}
	}
	return nil
}

// SetHistory replaces the view's history and cursor with diffs and index.
// The grid is not touched: the caller must ensure it already holds the values
// that applying diffs[0..index] to the intended baseline would produce.
// Finalized copies of diffs are installed, so later changes to the caller's
// diffs do not affect the view. Besides the CheckHistory rules, every change
// must lie inside the grid (ErrPositionOutOfRange). On error the view is left
// unchanged.
func (v *View[T]) SetHistory(diffs []*Diff[T], index int) error {
	err := CheckHistory(diffs, index)
	if err == nil {
		err = v.checkBounds(diffs)
	}
	if err != nil {
		log.Debug(log.CatHistory, "rejected history", "diffs", len(diffs), "index", index, "error", err)
		return err
	}

	installed := make([]*Diff[T], len(diffs))
	for i, d := range diffs {
		c := d.Clone()
		c.FinalizeChanges()
		installed[i] = c
	}
	v.diffs = installed
	v.current = index
	log.Debug(log.CatHistory, "installed history", "diffs", len(installed), "index", index)
	v.emit(EventReseeded, 0)
	return nil
}

// SetHistoryAtHead is SetHistory with the cursor on the last diff.
func (v *View[T]) SetHistoryAtHead(diffs []*Diff[T]) error {
	return v.SetHistory(diffs, len(diffs)-1)
}

func (v *View[T]) checkBounds(diffs []*Diff[T]) error {
	w, h := v.Width(), v.Height()
	for i, d := range diffs {
		for j, c := range d.All() {
			p := c.Position
			if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
				return fmt.Errorf("%w: diff %d change %d at %s, grid is %dx%d",
					ErrPositionOutOfRange, i, j, p, w, h)
			}
		}
	}
	return nil
}
