package gridhistory

import (
	"errors"
	"fmt"

	"github.com/zjrosen/gridhist/internal/grid"
)

// ===========================================================================
// State Errors
// ===========================================================================

// ErrInvalidState is returned when the cursor position or a diff's lifecycle
// forbids the operation (writing behind the head, adding to a finalized diff,
// reverting past the baseline, and so on).
var ErrInvalidState = errors.New("invalid history state")

// ErrNoOpChange is returned by Diff.Add for a change whose old and new values are equal.
var ErrNoOpChange = errors.New("change does not alter the value")

// ErrSizeMismatch is returned when a baseline grid's dimensions differ from the view's.
var ErrSizeMismatch = grid.ErrSizeMismatch

// ===========================================================================
// Reseeding Errors
// ===========================================================================

// ErrEmptyHistory is returned when SetHistory is given no diffs.
var ErrEmptyHistory = errors.New("history is empty")

// ErrBlankDiff is returned when SetHistory is given a diff with no changes.
var ErrBlankDiff = errors.New("history contains a blank diff")

// ErrIndexOutOfRange is returned when a history cursor lies outside [-1, len(diffs)-1].
var ErrIndexOutOfRange = errors.New("history index out of range")

// ErrPositionOutOfRange is returned when a history touches a position outside the view's grid.
var ErrPositionOutOfRange = errors.New("history position outside grid")

// ErrInconsistentHistory is returned when a change's old value does not match
// the previous new value recorded for the same position.
var ErrInconsistentHistory = errors.New("inconsistent history")

// InconsistentHistoryError describes the first change that breaks a history's chain.
type InconsistentHistoryError struct {
	DiffIndex   int
	ChangeIndex int
	Position    grid.Point
	Expected    any // new value of the previous change to Position
	Actual      any // old value recorded by the offending change
}

func (e *InconsistentHistoryError) Error() string {
	return fmt.Sprintf("%s: diff %d change %d at %s has old value %v, previous new value was %v",
		ErrInconsistentHistory, e.DiffIndex, e.ChangeIndex, e.Position, e.Actual, e.Expected)
}

func (e *InconsistentHistoryError) Unwrap() error {
	return ErrInconsistentHistory
}
