package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
)

// ErrNotFound is the sentinel matched by NotFoundError.
var ErrNotFound = errors.New("history not found")

// NotFoundError is returned when no history matches a GUID or name.
type NotFoundError struct {
	Ref string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("history not found: %s", e.Ref)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Record is a persisted history: the current grid contents plus the diff log
// and cursor that produced them.
type Record[T comparable] struct {
	ID           int64
	GUID         string
	Name         string
	Width        int
	Height       int
	AutoCompress bool
	Cells        []T // row-major current grid state
	Diffs        []*gridhistory.Diff[T]
	Cursor       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary is the list view of a record, without cells or diffs.
type Summary struct {
	GUID      string
	Name      string
	Width     int
	Height    int
	Cursor    int
	DiffCount int
	UpdatedAt time.Time
}

// Capture copies the view's grid, diffs and cursor into the record.
// The view must be backed by a grid of the record's dimensions.
func (r *Record[T]) Capture(v *gridhistory.View[T]) error {
	if v.Width() != r.Width || v.Height() != r.Height {
		return fmt.Errorf("%w: view is %dx%d, record is %dx%d",
			grid.ErrSizeMismatch, v.Width(), v.Height(), r.Width, r.Height)
	}
	r.Cells = grid.Snapshot[T](v.BaseGrid()).Cells()
	r.Diffs = v.Diffs()
	r.Cursor = v.CurrentDiffIndex()
	r.AutoCompress = v.AutoCompress()
	return nil
}

// View rebuilds a live view from the record. The diff log is re-validated, so a
// tampered or corrupted history is rejected here rather than on first use.
// Every reloaded diff is finalized.
func (r *Record[T]) View(opts ...gridhistory.Option) (*gridhistory.View[T], error) {
	g, err := grid.NewArrayGridFrom(r.Width, r.Height, r.Cells)
	if err != nil {
		return nil, err
	}
	opts = append([]gridhistory.Option{gridhistory.WithAutoCompress(r.AutoCompress)}, opts...)
	v := gridhistory.NewView[T](g, opts...)

	if len(r.Diffs) == 0 {
		if r.Cursor != -1 {
			return nil, fmt.Errorf("%w: cursor %d with no diffs", gridhistory.ErrIndexOutOfRange, r.Cursor)
		}
		return v, nil
	}
	if err := v.SetHistory(r.Diffs, r.Cursor); err != nil {
		return nil, fmt.Errorf("history %s: %w", r.GUID, err)
	}
	return v, nil
}

// Summary returns the list form of the record.
func (r *Record[T]) Summary() Summary {
	return Summary{
		GUID:      r.GUID,
		Name:      r.Name,
		Width:     r.Width,
		Height:    r.Height,
		Cursor:    r.Cursor,
		DiffCount: len(r.Diffs),
		UpdatedAt: r.UpdatedAt,
	}
}
