package gridhistory

import (
	"fmt"
	"iter"
	"slices"

	"github.com/zjrosen/gridhist/internal/grid"
)

// DiffState is the lifecycle state of a Diff.
type DiffState int

const (
	// DiffOpen means changes may still be added.
	DiffOpen DiffState = iota
	// DiffFinalized means the change set is locked.
	DiffFinalized
)

func (s DiffState) String() string {
	switch s {
	case DiffOpen:
		return "open"
	case DiffFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// Diff is an ordered batch of value changes representing one logical edit.
//
// The zero value is an empty, open diff, which is vacuously compressed.
// Adding a change clears the compressed flag; Compress restores it.
// Once finalized, the diff's changes can no longer be modified.
type Diff[T comparable] struct {
	changes []ValueChange[T]
	dirty   bool // changes added since the last Compress
	state   DiffState
}

// NewDiff creates an empty, open diff.
func NewDiff[T comparable]() *Diff[T] {
	return &Diff[T]{}
}

// NewFinalizedDiff builds a finalized diff from changes, validating each
// change as Add would.
func NewFinalizedDiff[T comparable](changes ...ValueChange[T]) (*Diff[T], error) {
	d := NewDiff[T]()
	for i, c := range changes {
		if err := d.Add(c); err != nil {
			return nil, fmt.Errorf("change %d: %w", i, err)
		}
	}
	d.FinalizeChanges()
	return d, nil
}

// Add appends a change to the diff.
// Returns ErrInvalidState if the diff is finalized and ErrNoOpChange if the
// change does not alter its position's value.
func (d *Diff[T]) Add(c ValueChange[T]) error {
	if d.state == DiffFinalized {
		return fmt.Errorf("%w: cannot add %s to a finalized diff", ErrInvalidState, c)
	}
	if c.IsNoOp() {
		return fmt.Errorf("%w: %s", ErrNoOpChange, c)
	}
	d.changes = append(d.changes, c)
	d.dirty = true
	return nil
}

// net is the first-old/last-new transition of one position.
type net[T comparable] struct {
	position grid.Point
	firstOld T
	lastNew  T
}

// Compress rewrites the change list to its minimal equivalent: one change per
// position still altered by the diff, from the value before the diff's first
// change to that position to the value after its last. Positions whose net
// effect is nothing are dropped. The order of the result is unspecified.
//
// Compress is a no-op on a finalized diff.
func (d *Diff[T]) Compress() {
	if d.state == DiffFinalized || !d.dirty {
		return
	}

	index := make(map[grid.Point]int, len(d.changes))
	nets := make([]net[T], 0, len(d.changes))
	for _, c := range d.changes {
		if i, ok := index[c.Position]; ok {
			nets[i].lastNew = c.NewValue
			continue
		}
		index[c.Position] = len(nets)
		nets = append(nets, net[T]{position: c.Position, firstOld: c.OldValue, lastNew: c.NewValue})
	}

	compressed := d.changes[:0]
	for _, n := range nets {
		if n.firstOld == n.lastNew {
			continue
		}
		compressed = append(compressed, ValueChange[T]{Position: n.position, OldValue: n.firstOld, NewValue: n.lastNew})
	}
	clear(d.changes[len(compressed):])
	d.changes = compressed
	d.dirty = false
}

// FinalizeChanges locks the diff against further changes.
func (d *Diff[T]) FinalizeChanges() {
	d.state = DiffFinalized
}

// IsCompressed returns true if no change was added since the last Compress.
func (d *Diff[T]) IsCompressed() bool {
	return !d.dirty
}

// IsFinalized returns true once FinalizeChanges has been called.
func (d *Diff[T]) IsFinalized() bool {
	return d.state == DiffFinalized
}

// State returns the diff's lifecycle state.
func (d *Diff[T]) State() DiffState {
	return d.state
}

// Len returns the number of recorded changes.
func (d *Diff[T]) Len() int {
	return len(d.changes)
}

// Change returns the i'th recorded change.
func (d *Diff[T]) Change(i int) ValueChange[T] {
	return d.changes[i]
}

// Changes returns a copy of the recorded changes in chronological order.
func (d *Diff[T]) Changes() []ValueChange[T] {
	return slices.Clone(d.changes)
}

// All yields the changes in chronological order.
func (d *Diff[T]) All() iter.Seq2[int, ValueChange[T]] {
	return slices.All(d.changes)
}

// Clone returns a deep copy of the diff in the same lifecycle state.
func (d *Diff[T]) Clone() *Diff[T] {
	return &Diff[T]{
		changes: slices.Clone(d.changes),
		dirty:   d.dirty,
		state:   d.state,
	}
}

// applyNew writes every change's new value onto g in chronological order.
func (d *Diff[T]) applyNew(g grid.Grid[T]) {
	for _, c := range d.changes {
		g.Set(c.Position, c.NewValue)
	}
}

// applyOld writes every change's old value onto g in reverse chronological
// order, so a position changed several times ends at its pre-diff value.
func (d *Diff[T]) applyOld(g grid.Grid[T]) {
	for i := len(d.changes) - 1; i >= 0; i-- {
		undo := d.changes[i].Inverse()
		g.Set(undo.Position, undo.NewValue)
	}
}
