package gridhistory

import (
	"fmt"

	"github.com/zjrosen/gridhist/internal/grid"
)

// ValueChange records one position's transition from OldValue to NewValue.
// Two changes are equal when all three fields are equal.
type ValueChange[T comparable] struct {
	Position grid.Point
	OldValue T
	NewValue T
}

// Change is shorthand for constructing a ValueChange.
func Change[T comparable](p grid.Point, oldValue, newValue T) ValueChange[T] {
	return ValueChange[T]{Position: p, OldValue: oldValue, NewValue: newValue}
}

// Matches reports whether c and other describe the same transition.
// It is currently identical to ==.
func (c ValueChange[T]) Matches(other ValueChange[T]) bool {
	return c == other
}

// IsNoOp returns true if the change leaves the value untouched.
func (c ValueChange[T]) IsNoOp() bool {
	return c.OldValue == c.NewValue
}

// Inverse returns the change that undoes c.
func (c ValueChange[T]) Inverse() ValueChange[T] {
	return ValueChange[T]{Position: c.Position, OldValue: c.NewValue, NewValue: c.OldValue}
}

func (c ValueChange[T]) String() string {
	return fmt.Sprintf("%s: %v -> %v", c.Position, c.OldValue, c.NewValue)
}
