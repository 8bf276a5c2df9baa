package grid

import "fmt"

// SameSize reports whether a and b have identical dimensions.
func SameSize[T, U any](a ReadOnly[T], b ReadOnly[U]) bool {
	return a.Width() == b.Width() && a.Height() == b.Height()
}

// ApplyOverlay copies every value of src into dst.
func ApplyOverlay[T any](dst Grid[T], src ReadOnly[T]) error {
	if !SameSize(dst, src) {
		return fmt.Errorf("%w: overlay %dx%d onto %dx%d",
			ErrSizeMismatch, src.Width(), src.Height(), dst.Width(), dst.Height())
	}
	for p := range src.Positions() {
		dst.Set(p, src.Get(p))
	}
	return nil
}

// Snapshot copies src into a new ArrayGrid.
func Snapshot[T any](src ReadOnly[T]) *ArrayGrid[T] {
	g := NewArrayGrid[T](src.Width(), src.Height())
	for p := range src.Positions() {
		g.Set(p, src.Get(p))
	}
	return g
}

// Equal reports whether a and b have the same size and values.
func Equal[T comparable](a, b ReadOnly[T]) bool {
	if !SameSize(a, b) {
		return false
	}
	for p := range a.Positions() {
		if a.Get(p) != b.Get(p) {
			return false
		}
	}
	return true
}
