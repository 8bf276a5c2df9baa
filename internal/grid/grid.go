// Package grid provides the mutable 2-D grid abstraction that the history
// engine records changes against.
package grid

import (
	"errors"
	"fmt"
	"iter"
)

// ErrSizeMismatch is returned when two grids that must share dimensions do not.
var ErrSizeMismatch = errors.New("grid size mismatch")

// Point is an integer grid coordinate.
type Point struct {
	X int
	Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// ReadOnly is a grid that can only be read.
type ReadOnly[T any] interface {
	Get(p Point) T
	Width() int
	Height() int
	// Positions yields every position of the grid in row-major order.
	Positions() iter.Seq[Point]
}

// Grid is a mutable grid of values addressed by Point.
type Grid[T any] interface {
	ReadOnly[T]
	Set(p Point, value T)
}

// ArrayGrid is a dense row-major Grid backed by a single slice.
type ArrayGrid[T any] struct {
	width  int
	height int
	cells  []T
}

// NewArrayGrid creates a width x height grid filled with T's zero value.
func NewArrayGrid[T any](width, height int) *ArrayGrid[T] {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("grid: negative size %dx%d", width, height))
	}
	return &ArrayGrid[T]{
		width:  width,
		height: height,
		cells:  make([]T, width*height),
	}
}

// NewArrayGridFrom creates a grid from row-major cells.
// The cells are copied; len(cells) must equal width*height.
func NewArrayGridFrom[T any](width, height int, cells []T) (*ArrayGrid[T], error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrSizeMismatch, width, height)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%w: %d cells for %dx%d grid", ErrSizeMismatch, len(cells), width, height)
	}
	g := NewArrayGrid[T](width, height)
	copy(g.cells, cells)
	return g, nil
}

func (g *ArrayGrid[T]) Width() int  { return g.width }
func (g *ArrayGrid[T]) Height() int { return g.height }

// Contains reports whether p lies inside the grid.
func (g *ArrayGrid[T]) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

// Get returns the value at p. It panics if p is outside the grid.
func (g *ArrayGrid[T]) Get(p Point) T {
	return g.cells[g.index(p)]
}

// Set stores value at p. It panics if p is outside the grid.
func (g *ArrayGrid[T]) Set(p Point, value T) {
	g.cells[g.index(p)] = value
}

// Positions yields every position in row-major order.
func (g *ArrayGrid[T]) Positions() iter.Seq[Point] {
	return Positions(g.width, g.height)
}

// Cells returns a row-major copy of the grid's contents.
func (g *ArrayGrid[T]) Cells() []T {
	out := make([]T, len(g.cells))
	copy(out, g.cells)
	return out
}

func (g *ArrayGrid[T]) index(p Point) int {
	if !g.Contains(p) {
		panic(fmt.Sprintf("grid: position %s outside %dx%d grid", p, g.width, g.height))
	}
	return p.Y*g.width + p.X
}

// Positions yields every position of a width x height area in row-major order.
func Positions(width, height int) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				if !yield(Point{X: x, Y: y}) {
					return
				}
			}
		}
	}
}
