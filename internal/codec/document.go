// Package codec reads and writes histories as portable YAML documents.
//
// A document carries the current grid contents, the full diff log and the
// cursor. Decoding never trusts the log: Document.View re-runs history
// validation, so a hand-edited file that breaks the old/new chain is rejected.
package codec

import (
	"errors"
	"fmt"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/store"
)

// FormatVersion is written to every document and checked on decode.
const FormatVersion = 1

// ErrInvalidDocument is returned for structurally broken documents.
var ErrInvalidDocument = errors.New("invalid history document")

// Document is the on-disk form of a history.
type Document[T comparable] struct {
	Version      int              `yaml:"version"`
	GUID         string           `yaml:"guid,omitempty"`
	Name         string           `yaml:"name,omitempty"`
	Width        int              `yaml:"width"`
	Height       int              `yaml:"height"`
	AutoCompress bool             `yaml:"auto_compress"`
	Cursor       int              `yaml:"cursor"`
	Cells        []T              `yaml:"cells,flow"`
	Diffs        [][]ChangeDoc[T] `yaml:"diffs"`
}

// ChangeDoc is one value change inside a diff.
type ChangeDoc[T comparable] struct {
	X   int `yaml:"x"`
	Y   int `yaml:"y"`
	Old T   `yaml:"old"`
	New T   `yaml:"new"`
}

// FromView captures a view as a document.
func FromView[T comparable](guid, name string, v *gridhistory.View[T]) *Document[T] {
	return &Document[T]{
		Version:      FormatVersion,
		GUID:         guid,
		Name:         name,
		Width:        v.Width(),
		Height:       v.Height(),
		AutoCompress: v.AutoCompress(),
		Cursor:       v.CurrentDiffIndex(),
		Cells:        grid.Snapshot[T](v.BaseGrid()).Cells(),
		Diffs:        diffDocs(v.Diffs()),
	}
}

// FromRecord captures a stored record as a document.
func FromRecord[T comparable](rec *store.Record[T]) *Document[T] {
	return &Document[T]{
		Version:      FormatVersion,
		GUID:         rec.GUID,
		Name:         rec.Name,
		Width:        rec.Width,
		Height:       rec.Height,
		AutoCompress: rec.AutoCompress,
		Cursor:       rec.Cursor,
		Cells:        append([]T(nil), rec.Cells...),
		Diffs:        diffDocs(rec.Diffs),
	}
}

func diffDocs[T comparable](diffs []*gridhistory.Diff[T]) [][]ChangeDoc[T] {
	out := make([][]ChangeDoc[T], 0, len(diffs))
	for _, d := range diffs {
		changes := make([]ChangeDoc[T], 0, d.Len())
		for _, c := range d.All() {
			changes = append(changes, ChangeDoc[T]{
				X:   c.Position.X,
				Y:   c.Position.Y,
				Old: c.OldValue,
				New: c.NewValue,
			})
		}
		out = append(out, changes)
	}
	return out
}

// Check validates the document's shape. It does not check the diff chain;
// View and Record do that.
func (d *Document[T]) Check() error {
	if d.Version != FormatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidDocument, d.Version)
	}
	if d.Width < 0 || d.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidDocument, d.Width, d.Height)
	}
	if len(d.Cells) != d.Width*d.Height {
		return fmt.Errorf("%w: %d cells for %dx%d grid", ErrInvalidDocument, len(d.Cells), d.Width, d.Height)
	}
	for i, changes := range d.Diffs {
		for j, c := range changes {
			if c.X < 0 || c.X >= d.Width || c.Y < 0 || c.Y >= d.Height {
				return fmt.Errorf("%w: diff %d change %d at (%d,%d) is outside the %dx%d grid",
					ErrInvalidDocument, i, j, c.X, c.Y, d.Width, d.Height)
			}
		}
	}
	return nil
}

// diffs rebuilds finalized diffs; no-op entries are rejected like Diff.Add does.
func (d *Document[T]) diffs() ([]*gridhistory.Diff[T], error) {
	out := make([]*gridhistory.Diff[T], 0, len(d.Diffs))
	for i, changes := range d.Diffs {
		vcs := make([]gridhistory.ValueChange[T], 0, len(changes))
		for _, c := range changes {
			vcs = append(vcs, gridhistory.Change(grid.Pt(c.X, c.Y), c.Old, c.New))
		}
		diff, err := gridhistory.NewFinalizedDiff(vcs...)
		if err != nil {
			return nil, fmt.Errorf("diff %d: %w", i, err)
		}
		out = append(out, diff)
	}
	return out, nil
}

// View rebuilds a live view. The diff log must form a consistent chain.
func (d *Document[T]) View(opts ...gridhistory.Option) (*gridhistory.View[T], error) {
	rec, err := d.Record()
	if err != nil {
		return nil, err
	}
	return rec.View(opts...)
}

// Record converts the document into a store record (without an ID), validating
// the diff chain on the way.
func (d *Document[T]) Record() (*store.Record[T], error) {
	if err := d.Check(); err != nil {
		return nil, err
	}
	diffs, err := d.diffs()
	if err != nil {
		return nil, err
	}
	if len(diffs) == 0 {
		if d.Cursor != -1 {
			return nil, fmt.Errorf("%w: cursor %d with no diffs", gridhistory.ErrIndexOutOfRange, d.Cursor)
		}
	} else if err := gridhistory.CheckHistory(diffs, d.Cursor); err != nil {
		return nil, err
	}
	return &store.Record[T]{
		GUID:         d.GUID,
		Name:         d.Name,
		Width:        d.Width,
		Height:       d.Height,
		AutoCompress: d.AutoCompress,
		Cells:        append([]T(nil), d.Cells...),
		Diffs:        diffs,
		Cursor:       d.Cursor,
	}, nil
}
