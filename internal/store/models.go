package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
)

// historyModel is the row shape of the histories table.
type historyModel struct {
	ID           int64
	GUID         string
	Name         string
	Width        int
	Height       int
	AutoCompress bool
	Cursor       int
	Cells        string // JSON array, row-major
	CreatedAt    int64  // Unix timestamp
	UpdatedAt    int64  // Unix timestamp
}

// changeModel is the row shape of the changes table, joined with its diff sequence.
type changeModel struct {
	DiffSeq  int
	X, Y     int
	OldValue string // JSON
	NewValue string // JSON
}

func toHistoryModel[T comparable](r *Record[T]) (*historyModel, error) {
	cells := r.Cells
	if cells == nil {
		cells = []T{}
	}
	data, err := json.Marshal(cells)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cells: %w", err)
	}
	return &historyModel{
		ID:           r.ID,
		GUID:         r.GUID,
		Name:         r.Name,
		Width:        r.Width,
		Height:       r.Height,
		AutoCompress: r.AutoCompress,
		Cursor:       r.Cursor,
		Cells:        string(data),
		CreatedAt:    r.CreatedAt.Unix(),
		UpdatedAt:    r.UpdatedAt.Unix(),
	}, nil
}

func toRecord[T comparable](m *historyModel) (*Record[T], error) {
	r := &Record[T]{
		ID:           m.ID,
		GUID:         m.GUID,
		Name:         m.Name,
		Width:        m.Width,
		Height:       m.Height,
		AutoCompress: m.AutoCompress,
		Cursor:       m.Cursor,
		CreatedAt:    time.Unix(m.CreatedAt, 0),
		UpdatedAt:    time.Unix(m.UpdatedAt, 0),
	}
	if err := json.Unmarshal([]byte(m.Cells), &r.Cells); err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	return r, nil
}

func toChangeModels[T comparable](seq int, d *gridhistory.Diff[T]) ([]changeModel, error) {
	out := make([]changeModel, 0, d.Len())
	for i, c := range d.All() {
		oldValue, err := json.Marshal(c.OldValue)
		if err != nil {
			return nil, fmt.Errorf("failed to encode diff %d change %d: %w", seq, i, err)
		}
		newValue, err := json.Marshal(c.NewValue)
		if err != nil {
			return nil, fmt.Errorf("failed to encode diff %d change %d: %w", seq, i, err)
		}
		out = append(out, changeModel{
			DiffSeq:  seq,
			X:        c.Position.X,
			Y:        c.Position.Y,
			OldValue: string(oldValue),
			NewValue: string(newValue),
		})
	}
	return out, nil
}

func fromChangeModel[T comparable](m changeModel) (gridhistory.ValueChange[T], error) {
	var c gridhistory.ValueChange[T]
	if err := json.Unmarshal([]byte(m.OldValue), &c.OldValue); err != nil {
		return c, fmt.Errorf("failed to decode old value: %w", err)
	}
	if err := json.Unmarshal([]byte(m.NewValue), &c.NewValue); err != nil {
		return c, fmt.Errorf("failed to decode new value: %w", err)
	}
	c.Position = grid.Pt(m.X, m.Y)
	return c, nil
}
