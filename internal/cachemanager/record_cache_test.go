package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/store"
)

type fakeLoader struct {
	records map[string]*store.Record[int]
	calls   int
}

func (f *fakeLoader) load(_ context.Context, ref string) (*store.Record[int], error) {
	f.calls++
	for _, r := range f.records {
		if r.GUID == ref || r.Name == ref {
			return r, nil
		}
	}
	return nil, &store.NotFoundError{Ref: ref}
}

func newLoader(t *testing.T) *fakeLoader {
	t.Helper()
	d, err := gridhistory.NewFinalizedDiff(gridhistory.Change(grid.Pt(0, 0), 0, 1))
	require.NoError(t, err)
	return &fakeLoader{records: map[string]*store.Record[int]{
		"g1": {GUID: "g1", Name: "first", Width: 1, Height: 1, Cells: []int{1}, Diffs: []*gridhistory.Diff[int]{d}, Cursor: 0},
	}}
}

func TestRecordCache_ReadThrough(t *testing.T) {
	loader := newLoader(t)
	cache := NewRecordCache[int](loader.load, DefaultExpiration, DefaultCleanupInterval, false)
	ctx := context.Background()

	rec, err := cache.Get(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, "first", rec.Name)
	require.Equal(t, 1, loader.calls)

	_, err = cache.Get(ctx, "g1")
	require.NoError(t, err)
	_, err = cache.Get(ctx, "first")
	require.NoError(t, err)
	require.Equal(t, 1, loader.calls, "GUID and name both served from cache")

	hits, misses := cache.Stats()
	require.Equal(t, int64(2), hits)
	require.Equal(t, int64(1), misses)
}

func TestRecordCache_ReturnsPrivateCopies(t *testing.T) {
	loader := newLoader(t)
	cache := NewRecordCache[int](loader.load, DefaultExpiration, DefaultCleanupInterval, false)
	ctx := context.Background()

	rec, err := cache.Get(ctx, "g1")
	require.NoError(t, err)
	rec.Cells[0] = 99
	rec.Diffs = nil

	again, err := cache.Get(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, []int{1}, again.Cells)
	require.Len(t, again.Diffs, 1)
	require.Equal(t, []int{1}, loader.records["g1"].Cells, "source record untouched")
}

func TestRecordCache_Invalidate(t *testing.T) {
	loader := newLoader(t)
	cache := NewRecordCache[int](loader.load, DefaultExpiration, DefaultCleanupInterval, false)
	ctx := context.Background()

	rec, err := cache.Get(ctx, "g1")
	require.NoError(t, err)
	cache.Invalidate(rec)

	_, err = cache.Get(ctx, "first")
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)

	cache.Flush()
	_, err = cache.Get(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 3, loader.calls)
}

func TestRecordCache_Put(t *testing.T) {
	loader := newLoader(t)
	cache := NewRecordCache[int](loader.load, DefaultExpiration, DefaultCleanupInterval, false)

	cache.Put(&store.Record[int]{GUID: "g2", Name: "second", Width: 1, Height: 1, Cells: []int{5}, Cursor: -1})

	rec, err := cache.Get(context.Background(), "second")
	require.NoError(t, err)
	require.Equal(t, []int{5}, rec.Cells)
	require.Zero(t, loader.calls)
}

func TestRecordCache_LoadErrorNotCached(t *testing.T) {
	loader := newLoader(t)
	cache := NewRecordCache[int](loader.load, DefaultExpiration, DefaultCleanupInterval, false)
	ctx := context.Background()

	_, err := cache.Get(ctx, "missing")
	require.True(t, errors.Is(err, store.ErrNotFound))
	_, err = cache.Get(ctx, "missing")
	require.Error(t, err)
	require.Equal(t, 2, loader.calls)
}

func TestRecordCache_Skip(t *testing.T) {
	loader := newLoader(t)
	cache := NewRecordCache[int](loader.load, DefaultExpiration, DefaultCleanupInterval, true)
	ctx := context.Background()

	for range 3 {
		_, err := cache.Get(ctx, "g1")
		require.NoError(t, err)
	}
	require.Equal(t, 3, loader.calls)
}

func TestRecordCache_Expiry(t *testing.T) {
	loader := newLoader(t)
	cache := NewRecordCache[int](loader.load, 20*time.Millisecond, time.Minute, false)
	ctx := context.Background()

	_, err := cache.Get(ctx, "g1")
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = cache.Get(ctx, "g1")
	require.NoError(t, err)
	require.Equal(t, 2, loader.calls)
}
