package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/gridhist/internal/grid"
	"github.com/zjrosen/gridhist/internal/gridhistory"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[string](newTestDB(t))

	rec, err := repo.Create(ctx, "map", 3, 2, []string{"a", "b", "c", "d", "e", "f"})
	require.NoError(t, err)
	require.NotZero(t, rec.ID)
	require.Len(t, rec.GUID, 36, "uuid string form")
	require.Equal(t, -1, rec.Cursor)
	require.True(t, rec.AutoCompress)

	found, err := repo.FindByGUID(ctx, rec.GUID)
	require.NoError(t, err)
	require.Equal(t, rec.Name, found.Name)
	require.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, found.Cells)
	require.Empty(t, found.Diffs)

	byName, err := repo.FindByName(ctx, "map")
	require.NoError(t, err)
	require.Equal(t, rec.GUID, byName.GUID)
}

func TestRepository_CreateZeroCells(t *testing.T) {
	repo := NewRepository[int](newTestDB(t))

	rec, err := repo.Create(context.Background(), "zeros", 2, 2, nil)
	require.NoError(t, err)
	require.Equal(t, []int{0, 0, 0, 0}, rec.Cells)
}

func TestRepository_CreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[int](newTestDB(t))

	_, err := repo.Create(ctx, "", 1, 1, nil)
	require.ErrorContains(t, err, "name is required")

	_, err = repo.Create(ctx, "short", 2, 2, []int{1})
	require.ErrorContains(t, err, "1 cells for 2x2 grid")

	_, err = repo.Create(ctx, "dup", 1, 1, nil)
	require.NoError(t, err)
	_, err = repo.Create(ctx, "dup", 1, 1, nil)
	require.Error(t, err, "names are unique")
}

func TestRepository_SaveRoundTripsHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[bool](newTestDB(t))

	rec, err := repo.Create(ctx, "walls", 3, 3, nil)
	require.NoError(t, err)

	v, err := rec.View()
	require.NoError(t, err)
	require.NoError(t, v.SetXY(0, 0, true))
	require.NoError(t, v.SetXY(1, 1, true))
	require.NoError(t, v.FinalizeCurrentDiff())
	require.NoError(t, v.SetXY(2, 2, true))
	require.NoError(t, v.FinalizeCurrentDiff())
	require.NoError(t, v.RevertToPreviousDiff())

	require.NoError(t, rec.Capture(v))
	require.NoError(t, repo.Save(ctx, rec))

	loaded, err := repo.FindByGUID(ctx, rec.GUID)
	require.NoError(t, err)
	require.Equal(t, 0, loaded.Cursor)
	require.Len(t, loaded.Diffs, 2)
	require.ElementsMatch(t, rec.Diffs[0].Changes(), loaded.Diffs[0].Changes())
	require.ElementsMatch(t, rec.Diffs[1].Changes(), loaded.Diffs[1].Changes())

	reloaded, err := loaded.View()
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.CurrentDiffIndex())
	require.True(t, reloaded.GetXY(0, 0))
	require.False(t, reloaded.GetXY(2, 2))

	require.NoError(t, reloaded.ApplyNextDiff())
	require.True(t, reloaded.GetXY(2, 2))
	require.NoError(t, reloaded.RevertAll())
	require.True(t, grid.Equal[bool](grid.NewArrayGrid[bool](3, 3), reloaded.BaseGrid()))
}

func TestRepository_SaveReplacesDiffs(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[int](newTestDB(t))

	rec, err := repo.Create(ctx, "counter", 1, 1, nil)
	require.NoError(t, err)

	v, err := rec.View()
	require.NoError(t, err)
	for i := 1; i <= 3; i++ {
		require.NoError(t, v.SetXY(0, 0, i))
		require.NoError(t, v.FinalizeCurrentDiff())
	}
	require.NoError(t, rec.Capture(v))
	require.NoError(t, repo.Save(ctx, rec))

	v.ClearHistory()
	require.NoError(t, rec.Capture(v))
	require.NoError(t, repo.Save(ctx, rec))

	loaded, err := repo.FindByGUID(ctx, rec.GUID)
	require.NoError(t, err)
	require.Empty(t, loaded.Diffs)
	require.Equal(t, -1, loaded.Cursor)
	require.Equal(t, []int{3}, loaded.Cells)

	var orphans int
	require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM changes`).Scan(&orphans))
	require.Zero(t, orphans, "changes cascade with their diffs")
}

func TestRepository_SaveRejectsInconsistentHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[int](newTestDB(t))

	rec, err := repo.Create(ctx, "broken", 1, 1, nil)
	require.NoError(t, err)

	d1, err := gridhistory.NewFinalizedDiff(gridhistory.Change(grid.Pt(0, 0), 0, 1))
	require.NoError(t, err)
	d2, err := gridhistory.NewFinalizedDiff(gridhistory.Change(grid.Pt(0, 0), 5, 6))
	require.NoError(t, err)
	rec.Diffs = []*gridhistory.Diff[int]{d1, d2}
	rec.Cursor = 1

	err = repo.Save(ctx, rec)
	require.ErrorIs(t, err, gridhistory.ErrInconsistentHistory)

	rec.Diffs = nil
	rec.Cursor = 0
	require.ErrorIs(t, repo.Save(ctx, rec), gridhistory.ErrIndexOutOfRange)
}

// A row edited behind the store's back is rejected when the view is rebuilt.
func TestRecord_ViewRevalidatesTamperedRows(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[int](newTestDB(t))

	rec, err := repo.Create(ctx, "tampered", 1, 1, nil)
	require.NoError(t, err)
	v, err := rec.View()
	require.NoError(t, err)
	require.NoError(t, v.SetXY(0, 0, 1))
	require.NoError(t, v.FinalizeCurrentDiff())
	require.NoError(t, v.SetXY(0, 0, 2))
	require.NoError(t, v.FinalizeCurrentDiff())
	require.NoError(t, rec.Capture(v))
	require.NoError(t, repo.Save(ctx, rec))

	_, err = repo.db.Exec(`UPDATE changes SET old_value = '7' WHERE new_value = '2'`)
	require.NoError(t, err)

	loaded, err := repo.FindByGUID(ctx, rec.GUID)
	require.NoError(t, err)
	_, err = loaded.View()
	require.ErrorIs(t, err, gridhistory.ErrInconsistentHistory)

	var inconsistent *gridhistory.InconsistentHistoryError
	require.True(t, errors.As(err, &inconsistent))
	require.Equal(t, 1, inconsistent.DiffIndex)
}

func TestRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[int](newTestDB(t))

	_, err := repo.FindByGUID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "missing", nf.Ref)

	_, err = repo.Resolve(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)
}

func TestRepository_Resolve(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository[int](newTestDB(t))

	rec, err := repo.Create(ctx, "named", 1, 1, nil)
	require.NoError(t, err)

	byGUID, err := repo.Resolve(ctx, rec.GUID)
	require.NoError(t, err)
	require.Equal(t, rec.ID, byGUID.ID)

	byName, err := repo.Resolve(ctx, "named")
	require.NoError(t, err)
	require.Equal(t, rec.ID, byName.ID)
}

func TestRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	older := NewRepository[int](db, WithClock(fixedClock(time.Unix(1000, 0))))
	newer := NewRepository[int](db, WithClock(fixedClock(time.Unix(2000, 0))))

	a, err := older.Create(ctx, "a", 1, 1, nil)
	require.NoError(t, err)
	b, err := newer.Create(ctx, "b", 2, 1, nil)
	require.NoError(t, err)

	list, err := older.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "b", list[0].Name, "most recently updated first")
	require.Equal(t, 2, list[0].Width)
	require.Equal(t, time.Unix(2000, 0), list[0].UpdatedAt)
	require.Equal(t, a.Summary().GUID, list[1].GUID)

	require.NoError(t, older.Delete(ctx, b.GUID))
	list, err = older.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRepository_ListEmpty(t *testing.T) {
	list, err := NewRepository[int](newTestDB(t)).List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list)
}

func TestRepository_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	repo := NewRepository[int](newTestDB(t), WithTracer(tp.Tracer("test")))

	ctx := context.Background()
	rec, err := repo.Create(ctx, "traced", 1, 1, nil)
	require.NoError(t, err)
	_, err = repo.FindByGUID(ctx, "nope")
	require.Error(t, err)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	require.Equal(t, []string{"store.save", "store.create", "store.find_by_guid"}, names)
	require.NotEmpty(t, rec.GUID)

	spans := recorder.Ended()
	require.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID(), "save nests under create")
	require.Equal(t, "Error", spans[2].Status().Code.String())
}

func TestRecord_CaptureSizeMismatch(t *testing.T) {
	rec := &Record[int]{Width: 2, Height: 2}
	v := gridhistory.NewArrayView[int](3, 3)
	require.ErrorIs(t, rec.Capture(v), grid.ErrSizeMismatch)
}
