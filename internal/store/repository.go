package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/log"
	"github.com/zjrosen/gridhist/internal/tracing"
)

const historyColumns = `id, guid, name, width, height, auto_compress, cursor, cells, created_at, updated_at`

// Repository stores histories whose cell values are of type T.
// Values are JSON-encoded, so T must round-trip through encoding/json.
type Repository[T comparable] struct {
	db     *sql.DB
	tracer trace.Tracer
	now    func() time.Time
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*repositoryOptions)

type repositoryOptions struct {
	tracer trace.Tracer
	now    func() time.Time
}

// WithTracer records a span per repository call.
func WithTracer(t trace.Tracer) RepositoryOption {
	return func(o *repositoryOptions) { o.tracer = t }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) RepositoryOption {
	return func(o *repositoryOptions) { o.now = now }
}

// NewRepository returns a repository over db.
func NewRepository[T comparable](db *DB, opts ...RepositoryOption) *Repository[T] {
	o := repositoryOptions{tracer: tracing.Noop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Repository[T]{db: db.conn, tracer: o.tracer, now: o.now}
}

// scanHistory scans a row into a historyModel.
func scanHistory(scanner interface{ Scan(...any) error }) (*historyModel, error) {
	var m historyModel
	err := scanner.Scan(
		&m.ID, &m.GUID, &m.Name, &m.Width, &m.Height, &m.AutoCompress,
		&m.Cursor, &m.Cells, &m.CreatedAt, &m.UpdatedAt,
	)
	return &m, err
}

func (r *Repository[T]) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, tracing.SpanPrefixStore+op, trace.WithAttributes(attrs...))
}

// Create inserts a new history with no diffs. cells may be nil for a grid of zero values;
// otherwise it must hold width*height row-major values.
func (r *Repository[T]) Create(ctx context.Context, name string, width, height int, cells []T) (rec *Record[T], err error) {
	ctx, span := r.start(ctx, "create",
		attribute.String(tracing.AttrHistoryName, name),
		attribute.Int(tracing.AttrGridWidth, width),
		attribute.Int(tracing.AttrGridHeight, height),
	)
	defer func() { tracing.End(span, err) }()

	if name == "" {
		return nil, errors.New("history name is required")
	}
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}
	if cells == nil {
		cells = make([]T, width*height)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("%d cells for %dx%d grid", len(cells), width, height)
	}

	now := r.now()
	rec = &Record[T]{
		GUID:         uuid.New().String(),
		Name:         name,
		Width:        width,
		Height:       height,
		AutoCompress: true,
		Cells:        append([]T(nil), cells...),
		Cursor:       -1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.Save(ctx, rec); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String(tracing.AttrHistoryGUID, rec.GUID))
	return rec, nil
}

// Save persists rec. New records (ID == 0) are inserted and receive an ID;
// existing records are updated and their diff log replaced.
func (r *Repository[T]) Save(ctx context.Context, rec *Record[T]) (err error) {
	ctx, span := r.start(ctx, "save",
		attribute.String(tracing.AttrHistoryGUID, rec.GUID),
		attribute.Int(tracing.AttrDiffCount, len(rec.Diffs)),
		attribute.Int(tracing.AttrCursor, rec.Cursor),
	)
	defer func() { tracing.End(span, err) }()

	if len(rec.Diffs) == 0 {
		if rec.Cursor != -1 {
			return fmt.Errorf("%w: cursor %d with no diffs", gridhistory.ErrIndexOutOfRange, rec.Cursor)
		}
	} else if err := gridhistory.CheckHistory(rec.Diffs, rec.Cursor); err != nil {
		return fmt.Errorf("refusing to save history %s: %w", rec.GUID, err)
	}
	if len(rec.Cells) != rec.Width*rec.Height {
		return fmt.Errorf("%d cells for %dx%d grid", len(rec.Cells), rec.Width, rec.Height)
	}

	now := r.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.ID != 0 || rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}

	model, err := toHistoryModel(rec)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if rec.ID == 0 {
		result, err := tx.ExecContext(ctx,
			`INSERT INTO histories (guid, name, width, height, auto_compress, cursor, cells, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			model.GUID, model.Name, model.Width, model.Height, model.AutoCompress,
			model.Cursor, model.Cells, model.CreatedAt, model.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert history: %w", err)
		}
		model.ID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
	} else {
		result, err := tx.ExecContext(ctx,
			`UPDATE histories SET name = ?, auto_compress = ?, cursor = ?, cells = ?, updated_at = ?
			WHERE id = ?`,
			model.Name, model.AutoCompress, model.Cursor, model.Cells, model.UpdatedAt, model.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update history: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil && n == 0 {
			return &NotFoundError{Ref: rec.GUID}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM diffs WHERE history_id = ?`, model.ID); err != nil {
			return fmt.Errorf("failed to clear diffs: %w", err)
		}
	}

	changes := 0
	for seq, d := range rec.Diffs {
		rows, err := toChangeModels(seq, d)
		if err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx,
			`INSERT INTO diffs (history_id, seq) VALUES (?, ?)`, model.ID, seq)
		if err != nil {
			return fmt.Errorf("failed to insert diff %d: %w", seq, err)
		}
		diffID, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		for i, c := range rows {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO changes (diff_id, seq, x, y, old_value, new_value) VALUES (?, ?, ?, ?, ?, ?)`,
				diffID, i, c.X, c.Y, c.OldValue, c.NewValue,
			); err != nil {
				return fmt.Errorf("failed to insert diff %d change %d: %w", seq, i, err)
			}
		}
		changes += len(rows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit history: %w", err)
	}

	rec.ID = model.ID
	span.SetAttributes(attribute.Int(tracing.AttrChangeCount, changes))
	log.Debug(log.CatStore, "Saved history", "guid", rec.GUID, "diffs", len(rec.Diffs), "changes", changes)
	return nil
}

// FindByGUID loads a history with its full diff log.
// Returns NotFoundError if no history has the GUID.
func (r *Repository[T]) FindByGUID(ctx context.Context, guid string) (rec *Record[T], err error) {
	ctx, span := r.start(ctx, "find_by_guid", attribute.String(tracing.AttrHistoryGUID, guid))
	defer func() { tracing.End(span, err) }()

	row := r.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM histories WHERE guid = ?`, guid)
	return r.load(ctx, row, guid)
}

// FindByName loads a history by its unique name.
func (r *Repository[T]) FindByName(ctx context.Context, name string) (rec *Record[T], err error) {
	ctx, span := r.start(ctx, "find_by_name", attribute.String(tracing.AttrHistoryName, name))
	defer func() { tracing.End(span, err) }()

	row := r.db.QueryRowContext(ctx, `SELECT `+historyColumns+` FROM histories WHERE name = ?`, name)
	return r.load(ctx, row, name)
}

// Resolve loads a history by GUID, falling back to name.
func (r *Repository[T]) Resolve(ctx context.Context, ref string) (*Record[T], error) {
	rec, err := r.FindByGUID(ctx, ref)
	if errors.Is(err, ErrNotFound) {
		return r.FindByName(ctx, ref)
	}
	return rec, err
}

func (r *Repository[T]) load(ctx context.Context, row *sql.Row, ref string) (*Record[T], error) {
	model, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Ref: ref}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find history: %w", err)
	}
	rec, err := toRecord[T](model)
	if err != nil {
		return nil, err
	}
	rec.Diffs, err = r.loadDiffs(ctx, model.ID)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *Repository[T]) loadDiffs(ctx context.Context, historyID int64) ([]*gridhistory.Diff[T], error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM diffs WHERE history_id = ?`, historyID,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count diffs: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT d.seq, c.x, c.y, c.old_value, c.new_value
		FROM diffs d JOIN changes c ON c.diff_id = d.id
		WHERE d.history_id = ?
		ORDER BY d.seq, c.seq`,
		historyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	perDiff := make([][]gridhistory.ValueChange[T], count)
	for rows.Next() {
		var m changeModel
		if err := rows.Scan(&m.DiffSeq, &m.X, &m.Y, &m.OldValue, &m.NewValue); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		if m.DiffSeq < 0 || m.DiffSeq >= count {
			return nil, fmt.Errorf("diff sequence %d out of range for %d diffs", m.DiffSeq, count)
		}
		c, err := fromChangeModel[T](m)
		if err != nil {
			return nil, fmt.Errorf("diff %d: %w", m.DiffSeq, err)
		}
		perDiff[m.DiffSeq] = append(perDiff[m.DiffSeq], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate changes: %w", err)
	}

	diffs := make([]*gridhistory.Diff[T], count)
	for i, changes := range perDiff {
		d := gridhistory.NewDiff[T]()
		for j, c := range changes {
			if err := d.Add(c); err != nil {
				return nil, fmt.Errorf("diff %d change %d: %w", i, j, err)
			}
		}
		diffs[i] = d
	}
	return diffs, nil
}

// List returns summaries of all histories, most recently updated first.
func (r *Repository[T]) List(ctx context.Context) (out []Summary, err error) {
	ctx, span := r.start(ctx, "list")
	defer func() { tracing.End(span, err) }()

	rows, err := r.db.QueryContext(ctx,
		`SELECT h.guid, h.name, h.width, h.height, h.cursor, h.updated_at,
			(SELECT COUNT(*) FROM diffs d WHERE d.history_id = h.id)
		FROM histories h
		ORDER BY h.updated_at DESC, h.id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out = []Summary{}
	for rows.Next() {
		var s Summary
		var updatedAt int64
		if err := rows.Scan(&s.GUID, &s.Name, &s.Width, &s.Height, &s.Cursor, &updatedAt, &s.DiffCount); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		s.UpdatedAt = time.Unix(updatedAt, 0)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate histories: %w", err)
	}
	return out, nil
}

// Delete removes a history and its diff log.
// Returns NotFoundError if no history has the GUID.
func (r *Repository[T]) Delete(ctx context.Context, guid string) (err error) {
	ctx, span := r.start(ctx, "delete", attribute.String(tracing.AttrHistoryGUID, guid))
	defer func() { tracing.End(span, err) }()

	result, err := r.db.ExecContext(ctx, `DELETE FROM histories WHERE guid = ?`, guid)
	if err != nil {
		return fmt.Errorf("failed to delete history: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &NotFoundError{Ref: guid}
	}
	log.Info(log.CatStore, "Deleted history", "guid", guid)
	return nil
}
