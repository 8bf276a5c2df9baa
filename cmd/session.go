package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/zjrosen/gridhist/internal/cachemanager"
	"github.com/zjrosen/gridhist/internal/config"
	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/log"
	"github.com/zjrosen/gridhist/internal/render"
	"github.com/zjrosen/gridhist/internal/store"
	"github.com/zjrosen/gridhist/internal/tracing"
)

// session holds the resources one command invocation needs.
type session struct {
	cfg     config.Config
	db      *store.DB
	repo    *store.Repository[string]
	cache   *cachemanager.RecordCache[string]
	tracing *tracing.Provider
	logDone func()
}

func openSession() (*session, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &session{cfg: cfg, logDone: func() {}}

	if cfg.Log.Enabled {
		done, err := log.Init(cfg.Log.Path)
		if err != nil {
			return nil, fmt.Errorf("opening log: %w", err)
		}
		level, _ := log.ParseLevel(cfg.Log.Level)
		log.SetMinLevel(level)
		s.logDone = done
	}

	provider, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		s.logDone()
		return nil, fmt.Errorf("starting tracing: %w", err)
	}
	s.tracing = provider

	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		s.logDone()
		return nil, err
	}
	s.db = db
	s.repo = store.NewRepository[string](db, store.WithTracer(provider.Tracer()))
	s.cache = cachemanager.NewRecordCache[string](s.repo.Resolve,
		cfg.Cache.TTL, cfg.Cache.CleanupInterval, !cfg.Cache.Enabled)

	log.Debug(log.CatCLI, "Session opened", "db", cfg.DBPath)
	return s, nil
}

func (s *session) Close() error {
	err := errors.Join(
		s.db.Close(),
		s.tracing.Shutdown(context.Background()),
	)
	s.logDone()
	return err
}

// load resolves ref (GUID or name) and rebuilds its view.
func (s *session) load(ctx context.Context, ref string, opts ...gridhistory.Option) (*store.Record[string], *gridhistory.View[string], error) {
	rec, err := s.cache.Get(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	v, err := rec.View(opts...)
	if err != nil {
		return nil, nil, err
	}
	return rec, v, nil
}

// save captures v into rec and persists it.
func (s *session) save(ctx context.Context, rec *store.Record[string], v *gridhistory.View[string]) error {
	if err := rec.Capture(v); err != nil {
		return err
	}
	s.cache.Invalidate(rec)
	return s.repo.Save(ctx, rec)
}

func (s *session) renderOptions() render.Options {
	return render.Options{
		EmptyGlyph:      s.cfg.Render.EmptyGlyph,
		ShowCoordinates: s.cfg.Render.ShowCoordinates,
	}
}
