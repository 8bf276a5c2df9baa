// Package cachemanager keeps recently loaded histories in memory. watch --store
// reloads through it whenever the store file changes, and only drops a history
// once its own listing entry changed, so writes to other histories are served
// from memory.
package cachemanager

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/gridhist/internal/gridhistory"
	"github.com/zjrosen/gridhist/internal/log"
	"github.com/zjrosen/gridhist/internal/store"
)

const DefaultExpiration = 10 * time.Minute
const DefaultCleanupInterval = 30 * time.Minute

// LoadFunc loads a record by GUID or name, typically Repository.Resolve.
type LoadFunc[T comparable] func(ctx context.Context, ref string) (*store.Record[T], error)

// RecordCache is a read-through cache of history records keyed by GUID and name.
// Callers always receive a private copy, so mutating a returned record never
// changes what the cache holds.
type RecordCache[T comparable] struct {
	cache  *gocache.Cache
	ttl    time.Duration
	load   LoadFunc[T]
	skip   bool
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRecordCache creates a cache in front of load. When skip is true every Get
// goes straight to load.
func NewRecordCache[T comparable](load LoadFunc[T], ttl, cleanupInterval time.Duration, skip bool) *RecordCache[T] {
	return &RecordCache[T]{
		cache: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
		load:  load,
		skip:  skip,
	}
}

func guidKey(guid string) string { return "guid:" + guid }
func nameKey(name string) string { return "name:" + name }

// Get returns the record for ref, loading and caching it on a miss.
func (c *RecordCache[T]) Get(ctx context.Context, ref string) (*store.Record[T], error) {
	if !c.skip {
		if rec, ok := c.lookup(ref); ok {
			c.hits.Add(1)
			log.Debug(log.CatCache, "cache hit", "ref", ref)
			return copyRecord(rec), nil
		}
	}

	c.misses.Add(1)
	rec, err := c.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !c.skip {
		c.Put(rec)
	}
	return copyRecord(rec), nil
}

func (c *RecordCache[T]) lookup(ref string) (*store.Record[T], bool) {
	for _, key := range []string{guidKey(ref), nameKey(ref)} {
		value, found := c.cache.Get(key)
		if !found {
			continue
		}
		rec, ok := value.(*store.Record[T])
		if !ok {
			log.Error(log.CatCache, "wrong type assertion when getting value", "key", key)
			continue
		}
		return rec, true
	}
	return nil, false
}

// Put stores a copy of rec under its GUID and name, replacing any older entry.
func (c *RecordCache[T]) Put(rec *store.Record[T]) {
	stored := copyRecord(rec)
	c.cache.Set(guidKey(rec.GUID), stored, c.ttl)
	c.cache.Set(nameKey(rec.Name), stored, c.ttl)
}

// Invalidate drops rec's entries. Call it after Save or Delete.
func (c *RecordCache[T]) Invalidate(rec *store.Record[T]) {
	c.cache.Delete(guidKey(rec.GUID))
	c.cache.Delete(nameKey(rec.Name))
}

// Flush empties the cache.
func (c *RecordCache[T]) Flush() {
	c.cache.Flush()
}

// Stats returns the hit and miss counters.
func (c *RecordCache[T]) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func copyRecord[T comparable](rec *store.Record[T]) *store.Record[T] {
	out := *rec
	out.Cells = append([]T(nil), rec.Cells...)
	if rec.Diffs != nil {
		out.Diffs = make([]*gridhistory.Diff[T], len(rec.Diffs))
		for i, d := range rec.Diffs {
			out.Diffs[i] = d.Clone()
		}
	}
	return &out
}
