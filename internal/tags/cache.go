package tags

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Cache holds a time-boxed copy of the canonical snapshot and its index.
// It is process-local: concurrent instances each hold independent copies,
// so staleness up to the TTL window is expected across a fleet.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	index    *Index
	snapshot *Snapshot
	loadedAt time.Time
}

// NewCache creates a snapshot cache over the given store. A nil clock
// uses time.Now.
func NewCache(store Store, ttl time.Duration, logger *slog.Logger, clock func() time.Time) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger.With("system", "tags"),
		now:    clock,
	}
}

// Index returns the current tag index, reloading the snapshot when the
// cached copy has expired. If the reload fails and a previously cached
// copy exists, the stale copy is served and the failure logged.
func (c *Cache) Index(ctx context.Context) (*Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.index != nil && c.now().Sub(c.loadedAt) < c.ttl {
		return c.index, nil
	}

	snap, err := c.store.Load(ctx)
	if err != nil {
		if c.index != nil {
			c.logger.Warn("snapshot refresh failed, serving stale copy",
				"error", err,
				"age", c.now().Sub(c.loadedAt),
			)
			return c.index, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrCacheLoad, err)
	}

	idx := BuildIndex(snap.Tags)
	if idx.AliasCollisions() > 0 {
		c.logger.Warn("alias collisions in snapshot",
			"collisions", idx.AliasCollisions(),
			"version", snap.Version,
		)
	}

	c.index = idx
	c.snapshot = snap
	c.loadedAt = c.now()

	c.logger.Info("snapshot loaded",
		"version", snap.Version,
		"tags", len(snap.Tags),
	)

	return c.index, nil
}

// Snapshot returns the cached snapshot, loading it if necessary.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	if _, err := c.Index(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot, nil
}

// Invalidate drops the cached copy so the next read reloads from the store.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.index = nil
	c.snapshot = nil
	c.loadedAt = time.Time{}
}
