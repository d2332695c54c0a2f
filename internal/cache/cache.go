package cache

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

// Snapshot captures the invalidation state of a tag set at one point in
// time. A value computed after the snapshot was taken may be stored against
// it; the entry stays readable only while none of the snapshotted tags has
// been invalidated since. Storing against a pre-compute snapshot is what
// keeps a slow read that races a write from pinning stale data: the write's
// invalidation advances the tags, so the late Set lands already dead.
type Snapshot struct {
	Versions map[Tag]int64
}

// Backend is the storage the scoped cache memoizes into. Implementations
// must be safe for concurrent use.
type Backend interface {
	// Get returns the value stored for key, if every tag it was registered
	// under is still current.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Snapshot records the current invalidation state of tags.
	Snapshot(ctx context.Context, tags []Tag) (Snapshot, error)
	// Set stores value under key, registered against snap. The entry must
	// not be readable once any snapshotted tag is invalidated.
	Set(ctx context.Context, key string, value []byte, snap Snapshot) error
	// Invalidate evicts every entry registered under any of tags. After it
	// returns, reads for those entries miss.
	Invalidate(ctx context.Context, tags ...Tag) error
}

// Cache memoizes read operations under caller-supplied tag sets. It is an
// optimization layer only: every backend failure degrades to recomputing,
// never to an error or a stale result.
type Cache struct {
	backend Backend
	log     *zap.Logger
	metrics *Metrics
}

func New(backend Backend, log *zap.Logger, metrics *Metrics) *Cache {
	return &Cache{
		backend: backend,
		log:     log.Named("cache"),
		metrics: metrics,
	}
}

// Fetch memoizes compute under op and its arguments. Two calls with
// structurally equal args share one entry. tags is the full set of scopes
// the result depends on; WildcardTag is always added.
func Fetch[T any](ctx context.Context, c *Cache, op string, args any, tags []Tag, compute func(context.Context) (T, error)) (T, error) {
	var zero T

	key, err := entryKey(op, args)
	if err != nil {
		c.log.Warn("uncacheable arguments", zap.String("op", op), zap.Error(err))
		return compute(ctx)
	}

	if raw, ok, err := c.backend.Get(ctx, key); err != nil {
		c.metrics.errors.WithLabelValues("get").Inc()
		c.log.Warn("cache read failed", zap.String("op", op), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			c.metrics.hits.WithLabelValues(op).Inc()
			return v, nil
		}
		c.log.Warn("cache entry undecodable", zap.String("op", op), zap.Error(err))
	}
	c.metrics.misses.WithLabelValues(op).Inc()

	all := make([]Tag, 0, len(tags)+1)
	all = append(all, tags...)
	all = append(all, WildcardTag)

	snap, snapErr := c.backend.Snapshot(ctx, all)
	if snapErr != nil {
		c.metrics.errors.WithLabelValues("snapshot").Inc()
		c.log.Warn("cache snapshot failed", zap.String("op", op), zap.Error(snapErr))
	}

	v, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	if snapErr == nil {
		if raw, err := json.Marshal(v); err == nil {
			if err := c.backend.Set(ctx, key, raw, snap); err != nil {
				c.metrics.errors.WithLabelValues("set").Inc()
				c.log.Warn("cache write failed", zap.String("op", op), zap.Error(err))
			}
		}
	}
	return v, nil
}

// Invalidate evicts everything registered under any of tags. Failures are
// logged and counted, never surfaced: entries then live until their TTL or
// the next wildcard flush.
func (c *Cache) Invalidate(ctx context.Context, tags ...Tag) {
	if len(tags) == 0 {
		return
	}
	if err := c.backend.Invalidate(ctx, tags...); err != nil {
		c.metrics.errors.WithLabelValues("invalidate").Inc()
		c.log.Error("invalidation failed, stale entries may persist", zap.Error(err))
		return
	}
	c.metrics.invalidations.Add(float64(len(tags)))
}

// InvalidateScopes evicts the global scope of kind, plus the owner scope
// when ownerID is known and the entity scope when entityID is known. Every
// write path calls this after its commit.
func (c *Cache) InvalidateScopes(ctx context.Context, kind Kind, ownerID string, entityID snowflake.ID) {
	tags := []Tag{GlobalTag(kind)}
	if ownerID != "" {
		tags = append(tags, UserTag(ownerID, kind))
	}
	if entityID != 0 {
		tags = append(tags, IDTag(entityID, kind))
	}
	c.Invalidate(ctx, tags...)
}

// Flush evicts every entry via the wildcard tag.
func (c *Cache) Flush(ctx context.Context) {
	c.Invalidate(ctx, WildcardTag)
}

func entryKey(op string, args any) (string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return "", err
	}
	return op + ":" + string(raw), nil
}
