package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisEntryPrefix = "cache:entry:"
	redisTagPrefix   = "cache:tag:"

	// Entries expire even when never invalidated; the TTL is also the
	// staleness boundary when an invalidation could not be confirmed.
	defaultEntryTTL = 24 * time.Hour
)

// redisEnvelope is the stored representation: the payload plus the version
// of every tag the entry was registered under at snapshot time.
type redisEnvelope struct {
	Versions map[Tag]int64   `json:"v"`
	Payload  json.RawMessage `json:"p"`
}

// RedisBackend implements tag scoping with per-tag version counters:
// invalidating a tag INCRs its counter, which orphans every envelope that
// recorded an older version. Orphans are deleted lazily on read and by TTL.
type RedisBackend struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	if ttl <= 0 {
		ttl = defaultEntryTTL
	}
	return &RedisBackend{client: client, ttl: ttl}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := b.client.Get(ctx, redisEntryPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// Unreadable envelope: treat as a miss and reclaim the key.
		b.client.Del(ctx, redisEntryPrefix+key)
		return nil, false, nil
	}

	current, err := b.tagVersions(ctx, tagsOf(env.Versions))
	if err != nil {
		return nil, false, err
	}
	for tag, v := range env.Versions {
		if current[tag] != v {
			b.client.Del(ctx, redisEntryPrefix+key)
			return nil, false, nil
		}
	}
	return env.Payload, true, nil
}

func (b *RedisBackend) Snapshot(ctx context.Context, tags []Tag) (Snapshot, error) {
	versions, err := b.tagVersions(ctx, tags)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Versions: versions}, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, snap Snapshot) error {
	env := redisEnvelope{Versions: snap.Versions, Payload: value}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, redisEntryPrefix+key, raw, b.ttl).Err()
}

func (b *RedisBackend) Invalidate(ctx context.Context, tags ...Tag) error {
	pipe := b.client.Pipeline()
	for _, tag := range tags {
		pipe.Incr(ctx, redisTagPrefix+string(tag))
	}
	_, err := pipe.Exec(ctx)
	return err
}

// tagVersions reads the current counter of every tag; absent counters are
// version 0 (never invalidated).
func (b *RedisBackend) tagVersions(ctx context.Context, tags []Tag) (map[Tag]int64, error) {
	if len(tags) == 0 {
		return map[Tag]int64{}, nil
	}
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = redisTagPrefix + string(tag)
	}
	vals, err := b.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	versions := make(map[Tag]int64, len(tags))
	for i, tag := range tags {
		switch v := vals[i].(type) {
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, err
			}
			versions[tag] = n
		default:
			versions[tag] = 0
		}
	}
	return versions, nil
}

func tagsOf(versions map[Tag]int64) []Tag {
	tags := make([]Tag, 0, len(versions))
	for tag := range versions {
		tags = append(tags, tag)
	}
	return tags
}
