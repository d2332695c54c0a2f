package cache

import (
	"context"
	"sync"
)

type memoryEntry struct {
	value    []byte
	versions map[Tag]int64
}

// MemoryBackend keeps entries in-process. It serves single-node deployments
// and tests; the redis backend is the distributed equivalent. Invalidation
// both bumps tag versions (so racing Sets land dead) and sweeps the tag's
// entries eagerly.
type MemoryBackend struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	byTag    map[Tag]map[string]struct{}
	versions map[Tag]int64
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries:  make(map[string]memoryEntry),
		byTag:    make(map[Tag]map[string]struct{}),
		versions: make(map[Tag]int64),
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[key]
	if !ok {
		return nil, false, nil
	}
	for tag, v := range e.versions {
		if b.versions[tag] != v {
			return nil, false, nil
		}
	}
	return e.value, true, nil
}

func (b *MemoryBackend) Snapshot(_ context.Context, tags []Tag) (Snapshot, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	versions := make(map[Tag]int64, len(tags))
	for _, tag := range tags {
		versions[tag] = b.versions[tag]
	}
	return Snapshot{Versions: versions}, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, snap Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.drop(key)
	b.entries[key] = memoryEntry{value: value, versions: snap.Versions}
	for tag := range snap.Versions {
		keys, ok := b.byTag[tag]
		if !ok {
			keys = make(map[string]struct{})
			b.byTag[tag] = keys
		}
		keys[key] = struct{}{}
	}
	return nil
}

func (b *MemoryBackend) Invalidate(_ context.Context, tags ...Tag) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, tag := range tags {
		b.versions[tag]++
		for key := range b.byTag[tag] {
			b.drop(key)
		}
	}
	return nil
}

// drop removes key and its tag-index memberships. Callers hold the lock.
func (b *MemoryBackend) drop(key string) {
	e, ok := b.entries[key]
	if !ok {
		return
	}
	delete(b.entries, key)
	for tag := range e.versions {
		if keys, ok := b.byTag[tag]; ok {
			delete(keys, key)
			if len(keys) == 0 {
				delete(b.byTag, tag)
			}
		}
	}
}

// Len reports the live entry count. Test helper.
func (b *MemoryBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
