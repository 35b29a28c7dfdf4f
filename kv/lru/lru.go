package lru

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
	"github.com/yaoapp/filmgraph/kv"
)

// Cache an ARC cache of read results
type Cache struct {
	arc        *lru.ARCCache
	hits       atomic.Uint64
	misses     atomic.Uint64
	generation atomic.Uint64 // bumped by Clear
	mu         sync.Mutex    // orders Clear against the store of a loaded value
}

// New create a new LRU cache holding at most size entries
func New(size int) (*Cache, error) {
	arc, err := lru.NewARC(size)
	if err != nil {
		return nil, err
	}
	return &Cache{arc: arc}, nil
}

// Get looks up a key's value from the cache.
func (cache *Cache) Get(key string) (value any, ok bool) {
	value, ok = cache.arc.Get(key)
	if ok {
		cache.hits.Add(1)
	} else {
		cache.misses.Add(1)
	}
	return value, ok
}

// Set adds a value to the cache.
func (cache *Cache) Set(key string, value any) {
	cache.arc.Add(key, value)
}

// Clear purges every entry and resets the counters. Values being loaded by GetSet
// when Clear runs are returned to their caller but not stored.
func (cache *Cache) Clear() {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.generation.Add(1)
	cache.arc.Purge()
	cache.hits.Store(0)
	cache.misses.Store(0)
}

// GetSet looks up a key's value from the cache. if it does not exist, getValue fills it.
// Errors are returned and not cached.
func (cache *Cache) GetSet(key string, getValue func(key string) (any, error)) (any, error) {
	if value, ok := cache.Get(key); ok {
		return value, nil
	}

	generation := cache.generation.Load()
	value, err := getValue(key)
	if err != nil {
		return nil, err
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if cache.generation.Load() == generation {
		cache.Set(key, value)
	}
	return value, nil
}

// Stats returns the hit and miss counters
func (cache *Cache) Stats() kv.Stats {
	return kv.Stats{
		Hits:    cache.hits.Load(),
		Misses:  cache.misses.Load(),
		Entries: cache.arc.Len(),
	}
}

var _ kv.Store = (*Cache)(nil)
