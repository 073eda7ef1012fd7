package embedding

import (
	"container/list"
	"slices"
	"sync"
)

// Cache is an LRU cache for embeddings keyed by text. Only model-produced
// embeddings are cached; fallback vectors are cheap to recompute and caching
// them would pin the degraded result past model recovery.
//
// A single mutex guards both the map and the recency list: even a hit
// reorders the list, so there is no read-only path to grant shared access to.
// Stored vectors are immutable; Set and Get copy so no caller holds a
// reference into the cache.
type Cache struct {
	capacity int
	mu       sync.Mutex
	entries  map[string]*list.Element
	recency  *list.List
}

type cacheEntry struct {
	key   string
	value []float32
}

// NewCache creates a cache with the given capacity.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		recency:  list.New(),
	}
}

// Get returns a copy of the cached embedding for key if present, marking the
// entry as most recently used.
func (c *Cache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.recency.MoveToFront(elem)
	return slices.Clone(elem.Value.(*cacheEntry).value), true
}

// Set stores a copy of value under key, evicting the least recently used
// entry if the cache is at capacity.
func (c *Cache) Set(key string, value []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.recency.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = slices.Clone(value)
		return
	}

	c.entries[key] = c.recency.PushFront(&cacheEntry{key: key, value: slices.Clone(value)})
	if c.recency.Len() > c.capacity {
		if oldest := c.recency.Back(); oldest != nil {
			c.recency.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).key)
		}
	}
}
