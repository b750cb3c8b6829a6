// Package cache provides the LRU block cache shared by table readers.
package cache

import (
	"container/list"
	"expvar"
	"sync"
)

type cacheEntry struct {
	key   string
	value []byte
}

// LRUCache is a fixed-capacity LRU cache of decompressed blocks. A
// capacity of zero disables caching entirely; every Get misses and Put is
// a no-op.
type LRUCache struct {
	mu         sync.Mutex
	capacity   int
	lruList    *list.List
	cacheItems map[string]*list.Element
	onEvicted  func(key string, value []byte)

	localHits   uint64
	localMisses uint64
	hits        *expvar.Int
	misses      *expvar.Int
}

var _ Interface = (*LRUCache)(nil)

// NewLRUCache creates an LRU cache holding up to capacity blocks.
// onEvicted, if non-nil, is invoked with the cache lock held; keep it cheap.
func NewLRUCache(capacity int, onEvicted func(key string, value []byte)) *LRUCache {
	return &LRUCache{
		capacity:   capacity,
		lruList:    list.New(),
		cacheItems: make(map[string]*list.Element),
		onEvicted:  onEvicted,
	}
}

// SetMetrics attaches expvar counters that mirror the internal hit/miss
// tallies.
func (c *LRUCache) SetMetrics(hits, misses *expvar.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits = hits
	c.misses = misses
}

// Get retrieves a block and marks it most recently used.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity <= 0 {
		return nil, false
	}
	if elem, ok := c.cacheItems[key]; ok {
		c.localHits++
		if c.hits != nil {
			c.hits.Add(1)
		}
		c.lruList.MoveToFront(elem)
		return elem.Value.(*cacheEntry).value, true
	}
	c.localMisses++
	if c.misses != nil {
		c.misses.Add(1)
	}
	return nil, false
}

// Put inserts or refreshes a block, evicting the least recently used entry
// when full.
func (c *LRUCache) Put(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity <= 0 {
		return
	}
	if elem, ok := c.cacheItems[key]; ok {
		c.lruList.MoveToFront(elem)
		elem.Value.(*cacheEntry).value = value
		return
	}
	if c.lruList.Len() >= c.capacity {
		c.evict()
	}
	elem := c.lruList.PushFront(&cacheEntry{key: key, value: value})
	c.cacheItems[key] = elem
}

// evict removes the LRU entry. Caller holds the lock.
func (c *LRUCache) evict() {
	elem := c.lruList.Back()
	if elem == nil {
		return
	}
	c.lruList.Remove(elem)
	entry := elem.Value.(*cacheEntry)
	delete(c.cacheItems, entry.key)
	if c.onEvicted != nil {
		c.onEvicted(entry.key, entry.value)
	}
}

// Clear drops every entry without running eviction callbacks.
func (c *LRUCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lruList.Init()
	c.cacheItems = make(map[string]*list.Element)
}

// Len reports the number of cached blocks.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lruList.Len()
}

// GetHitRate reports hits/(hits+misses) since creation.
func (c *LRUCache) GetHitRate() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.localHits + c.localMisses
	if total == 0 {
		return 0
	}
	return float64(c.localHits) / float64(total)
}
