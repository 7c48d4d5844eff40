package respcache

import (
	"time"

	"github.com/dgraph-io/ristretto"
)

// LRUCache is a size-bounded response cache backed by ristretto.
type LRUCache struct {
	cache      *ristretto.Cache
	defaultTTL time.Duration
}

var _ Cache = (*LRUCache)(nil)

// NewLRU creates a response cache holding at most maxEntries responses and
// maxSizeMB megabytes of bodies, with defaultTTL applied to entries stored
// with a zero TTL.
func NewLRU(maxSizeMB int64, maxEntries int64, defaultTTL time.Duration) (*LRUCache, error) {
	// Ristretto wants ~10x the entry count of admission counters.
	numCounters := maxEntries * 10
	if numCounters < 1000 {
		numCounters = 1000
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxSizeMB * 1024 * 1024,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	return &LRUCache{
		cache:      cache,
		defaultTTL: defaultTTL,
	}, nil
}

// Get retrieves a cached response body by key.
func (c *LRUCache) Get(key string) ([]byte, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	body, ok := val.([]byte)
	if !ok {
		c.cache.Del(key)
		return nil, false
	}
	return body, true
}

// Set stores a response body under key. Ristretto expires it after ttl.
func (c *LRUCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	// Cost is the body size; admission may still reject the entry, which is
	// fine for a cache.
	_ = c.cache.SetWithTTL(key, value, int64(len(value)), ttl)

	// Wait for the value to pass through ristretto's buffers so a caller can
	// read its own write.
	c.cache.Wait()
}

// Delete removes a cached response.
func (c *LRUCache) Delete(key string) {
	c.cache.Del(key)
}

// Clear removes all cached responses.
func (c *LRUCache) Clear() {
	c.cache.Clear()
}

// Stats returns cache statistics.
func (c *LRUCache) Stats() Stats {
	m := c.cache.Metrics
	return Stats{
		Hits:      m.Hits(),
		Misses:    m.Misses(),
		KeysAdded: m.KeysAdded(),
		Evictions: m.KeysEvicted(),
		Size:      int64(m.CostAdded() - m.CostEvicted()),
		Items:     int64(m.KeysAdded() - m.KeysEvicted()),
	}
}

// Close releases the cache's resources.
func (c *LRUCache) Close() {
	c.cache.Close()
}
