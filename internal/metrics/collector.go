package metrics

import (
	"context"
	"time"

	"github.com/kroma-network/zkvm-common/internal/respcache"
)

// EntryCounter reports the number of live entries in the witness store.
type EntryCounter interface {
	Len() int
}

// ResponseCacheReader exposes response cache statistics for polling.
type ResponseCacheReader interface {
	Stats() respcache.Stats
}

// Collector periodically refreshes gauge metrics from the witness store
// and the response cache.
type Collector struct {
	store    EntryCounter
	cache    ResponseCacheReader
	interval time.Duration
	stop     chan struct{}
}

// NewCollector creates a new metrics collector. cache may be nil.
func NewCollector(store EntryCounter, cache ResponseCacheReader, interval time.Duration) *Collector {
	return &Collector{
		store:    store,
		cache:    cache,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Collect initial metrics
	c.collect()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the metrics collector
func (c *Collector) Stop() {
	close(c.stop)
}

func (c *Collector) collect() {
	StoreEntries.Set(float64(c.store.Len()))

	if c.cache != nil {
		s := c.cache.Stats()
		ResponseCacheSize.Set(float64(s.Size))
		ResponseCacheItems.Set(float64(s.Items))
	}
}
