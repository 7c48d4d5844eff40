package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kroma-network/zkvm-common/internal/respcache"
)

type fakeStore struct{ n int }

func (f *fakeStore) Len() int { return f.n }

func TestCollectorCollectsEntryCount(t *testing.T) {
	store := &fakeStore{n: 7}
	c := NewCollector(store, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	// The initial collection happens before the first tick.
	deadline := time.After(2 * time.Second)
	for testutil.ToFloat64(StoreEntries) != 7 {
		select {
		case <-deadline:
			t.Fatalf("StoreEntries = %v, want 7", testutil.ToFloat64(StoreEntries))
		case <-time.After(10 * time.Millisecond):
		}
	}

	c.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("collector did not stop")
	}
}

func TestCollectorContextCancellation(t *testing.T) {
	c := NewCollector(&fakeStore{}, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("collector did not exit on context cancellation")
	}
}

type fakeCache struct{ stats respcache.Stats }

func (f *fakeCache) Stats() respcache.Stats { return f.stats }

func TestCollectorCollectsCacheGauges(t *testing.T) {
	cache := &fakeCache{stats: respcache.Stats{Size: 2048, Items: 3}}
	c := NewCollector(&fakeStore{n: 1}, cache, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)
	defer c.Stop()

	deadline := time.After(2 * time.Second)
	for testutil.ToFloat64(ResponseCacheItems) != 3 {
		select {
		case <-deadline:
			t.Fatalf("ResponseCacheItems = %v, want 3", testutil.ToFloat64(ResponseCacheItems))
		case <-time.After(10 * time.Millisecond):
		}
	}
	if got := testutil.ToFloat64(ResponseCacheSize); got != 2048 {
		t.Errorf("ResponseCacheSize = %v, want 2048", got)
	}
}
