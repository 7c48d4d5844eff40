package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kroma-network/zkvm-common/internal/respcache"
)

func TestInvalidateCache(t *testing.T) {
	cache := respcache.NewMockCache()
	cache.Set("witness:aa:bb", []byte("cached"), 0)
	h := NewCacheAdminHandler(cache)

	rr := httptest.NewRecorder()
	h.InvalidateCache(rr, httptest.NewRequest(http.MethodPost, "/api/admin/cache/invalidate", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if _, ok := cache.Get("witness:aa:bb"); ok {
		t.Error("cache entry survived invalidation")
	}
}

func TestGetCacheStats(t *testing.T) {
	cache := respcache.NewMockCache()
	h := NewCacheAdminHandler(cache)

	rr := httptest.NewRecorder()
	h.GetCacheStats(rr, httptest.NewRequest(http.MethodGet, "/api/admin/cache/stats", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var stats respcache.Stats
	if err := json.Unmarshal(rr.Body.Bytes(), &stats); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
}
