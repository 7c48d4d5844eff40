package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kroma-network/zkvm-common/internal/filedb"
	"github.com/kroma-network/zkvm-common/internal/respcache"
)

// StoreStatsReader exposes the store counters the stats endpoint reports.
type StoreStatsReader interface {
	Stats() filedb.Stats
}

// StatsHandler reports store and response cache statistics.
type StatsHandler struct {
	store StoreStatsReader
	cache respcache.Cache
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(store StoreStatsReader, cache respcache.Cache) *StatsHandler {
	return &StatsHandler{store: store, cache: cache}
}

// GetStats returns a snapshot of store and response cache counters.
// GET /api/store/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"store":          h.store.Stats(),
		"response_cache": h.cache.Stats(),
	})
}
