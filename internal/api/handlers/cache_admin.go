package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/kroma-network/zkvm-common/internal/logger"
	"github.com/kroma-network/zkvm-common/internal/respcache"
)

// CacheAdminHandler handles response cache administration endpoints.
type CacheAdminHandler struct {
	cache respcache.Cache
}

// NewCacheAdminHandler creates a new cache admin handler.
func NewCacheAdminHandler(c respcache.Cache) *CacheAdminHandler {
	return &CacheAdminHandler{cache: c}
}

// InvalidateCache clears all entries from the response cache.
// POST /api/admin/cache/invalidate
func (h *CacheAdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear()
	logger.InfoContext(r.Context(), "Response cache invalidated")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"message": "Response cache invalidated",
	})
}

// GetCacheStats returns current response cache statistics.
// GET /api/admin/cache/stats
func (h *CacheAdminHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(h.cache.Stats())
}
