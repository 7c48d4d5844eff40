package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kroma-network/zkvm-common/internal/api/handlers"
	"github.com/kroma-network/zkvm-common/internal/config"
	"github.com/kroma-network/zkvm-common/internal/filedb"
	"github.com/kroma-network/zkvm-common/internal/middleware"
	"github.com/kroma-network/zkvm-common/internal/respcache"
)

// NewRouter wires the witness store endpoints and their middleware.
// limiter may be nil to disable rate limiting.
func NewRouter(store *filedb.DB, cache respcache.Cache, cfg *config.Config, limiter *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.SecurityHeaders)

	// Probes and scrapes bypass rate limiting and compression.
	r.HandleFunc("/healthz", handlers.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Metrics)
	if limiter != nil {
		api.Use(limiter.Limit)
	}
	// ETag runs inside Compress: the hash covers the handler's bytes,
	// not the encoded stream.
	api.Use(
		middleware.MaxBody(int64(cfg.MaxBodyMB)<<20),
		middleware.Compress,
		middleware.ETag,
	)

	wh := handlers.NewWitnessHandler(store, cache, cfg.ResponseCacheTTL)
	api.HandleFunc("/witness/{l2_hash}/{l1_head_hash}", wh.Get).Methods(http.MethodGet)
	api.HandleFunc("/witness/{l2_hash}/{l1_head_hash}", wh.Put).Methods(http.MethodPut)
	api.HandleFunc("/witness/{l2_hash}/{l1_head_hash}", wh.Delete).Methods(http.MethodDelete)

	sh := handlers.NewStatsHandler(store, cache)
	api.HandleFunc("/store/stats", sh.GetStats).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireBearer(cfg.AdminAPIToken))
	ch := handlers.NewCacheAdminHandler(cache)
	admin.HandleFunc("/cache/invalidate", ch.InvalidateCache).Methods(http.MethodPost)
	admin.HandleFunc("/cache/stats", ch.GetCacheStats).Methods(http.MethodGet)

	return r
}
