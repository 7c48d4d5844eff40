package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/kroma-network/zkvm-common/internal/api"
	"github.com/kroma-network/zkvm-common/internal/config"
	"github.com/kroma-network/zkvm-common/internal/filedb"
	"github.com/kroma-network/zkvm-common/internal/logger"
	"github.com/kroma-network/zkvm-common/internal/metrics"
	"github.com/kroma-network/zkvm-common/internal/middleware"
	"github.com/kroma-network/zkvm-common/internal/respcache"
)

// collectInterval is how often gauge metrics are refreshed from the store.
const collectInterval = 15 * time.Second

// Server ties the HTTP listener to the store, the response cache and the
// background pieces that live and die with it.
type Server struct {
	httpServer *http.Server
	limiter    *middleware.RateLimiter
	collector  *metrics.Collector
	listener   net.Listener
}

// New assembles the HTTP server around an open store and cache.
func New(cfg *config.Config, store *filedb.DB, cache respcache.Cache) *Server {
	var limiter *middleware.RateLimiter
	if cfg.EnableRateLimit {
		limiter = middleware.NewRateLimiter(
			cfg.RateLimitGlobal, cfg.RateLimitGlobalBurst,
			cfg.RateLimitPerIP, cfg.RateLimitPerIPBurst,
		)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      api.NewRouter(store, cache, cfg, limiter),
			ReadTimeout:  cfg.HTTPReadTimeout,
			WriteTimeout: cfg.HTTPWriteTimeout,
		},
		limiter:   limiter,
		collector: metrics.NewCollector(store, cache, collectInterval),
	}
}

// Listen binds the configured address. Call before Serve.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Serve blocks serving requests until Shutdown. A clean close returns nil.
func (s *Server) Serve(ctx context.Context) error {
	go s.collector.Start(ctx)

	logger.Info("HTTP server listening", "addr", s.Addr())
	err := s.httpServer.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the background pieces.
// Call it once.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	s.collector.Stop()
	return s.httpServer.Shutdown(ctx)
}
