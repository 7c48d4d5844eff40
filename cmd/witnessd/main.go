package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kroma-network/zkvm-common/internal/config"
	"github.com/kroma-network/zkvm-common/internal/engine"
	"github.com/kroma-network/zkvm-common/internal/errorreporting"
	"github.com/kroma-network/zkvm-common/internal/filedb"
	"github.com/kroma-network/zkvm-common/internal/integrity"
	"github.com/kroma-network/zkvm-common/internal/logger"
	"github.com/kroma-network/zkvm-common/internal/respcache"
	"github.com/kroma-network/zkvm-common/internal/scheduler"
	"github.com/kroma-network/zkvm-common/internal/secrets"
	"github.com/kroma-network/zkvm-common/internal/server"
	"github.com/kroma-network/zkvm-common/internal/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found (falling back to system env)")
	}

	// Load configuration
	cfg := config.Load()

	// Initialize structured logging
	logger.Init(cfg.LogLevel)
	logger.Info("Initializing witness store", "version", cfg.ServiceVersion, "log_level", cfg.LogLevel)

	if cfg.AdminAPIToken != "" {
		if err := secrets.ValidateToken(cfg.AdminAPIToken); err != nil {
			logger.Warn("Admin API token fails validation", "error", err)
		}
		logger.Info("Admin API enabled", "token", secrets.Mask(cfg.AdminAPIToken))
	}

	// Initialize error reporting
	if err := errorreporting.Init(cfg); err != nil {
		logger.Warn("Failed to initialize error reporting", "error", err)
	} else if errorreporting.IsSentryEnabled() {
		logger.Info("Error reporting initialized",
			"environment", cfg.SentryEnvironment, "dsn", secrets.MaskURL(cfg.SentryDSN))
		defer func() {
			logger.Info("Flushing error reports...")
			errorreporting.Flush(2 * time.Second)
		}()
	}

	// Initialize tracing
	shutdownTracing, err := tracing.Init("witness-store", cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracing", "error", err)
	} else if cfg.OTELEnabled {
		logger.Info("Tracing initialized", "endpoint", cfg.OTELEndpoint, "sample_rate", cfg.OTELSampleRate)
		defer func() {
			logger.Info("Shutting down tracer...")
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	// Open the witness store. The engine is composed here rather than
	// inside filedb.Open so the integrity checker can share it.
	ldb, err := engine.OpenLevelDB(cfg.StorePath)
	if err != nil {
		logger.Error("Failed to open storage engine", "error", err, "path", cfg.StorePath)
		os.Exit(1)
	}
	eng := engine.NewInstrumented(ldb)
	store, err := filedb.New(eng, filedb.Config{
		Path:         cfg.StorePath,
		Capacity:     cfg.StoreCapacity,
		ExpiringSecs: cfg.StoreTTLSecs,
	})
	if err != nil {
		logger.Error("Failed to open witness store", "error", err, "path", cfg.StorePath)
		ldb.Close()
		os.Exit(1)
	}

	// In-memory cache for hot witness reads
	cache, err := respcache.NewLRU(int64(cfg.ResponseCacheMaxMB), int64(cfg.ResponseCacheEntries), cfg.ResponseCacheTTL)
	if err != nil {
		logger.Error("Failed to create response cache", "error", err)
		os.Exit(1)
	}

	// Scheduled background integrity checks, off unless configured
	var maint *scheduler.Service
	if cfg.IntegrityCheckSchedule != "" {
		sched, err := scheduler.ParseSchedule(cfg.IntegrityCheckSchedule)
		if err != nil {
			logger.Error("Invalid integrity check schedule", "schedule", cfg.IntegrityCheckSchedule, "error", err)
			os.Exit(1)
		}
		checker := integrity.NewService(eng, cfg.StoreTTLSecs)
		maint = scheduler.NewService(scheduler.Job{
			Name:     "integrity_check",
			Schedule: sched,
			Run:      checker.Report,
		})
	}

	srv := server.New(cfg, store, cache)
	if err := srv.Listen(); err != nil {
		logger.Error("Failed to listen", "error", err, "addr", cfg.ListenAddr)
		os.Exit(1)
	}

	// Handle shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if maint != nil {
		go maint.Start(ctx)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case runErr = <-serveErr:
		if runErr != nil {
			logger.Error("Server failed", "error", runErr)
			errorreporting.CaptureError(runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown did not complete cleanly", "error", err)
	}

	if maint != nil {
		maint.Stop()
	}
	cache.Close()

	if cfg.StoreEphemeral {
		if err := store.Destroy(); err != nil {
			logger.Error("Failed to destroy ephemeral store", "error", err)
		}
	} else if err := store.Close(); err != nil {
		logger.Error("Failed to close witness store", "error", err)
	}

	logger.Info("Shutdown complete")
	if runErr != nil {
		os.Exit(1)
	}
}
