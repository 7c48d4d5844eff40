package server

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/kroma-network/zkvm-common/internal/config"
	"github.com/kroma-network/zkvm-common/internal/engine"
	"github.com/kroma-network/zkvm-common/internal/filedb"
	"github.com/kroma-network/zkvm-common/internal/respcache"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	store, err := filedb.New(engine.NewMemory(), filedb.Config{Capacity: 10, ExpiringSecs: 60})
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer store.Close()

	cfg := &config.Config{
		ListenAddr:       "127.0.0.1:0",
		HTTPReadTimeout:  5 * time.Second,
		HTTPWriteTimeout: 5 * time.Second,
		MaxBodyMB:        1,
		EnableRateLimit:  true,
		RateLimitGlobal:  100, RateLimitGlobalBurst: 100,
		RateLimitPerIP: 100, RateLimitPerIPBurst: 100,
	}

	srv := New(cfg, store, respcache.NewMockCache())
	if err := srv.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d, body %s", resp.StatusCode, body)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	select {
	case err := <-serveErr:
		if err != nil {
			t.Errorf("Serve returned %v after clean shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}
