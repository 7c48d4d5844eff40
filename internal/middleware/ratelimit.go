package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kroma-network/zkvm-common/internal/apierr"
	"github.com/kroma-network/zkvm-common/internal/logger"
	"github.com/kroma-network/zkvm-common/internal/metrics"
)

// ipLimiter tracks the limiter for a single client IP along with when
// it was last used, so stale entries can be evicted.
type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a global request budget plus a smaller per-IP budget.
// The global limiter shields the store from aggregate overload; the per-IP
// limiter keeps one misbehaving prover from starving the rest.
type RateLimiter struct {
	global *rate.Limiter

	mu     sync.RWMutex
	perIP  map[string]*ipLimiter
	ipRate rate.Limit
	ipBurst int

	cleanupTicker *time.Ticker
	done          chan struct{}
}

// NewRateLimiter creates a rate limiter with the given global and per-IP
// budgets. Call Stop when the server shuts down to release the cleanup
// goroutine.
func NewRateLimiter(globalRate float64, globalBurst int, perIPRate float64, perIPBurst int) *RateLimiter {
	rl := &RateLimiter{
		global:  rate.NewLimiter(rate.Limit(globalRate), globalBurst),
		perIP:   make(map[string]*ipLimiter),
		ipRate:  rate.Limit(perIPRate),
		ipBurst: perIPBurst,
		done:    make(chan struct{}),
	}

	rl.cleanupTicker = time.NewTicker(1 * time.Minute)
	go rl.cleanupLoop()

	return rl
}

// cleanupLoop evicts per-IP limiters not seen for three minutes.
func (rl *RateLimiter) cleanupLoop() {
	for {
		select {
		case <-rl.cleanupTicker.C:
			cutoff := time.Now().Add(-3 * time.Minute)
			rl.mu.Lock()
			for ip, lim := range rl.perIP {
				if lim.lastSeen.Before(cutoff) {
					delete(rl.perIP, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop halts the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.cleanupTicker.Stop()
	close(rl.done)
}

// limiterFor returns the limiter for ip, creating one on first sight.
func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.RLock()
	lim, ok := rl.perIP[ip]
	rl.mu.RUnlock()

	if ok {
		rl.mu.Lock()
		lim.lastSeen = time.Now()
		rl.mu.Unlock()
		return lim.limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if lim, ok = rl.perIP[ip]; ok {
		lim.lastSeen = time.Now()
		return lim.limiter
	}
	lim = &ipLimiter{
		limiter:  rate.NewLimiter(rl.ipRate, rl.ipBurst),
		lastSeen: time.Now(),
	}
	rl.perIP[ip] = lim
	return lim.limiter
}

// Limit is the middleware entry point.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.global.Allow() {
			metrics.RateLimitRejections.WithLabelValues("global").Inc()
			logger.WarnContext(r.Context(), "global rate limit exceeded", "path", r.URL.Path)
			apierr.WriteErrorWithContext(w, r, apierr.RateLimitGlobal())
			return
		}

		ip := clientIP(r)
		if !rl.limiterFor(ip).Allow() {
			metrics.RateLimitRejections.WithLabelValues("per_ip").Inc()
			logger.WarnContext(r.Context(), "per-IP rate limit exceeded", "ip", ip, "path", r.URL.Path)
			apierr.WriteErrorWithContext(w, r, apierr.RateLimitIP())
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, trusting X-Forwarded-For and
// X-Real-IP set by the reverse proxy before falling back to RemoteAddr.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
