package config

import (
	"os"
	"strings"
	"time"

	"github.com/kroma-network/zkvm-common/internal/utils"
)

// Config holds application configuration derived from environment variables.
type Config struct {
	// Witness store settings
	StorePath      string // directory the storage engine lives in
	StoreCapacity  uint64 // maximum number of live entries
	StoreTTLSecs   uint64 // seconds before an entry is considered expired
	StoreEphemeral bool   // wipe the store directory on shutdown
	// Maintenance settings
	IntegrityCheckSchedule string // e.g. "@daily" or "@every 6h"; empty disables
	// HTTP server settings
	ListenAddr       string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	MaxBodyMB        int // request body cap for PUT/POST in MB
	// Admin API token for gating admin endpoints (Bearer token)
	AdminAPIToken string
	// Security settings
	RateLimitGlobal      float64 // requests per second globally
	RateLimitGlobalBurst int     // burst size for global rate limit
	RateLimitPerIP       float64 // requests per second per IP
	RateLimitPerIPBurst  int     // burst size for per-IP rate limit
	EnableRateLimit      bool    // enable rate limiting middleware
	// Response cache settings
	ResponseCacheEntries int           // max cached responses
	ResponseCacheMaxMB   int           // max total size of cached bodies in MB
	ResponseCacheTTL     time.Duration // how long a cached response stays fresh
	// Observability settings
	LogLevel          string  // log level: debug, info, warn, error
	ServiceVersion    string  // reported to tracing and error reporting
	OTELEnabled       bool    // enable OpenTelemetry tracing
	OTELEndpoint      string  // OpenTelemetry collector endpoint
	OTELSampleRate    float64 // trace sampling rate (0.0 to 1.0)
	SentryDSN         string  // Sentry DSN for error reporting
	SentryEnvironment string  // Sentry environment (dev, staging, production)
	SentryRelease     string  // Sentry release version
	SentrySampleRate  float64 // Sentry error sampling rate (0.0 to 1.0)
}

var cached *Config

// Load reads env vars once and caches them.
func Load() *Config {
	if cached != nil {
		return cached
	}
	path := strings.TrimSpace(os.Getenv("WITNESS_STORE_PATH"))
	if path == "" {
		path = "data/witness"
	}
	addr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if addr == "" {
		addr = ":3030"
	}
	cached = &Config{
		StorePath:      path,
		StoreCapacity:  utils.GetEnvAsUint64("WITNESS_STORE_CAPACITY", 1000),
		StoreTTLSecs:   utils.GetEnvAsUint64("WITNESS_STORE_TTL_SECS", 604800),
		StoreEphemeral: utils.GetEnvAsBool("WITNESS_STORE_EPHEMERAL", false),

		IntegrityCheckSchedule: strings.TrimSpace(os.Getenv("INTEGRITY_CHECK_SCHEDULE")),

		ListenAddr:       addr,
		HTTPReadTimeout:  time.Duration(utils.GetEnvAsInt("HTTP_READ_TIMEOUT_MS", 15000)) * time.Millisecond,
		HTTPWriteTimeout: time.Duration(utils.GetEnvAsInt("HTTP_WRITE_TIMEOUT_MS", 30000)) * time.Millisecond,
		MaxBodyMB:        utils.GetEnvAsInt("MAX_BODY_MB", 32),

		AdminAPIToken: strings.TrimSpace(os.Getenv("ADMIN_API_TOKEN")),

		// Security settings with sensible defaults
		RateLimitGlobal:      utils.GetEnvAsFloat("RATE_LIMIT_GLOBAL", 100.0),
		RateLimitGlobalBurst: utils.GetEnvAsInt("RATE_LIMIT_GLOBAL_BURST", 200),
		RateLimitPerIP:       utils.GetEnvAsFloat("RATE_LIMIT_PER_IP", 10.0),
		RateLimitPerIPBurst:  utils.GetEnvAsInt("RATE_LIMIT_PER_IP_BURST", 20),
		EnableRateLimit:      utils.GetEnvAsBool("ENABLE_RATE_LIMIT", true),

		ResponseCacheEntries: utils.GetEnvAsInt("RESPONSE_CACHE_ENTRIES", 1024),
		ResponseCacheMaxMB:   utils.GetEnvAsInt("RESPONSE_CACHE_MAX_MB", 64),
		ResponseCacheTTL:     time.Duration(utils.GetEnvAsInt("RESPONSE_CACHE_TTL_MS", 30000)) * time.Millisecond,

		// Observability settings
		LogLevel:          strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		ServiceVersion:    strings.TrimSpace(os.Getenv("SERVICE_VERSION")),
		OTELEnabled:       utils.GetEnvAsBool("OTEL_ENABLED", false),
		OTELEndpoint:      strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTELSampleRate:    utils.GetEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0.1),
		SentryDSN:         strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		SentryEnvironment: strings.TrimSpace(os.Getenv("SENTRY_ENVIRONMENT")),
		SentryRelease:     strings.TrimSpace(os.Getenv("SENTRY_RELEASE")),
		SentrySampleRate:  utils.GetEnvAsFloat("SENTRY_SAMPLE_RATE", 1.0),
	}
	if cached.LogLevel == "" {
		cached.LogLevel = "info"
	}
	if cached.ServiceVersion == "" {
		cached.ServiceVersion = "dev"
	}
	if cached.SentryEnvironment == "" {
		if env := os.Getenv("ENV"); env != "" {
			cached.SentryEnvironment = env
		} else {
			cached.SentryEnvironment = "development"
		}
	}

	return cached
}

// ResetForTest clears cached config; for use in tests only.
func ResetForTest() { cached = nil }
