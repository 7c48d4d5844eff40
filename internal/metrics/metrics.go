package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Witness store metrics
	StoreEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "witness_store_entries",
			Help: "Number of live entries in the witness store",
		},
	)

	StoreHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "witness_store_hits_total",
			Help: "Total number of witness store lookups that found a value",
		},
	)

	StoreMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "witness_store_misses_total",
			Help: "Total number of witness store lookups that returned nothing",
		},
		[]string{"reason"}, // reason: absent, engine_error, corrupt, decode_error
	)

	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "witness_store_writes_total",
			Help: "Total number of witness store mutations",
		},
		[]string{"operation"}, // operation: set, remove
	)

	StoreWriteErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "witness_store_write_errors_total",
			Help: "Total number of failed witness store mutations",
		},
		[]string{"operation"},
	)

	StoreEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "witness_store_evictions_total",
			Help: "Total number of entries evicted from the witness store",
		},
		[]string{"reason"}, // reason: expired, capacity, corrupt
	)

	StoreCompactions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "witness_store_compactions_total",
			Help: "Total number of compaction passes",
		},
	)

	StoreCompactionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "witness_store_compaction_duration_seconds",
			Help:    "Duration of compaction passes in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
		},
	)

	// Engine operation metrics
	EngineOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_operation_duration_seconds",
			Help:    "Duration of storage engine operations",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2},
		},
		[]string{"operation"},
	)

	EngineOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_operation_errors_total",
			Help: "Total number of storage engine operation errors",
		},
		[]string{"operation"},
	)

	// Response cache metrics
	ResponseCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"endpoint"},
	)

	ResponseCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "response_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"endpoint"},
	)

	ResponseCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "response_cache_size_bytes",
			Help: "Approximate size of the response cache in bytes",
		},
	)

	ResponseCacheItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "response_cache_items",
			Help: "Current number of items in the response cache",
		},
	)

	// API request metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_rejections_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"scope"},
	)

	// Integrity check metrics
	IntegrityIssues = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "witness_integrity_issues",
			Help: "Issues found by the most recent integrity check, per check",
		},
		[]string{"check"},
	)

	IntegrityCheckDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "witness_integrity_check_duration_seconds",
			Help:    "Duration of full integrity scans",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60},
		},
	)
)
