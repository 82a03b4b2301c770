// Package metrics provides Prometheus metrics for the live race service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the live race service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Upstream Provider Metrics - the service is only as live as its
	// providers, so per-provider outcome and latency matter most.
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamRetries  *prometheus.CounterVec

	// Cache Metrics - per cache (live, competitions, meerkamp, records)
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheCoalesced *prometheus.CounterVec
	cacheSize      *prometheus.GaugeVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Race Aggregation Metrics
	raceViewsByStatus    *prometheus.CounterVec
	providerFallbacks    *prometheus.CounterVec
	meerkampComputations prometheus.Counter
	meerkampPartials     prometheus.Counter
	normalizationPasses  prometheus.Counter
	personalBestFailures prometheus.Counter

	// System Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lapedge",
		subsystem:        "live",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.upstreamRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_requests_total",
			Help:      "Upstream provider requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	m.upstreamLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_latency_milliseconds",
			Help:      "Upstream provider request latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"provider"},
	)

	m.upstreamRetries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_retries_total",
			Help:      "Retried upstream requests by provider",
		},
		[]string{"provider"},
	)

	m.cacheHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_hits_total",
			Help:      "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	m.cacheMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_misses_total",
			Help:      "Cache misses by cache name",
		},
		[]string{"cache"},
	)

	m.cacheCoalesced = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_coalesced_loads_total",
			Help:      "Loads that joined another in-flight load for the same key",
		},
		[]string{"cache"},
	)

	m.cacheSize = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "cache_entries",
			Help:      "Number of entries per cache",
		},
		[]string{"cache"},
	)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Error responses by endpoint, method and error type",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.raceViewsByStatus = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "race_views_total",
			Help:      "Served race views by race status",
		},
		[]string{"status"},
	)

	m.providerFallbacks = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "provider_fallbacks_total",
			Help:      "Provider calls that degraded to a waiting response",
		},
		[]string{"provider", "reason"},
	)

	m.meerkampComputations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "meerkamp_computations_total",
		Help:      "All-around standings recomputations",
	})

	m.meerkampPartials = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "meerkamp_partial_results_total",
		Help:      "All-around computations that skipped a failing distance",
	})

	m.normalizationPasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "normalization_passes_total",
		Help:      "Race view normalization passes",
	})

	m.personalBestFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "personal_best_failures_total",
		Help:      "Personal best lookups that failed non-fatally",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current heap allocation in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines",
	})
}

// RecordUpstreamRequest records an upstream call and its outcome
// ("ok", "http_error", "timeout", "error").
func RecordUpstreamRequest(provider, outcome string) {
	globalManager.upstreamRequests.WithLabelValues(provider, outcome).Inc()
}

// RecordUpstreamLatency records upstream request latency in milliseconds.
func RecordUpstreamLatency(provider string, latencyMs float64) {
	globalManager.upstreamLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordUpstreamRetry records a retried upstream request.
func RecordUpstreamRetry(provider string) {
	globalManager.upstreamRetries.WithLabelValues(provider).Inc()
}

// RecordCacheHit records a cache hit.
func RecordCacheHit(cache string) {
	globalManager.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a cache miss.
func RecordCacheMiss(cache string) {
	globalManager.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheCoalesced records a load shared with another caller.
func RecordCacheCoalesced(cache string) {
	globalManager.cacheCoalesced.WithLabelValues(cache).Inc()
}

// UpdateCacheSize sets the entry count for a cache.
func UpdateCacheSize(cache string, size int) {
	globalManager.cacheSize.WithLabelValues(cache).Set(float64(size))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error response for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRaceView records a served race view by status.
func RecordRaceView(status string) {
	globalManager.raceViewsByStatus.WithLabelValues(status).Inc()
}

// RecordProviderFallback records a degradation to a waiting response.
func RecordProviderFallback(provider, reason string) {
	globalManager.providerFallbacks.WithLabelValues(provider, reason).Inc()
}

// RecordMeerkampComputation records one all-around recomputation.
func RecordMeerkampComputation() {
	globalManager.meerkampComputations.Inc()
}

// RecordMeerkampPartial records a skipped distance during aggregation.
func RecordMeerkampPartial() {
	globalManager.meerkampPartials.Inc()
}

// RecordNormalizationPass records a normalization pass.
func RecordNormalizationPass() {
	globalManager.normalizationPasses.Inc()
}

// RecordPersonalBestFailure records a non-fatal personal best failure.
func RecordPersonalBestFailure() {
	globalManager.personalBestFailures.Inc()
}

// UpdateSystemMemoryUsage sets the current heap allocation.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
