// Package metrics provides Prometheus metrics for the SafeEats lookup service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the lookup service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	resultBuckets    []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Search Metrics - what users ask for and what they get back
	searchRequests *prometheus.CounterVec
	searchResults  prometheus.Histogram
	searchEmpty    prometheus.Counter
	rankingLatency prometheus.Histogram
	detailRequests prometheus.Counter

	// Upstream Metrics - the external search API
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	upstreamErrors   *prometheus.CounterVec

	// Cache Metrics - repository hit ratio and size
	cacheLookups *prometheus.CounterVec
	cacheEntries prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Without WithPrometheusRegistry
// the metrics register on a fresh private registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "safeeats",
		subsystem:        "lookup",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		resultBuckets:    []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.searchRequests = auto.NewCounterVec(
		m.counterOpts("search_requests_total", "Total number of searches by sort mode"),
		[]string{"sort"},
	)
	m.searchResults = auto.NewHistogram(
		m.histogramOpts("search_results", "Number of results returned per search after filtering", m.resultBuckets),
	)
	m.searchEmpty = auto.NewCounter(
		m.counterOpts("search_empty_total", "Total number of searches that returned no results"),
	)
	m.rankingLatency = auto.NewHistogram(
		m.histogramOpts("ranking_latency_microseconds", "Time spent ranking and filtering one result set",
			[]float64{1, 5, 10, 50, 100, 500, 1000, 5000, 10000}),
	)
	m.detailRequests = auto.NewCounter(
		m.counterOpts("detail_requests_total", "Total number of restaurant detail lookups"),
	)

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Total number of upstream API requests by endpoint and status code"),
		[]string{"endpoint", "status_code"},
	)
	m.upstreamLatency = auto.NewHistogramVec(
		m.histogramOpts("upstream_latency_milliseconds", "Upstream API latency in milliseconds", m.histogramBuckets),
		[]string{"endpoint"},
	)
	m.upstreamErrors = auto.NewCounterVec(
		m.counterOpts("upstream_errors_total", "Total number of failed upstream calls by endpoint and kind"),
		[]string{"endpoint", "kind"},
	)

	m.cacheLookups = auto.NewCounterVec(
		m.counterOpts("cache_lookups_total", "Total number of cache lookups by kind and outcome"),
		[]string{"kind", "outcome"},
	)
	m.cacheEntries = auto.NewGauge(
		m.gaugeOpts("cache_entries", "Current number of cached result sets and detail records"),
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Total number of errors by type"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(
		m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"),
	)
	m.systemGoroutineCount = auto.NewGauge(
		m.gaugeOpts("system_goroutine_count", "Number of goroutines"),
	)
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Search Metrics Functions.

// RecordSearch counts one search and observes how many results it returned.
func RecordSearch(sortMode string, results int) {
	globalManager.searchRequests.WithLabelValues(sortMode).Inc()
	globalManager.searchResults.Observe(float64(results))
	if results == 0 {
		globalManager.searchEmpty.Inc()
	}
}

// RecordRankingLatency records ranking latency in microseconds.
func RecordRankingLatency(latencyUs float64) {
	globalManager.rankingLatency.Observe(latencyUs)
}

// RecordDetailRequest increments the detail lookups counter.
func RecordDetailRequest() {
	globalManager.detailRequests.Inc()
}

// Upstream Metrics Functions.

// RecordUpstreamRequest records one upstream round trip.
func RecordUpstreamRequest(endpoint, statusCode string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, statusCode).Inc()
	globalManager.upstreamLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// RecordUpstreamError records a failed upstream call (transport, status, decode).
func RecordUpstreamError(endpoint, kind string) {
	globalManager.upstreamErrors.WithLabelValues(endpoint, kind).Inc()
}

// Cache Metrics Functions.

// RecordCacheLookup records a cache hit or miss for kind (results, detail).
func RecordCacheLookup(kind string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	globalManager.cacheLookups.WithLabelValues(kind, outcome).Inc()
}

// UpdateCacheEntries sets the number of cached entries.
func UpdateCacheEntries(count int) {
	globalManager.cacheEntries.Set(float64(count))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
