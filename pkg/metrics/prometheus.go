// Package metrics provides Prometheus metrics for the health dashboard and
// the project-health API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes recorded by RecordFetch.
const (
	FetchSuccess   = "success"
	FetchFailure   = "failure"
	FetchDiscarded = "discarded"
)

// Manager owns every collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Loader
	fetches        *prometheus.CounterVec
	fetchLatency   *prometheus.HistogramVec
	fetchesFailed  *prometheus.CounterVec
	lastFetchUnix  prometheus.Gauge
	loaderInFlight prometheus.Gauge

	// State
	projectsLoaded   prometheus.Gauge
	projectsByRisk   *prometheus.GaugeVec
	storeReplaces    prometheus.Counter
	storeReplaceTime prometheus.Histogram

	// Catalog (health API side)
	catalogQueries      *prometheus.CounterVec
	catalogQueryLatency *prometheus.HistogramVec
	catalogErrors       *prometheus.CounterVec
	servedByLevel       *prometheus.GaugeVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by package-level recorders

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "healthdash",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
		Buckets: buckets,
	}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.fetches = auto.NewCounterVec(
		m.counterOpts("fetches_total", "Project-health reads by outcome"),
		[]string{"outcome"},
	)
	m.fetchLatency = auto.NewHistogramVec(
		m.histogramOpts("fetch_duration_milliseconds", "Project-health read latency in milliseconds", m.histogramBuckets),
		[]string{"outcome"},
	)
	m.fetchesFailed = auto.NewCounterVec(
		m.counterOpts("fetch_failures_total", "Failed project-health reads by stage"),
		[]string{"stage"},
	)
	m.lastFetchUnix = auto.NewGauge(m.gaugeOpts("last_fetch_unix", "Unix time of the last applied fetch"))
	m.loaderInFlight = auto.NewGauge(m.gaugeOpts("loader_in_flight", "Reads currently in flight"))

	m.projectsLoaded = auto.NewGauge(m.gaugeOpts("projects_loaded", "Projects currently held by the dashboard"))
	m.projectsByRisk = auto.NewGaugeVec(
		m.gaugeOpts("projects_by_risk", "Projects currently held per risk color"),
		[]string{"color"},
	)
	m.storeReplaces = auto.NewCounter(m.counterOpts("store_replacements_total", "Wholesale replacements of the project list"))
	m.storeReplaceTime = auto.NewHistogram(
		m.histogramOpts("store_replace_duration_milliseconds", "Time spent replacing the project list",
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10}),
	)

	m.catalogQueries = auto.NewCounterVec(
		m.counterOpts("catalog_queries_total", "Catalog list queries by backend"),
		[]string{"backend"},
	)
	m.catalogQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("catalog_query_duration_milliseconds", "Catalog list latency in milliseconds", m.histogramBuckets),
		[]string{"backend"},
	)
	m.catalogErrors = auto.NewCounterVec(
		m.counterOpts("catalog_errors_total", "Catalog failures by backend"),
		[]string{"backend"},
	)

	m.servedByLevel = auto.NewGaugeVec(
		m.gaugeOpts("served_projects_by_risk_level", "Projects in the last project-health response per risk level"),
		[]string{"level"},
	)

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// RecordFetch counts one read and observes its latency.
func RecordFetch(outcome string, durationMs float64) {
	globalManager.fetches.WithLabelValues(outcome).Inc()
	globalManager.fetchLatency.WithLabelValues(outcome).Observe(durationMs)
}

// RecordFetchFailure counts a failed read by the stage that failed.
func RecordFetchFailure(stage string) {
	globalManager.fetchesFailed.WithLabelValues(stage).Inc()
}

// MarkFetchApplied stamps the time of the last applied fetch.
func MarkFetchApplied(unix int64) {
	globalManager.lastFetchUnix.Set(float64(unix))
}

// AddLoaderInFlight adjusts the in-flight reads gauge.
func AddLoaderInFlight(delta int) {
	globalManager.loaderInFlight.Add(float64(delta))
}

// UpdateProjectsLoaded sets the number of projects held.
func UpdateProjectsLoaded(count int) {
	globalManager.projectsLoaded.Set(float64(count))
}

// UpdateProjectsByRisk sets the number of projects for one risk color.
func UpdateProjectsByRisk(color string, count int) {
	globalManager.projectsByRisk.WithLabelValues(color).Set(float64(count))
}

// RecordStoreReplace counts a replacement and observes how long it took.
func RecordStoreReplace(durationMs float64) {
	globalManager.storeReplaces.Inc()
	globalManager.storeReplaceTime.Observe(durationMs)
}

// RecordCatalogQuery counts a catalog list call and observes its latency.
func RecordCatalogQuery(backend string, durationMs float64) {
	globalManager.catalogQueries.WithLabelValues(backend).Inc()
	globalManager.catalogQueryLatency.WithLabelValues(backend).Observe(durationMs)
}

// RecordCatalogError counts a catalog failure.
func RecordCatalogError(backend string) {
	globalManager.catalogErrors.WithLabelValues(backend).Inc()
}

// UpdateServedByRiskLevel sets how many served projects fell in one risk level.
func UpdateServedByRiskLevel(level string, count int) {
	globalManager.servedByLevel.WithLabelValues(level).Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates heap usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry backing the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
