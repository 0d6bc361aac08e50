// Package metrics provides Prometheus metrics for the simboard service.
package metrics

import (
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ingestion
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter
	derivations          *prometheus.CounterVec

	// Candidate store
	candidatesTotal  prometheus.Gauge
	simulationsTotal prometheus.Gauge

	// Ranking and comparison
	rankingLatency   *prometheus.HistogramVec
	rankingShown     prometheus.Histogram
	selectionOutcome *prometheus.CounterVec
	compareCommits   prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. It must run before recording starts and before GetRegistry is
// handed to a scrape handler.
func Configure(opts ...Option) {
	reg := prometheus.NewRegistry()
	opts = append(slices.Clone(opts), WithPrometheusRegistry(reg))
	customRegistry = reg
	globalManager = NewManager(opts...)
}

// Enabled reports whether the global manager records anything.
func Enabled() bool { return globalManager.enabled }

// RefreshInterval is how often gauge sampling loops should run.
func RefreshInterval() time.Duration { return globalManager.refreshInterval }

// active returns the global manager, or nil when recording is disabled.
func active() *Manager {
	if m := globalManager; m.enabled {
		return m
	}
	return nil
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "simboard",
		subsystem:        "candidates",
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

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.submissionsAccepted = m.counter("submissions_accepted_total", "Raw candidate submissions accepted for ingestion")
	m.submissionsDuplicate = m.counter("submissions_duplicate_total", "Raw candidate submissions dropped as duplicates")
	m.derivations = m.counterVec("derivations_total", "Derived candidate records by strength tier", "tier")

	m.candidatesTotal = m.gauge("total", "Candidates held in the store")
	m.simulationsTotal = m.gauge("simulations_total", "Simulations with at least one candidate")

	m.rankingLatency = m.histogramVec("ranking_latency_milliseconds", "Latency of filter and sort over one simulation", m.histogramBuckets, "sort")
	m.rankingShown = m.histogram("ranking_shown", "Candidates left in a ranked view after filtering", []float64{0, 1, 5, 10, 25, 50, 100, 250, 500})
	m.selectionOutcome = m.counterVec("selection_toggles_total", "Compare selection toggles by outcome", "outcome")
	m.compareCommits = m.counter("compare_commits_total", "Committed comparisons")

	m.queueSize = m.gauge("queue_size", "Submissions waiting in the ingestion queue")
	m.queueCapacity = m.gauge("queue_capacity", "Capacity of the ingestion queue")
	m.queueUtilization = m.gauge("queue_utilization", "Ingestion queue utilization ratio")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Submissions enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Submissions dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Submissions refused by the queue")

	m.workerCount = m.gauge("worker_count", "Ingestion workers running")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time to derive and store one submission", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Submissions a worker failed to store")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets, "endpoint", "method", "status_code")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by HTTP endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause in milliseconds", []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100})
}

// RecordSubmissionAccepted counts an accepted submission.
func RecordSubmissionAccepted() {
	if m := active(); m != nil {
		m.submissionsAccepted.Inc()
	}
}

// RecordSubmissionDuplicate counts a duplicate submission.
func RecordSubmissionDuplicate() {
	if m := active(); m != nil {
		m.submissionsDuplicate.Inc()
	}
}

// RecordDerivation counts a derived record under its tier ("unscored" when none).
func RecordDerivation(tier string) {
	if m := active(); m != nil {
		m.derivations.WithLabelValues(tier).Inc()
	}
}

// UpdateCandidatesTotal sets the number of stored candidates.
func UpdateCandidatesTotal(n int) {
	if m := active(); m != nil {
		m.candidatesTotal.Set(float64(n))
	}
}

// UpdateSimulationsTotal sets the number of known simulations.
func UpdateSimulationsTotal(n int) {
	if m := active(); m != nil {
		m.simulationsTotal.Set(float64(n))
	}
}

// RecordRankingLatency records how long a ranking took for a sort key.
func RecordRankingLatency(sort string, latencyMs float64) {
	if m := active(); m != nil {
		m.rankingLatency.WithLabelValues(sort).Observe(latencyMs)
	}
}

// RecordRankingShown records the size of a ranked view.
func RecordRankingShown(shown int) {
	if m := active(); m != nil {
		m.rankingShown.Observe(float64(shown))
	}
}

// RecordSelectionOutcome counts a toggle outcome.
func RecordSelectionOutcome(outcome string) {
	if m := active(); m != nil {
		m.selectionOutcome.WithLabelValues(outcome).Inc()
	}
}

// RecordCompareCommit counts a committed comparison.
func RecordCompareCommit() {
	if m := active(); m != nil {
		m.compareCommits.Inc()
	}
}

// UpdateQueueSize sets the current queue length.
func UpdateQueueSize(size int) {
	if m := active(); m != nil {
		m.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	if m := active(); m != nil {
		m.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(u float64) {
	if m := active(); m != nil {
		m.queueUtilization.Set(u)
	}
}

// RecordQueueEnqueue counts an enqueued submission.
func RecordQueueEnqueue() {
	if m := active(); m != nil {
		m.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue counts a dequeued submission.
func RecordQueueDequeue() {
	if m := active(); m != nil {
		m.queueDequeued.Inc()
	}
}

// RecordQueueEnqueueError counts a refused enqueue.
func RecordQueueEnqueueError() {
	if m := active(); m != nil {
		m.queueEnqueueErrors.Inc()
	}
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(n int) {
	if m := active(); m != nil {
		m.workerCount.Set(float64(n))
	}
}

// RecordWorkerProcessingLatency records the time to process one submission.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if m := active(); m != nil {
		m.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError counts a failed submission.
func RecordWorkerError() {
	if m := active(); m != nil {
		m.workerErrors.Inc()
	}
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if m := active(); m != nil {
		m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if m := active(); m != nil {
		m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent counts an error raised by a component.
func RecordErrorByComponent(component, errorType string) {
	if m := active(); m != nil {
		m.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType counts an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	if m := active(); m != nil {
		m.errorsByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint counts an error returned by an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if m := active(); m != nil {
		m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// UpdateSystemMemoryUsage sets allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if m := active(); m != nil {
		m.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(n int) {
	if m := active(); m != nil {
		m.systemGoroutineCount.Set(float64(n))
	}
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	if m := active(); m != nil {
		m.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the registry holding the global collectors.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
