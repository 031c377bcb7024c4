// Package metrics provides Prometheus metrics for the race card ranking service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the racecard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Parsing
	cardsParsed      prometheus.Counter
	horsesParsed     prometheus.Counter
	emptyCards       prometheus.Counter
	cardsDuplicate   prometheus.Counter
	extractions      *prometheus.CounterVec
	extractionErrors *prometheus.CounterVec

	// Scoring
	rankings       *prometheus.CounterVec
	scoringLatency prometheus.Histogram

	// Store
	cardsStored    prometheus.Gauge
	storeEvictions prometheus.Counter

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "racecard",
		subsystem:        "ranker",
		histogramBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
		Buckets:     m.histogramBuckets,
	})
}

func (m *Manager) initializeMetrics() {
	m.cardsParsed = m.counter("cards_parsed_total", "Total number of race cards parsed")
	m.horsesParsed = m.counter("horses_parsed_total", "Total number of horse records produced by the parser")
	m.emptyCards = m.counter("cards_empty_total", "Total number of cards that yielded no horse records")
	m.cardsDuplicate = m.counter("cards_duplicate_total", "Total number of duplicate card submissions")
	m.extractions = m.counterVec("source_extractions_total", "Total number of documents converted to card text", "format")
	m.extractionErrors = m.counterVec("source_extraction_errors_total", "Total number of documents that could not be converted", "format")

	m.rankings = m.counterVec("rankings_total", "Total number of rankings computed", "condition")
	m.scoringLatency = m.histogram("scoring_latency_milliseconds", "Time to score and rank a card in milliseconds")

	m.cardsStored = m.gauge("cards_stored", "Number of analyzed cards currently held in the store")
	m.storeEvictions = m.counter("store_evictions_total", "Total number of cards evicted from the store")

	m.queueSize = m.gauge("queue_size", "Current number of jobs waiting in the queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of jobs the queue can hold")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue fill ratio (size / capacity)")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Total number of jobs enqueued")
	m.queueDequeued = m.counter("queue_dequeued_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueue attempts")

	m.workerCount = m.gauge("worker_count", "Number of workers in the pool")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently analyzing a card")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Time a worker spends on one job in milliseconds")
	m.workerErrors = m.counter("worker_errors_total", "Total number of jobs that failed in a worker")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_seconds",
		Help:        "HTTP request duration in seconds",
		ConstLabels: m.customLabels,
		Buckets:     prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_total", "Total number of errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_bytes", "Heap memory in use in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutines", "Number of running goroutines")
}

// RecordCardParsed counts one parsed card and the horses it produced.
func RecordCardParsed(horses int) {
	globalManager.cardsParsed.Inc()
	globalManager.horsesParsed.Add(float64(horses))
	if horses == 0 {
		globalManager.emptyCards.Inc()
	}
}

// RecordCardDuplicate increments the duplicate submissions counter.
func RecordCardDuplicate() {
	globalManager.cardsDuplicate.Inc()
}

// RecordExtraction counts a document converted from format.
func RecordExtraction(format string) {
	globalManager.extractions.WithLabelValues(format).Inc()
}

// RecordExtractionError counts a document of format that could not be converted.
func RecordExtractionError(format string) {
	globalManager.extractionErrors.WithLabelValues(format).Inc()
}

// RecordRanking counts a ranking under the given track condition token.
func RecordRanking(condition string) {
	globalManager.rankings.WithLabelValues(condition).Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// UpdateCardsStored sets the number of cards in the store.
func UpdateCardsStored(count int) {
	globalManager.cardsStored.Set(float64(count))
}

// RecordStoreEviction increments the store eviction counter.
func RecordStoreEviction() {
	globalManager.storeEvictions.Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records a job's processing time in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap memory in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
