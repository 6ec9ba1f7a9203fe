// Package metrics provides Prometheus metrics for the WRUF scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Submission pipeline
	submissionsScored    prometheus.Counter
	submissionsDuplicate prometheus.Counter
	submissionsRejected  *prometheus.CounterVec

	// Oracle
	oracleLatency prometheus.Histogram
	oracleErrors  prometheus.Counter

	// Store
	storeUpdateLatency prometheus.Histogram
	storeQueryLatency  prometheus.Histogram
	trackedUsers       prometheus.Gauge
	ledgerSize         prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithRegistry overrides the Prometheus registerer used by the manager.
func WithRegistry(r prometheus.Registerer) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// WithHistogramBuckets overrides the default latency buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry so the default Go runtime collectors stay out of scrapes.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "wruf",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.submissionsScored = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_scored_total",
		Help:      "Total submissions scored and recorded.",
	})
	m.submissionsDuplicate = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_duplicate_total",
		Help:      "Submissions whose content fingerprint was already in the ledger.",
	})
	m.submissionsRejected = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submissions_rejected_total",
		Help:      "Submissions rejected before scoring, by reason.",
	}, []string{"reason"})

	m.oracleLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "oracle_request_duration_seconds",
		Help:      "Latency of scoring oracle requests.",
		Buckets:   m.histogramBuckets,
	})
	m.oracleErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "oracle_errors_total",
		Help:      "Failed scoring oracle requests.",
	})

	m.storeUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "store_update_duration_seconds",
		Help:      "Latency of score record updates.",
		Buckets:   m.histogramBuckets,
	})
	m.storeQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "store_query_duration_seconds",
		Help:      "Latency of score and leaderboard reads.",
		Buckets:   m.histogramBuckets,
	})
	m.trackedUsers = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "tracked_users",
		Help:      "Number of users with at least one scored submission.",
	})
	m.ledgerSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "ledger_fingerprints",
		Help:      "Number of content fingerprints in the ledger.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by endpoint and method.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})

	return m
}

// Package-level helpers operating on the global manager.

func RecordSubmissionScored() {
	globalManager.submissionsScored.Inc()
}

func RecordSubmissionDuplicate() {
	globalManager.submissionsDuplicate.Inc()
}

func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}

func RecordOracleLatency(seconds float64) {
	globalManager.oracleLatency.Observe(seconds)
}

func RecordOracleError() {
	globalManager.oracleErrors.Inc()
}

func RecordStoreUpdateLatency(seconds float64) {
	globalManager.storeUpdateLatency.Observe(seconds)
}

func RecordStoreQueryLatency(seconds float64) {
	globalManager.storeQueryLatency.Observe(seconds)
}

func UpdateTrackedUsers(count int) {
	globalManager.trackedUsers.Set(float64(count))
}

func UpdateLedgerSize(count int64) {
	globalManager.ledgerSize.Set(float64(count))
}

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(seconds)
}

// GetRegistry exposes the custom registry for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
