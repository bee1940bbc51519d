// Package metrics provides Prometheus metrics for the jury scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the jury service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Snapshot metrics. One snapshot is a full replacement of a watched
	// collection, so the counter doubles as a change-rate indicator.
	snapshotsApplied *prometheus.CounterVec
	rebuildDuration  prometheus.Histogram

	// Write path metrics.
	submits      prometheus.Counter
	submitErrors prometheus.Counter
	votesCast    prometheus.Counter

	// Reset sweep metrics.
	resetDeletes  prometheus.Counter
	resetFailures prometheus.Counter

	// Collection size gauges.
	entries   prometheus.Gauge
	judgments prometheus.Gauge
	votes     prometheus.Gauge
	drafts    prometheus.Gauge

	// HTTP performance metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "jury",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
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

	m.snapshotsApplied = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "snapshots_applied_total",
			Help:      "Total number of full collection snapshots applied, by collection",
		},
		[]string{"collection"},
	)

	m.rebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregate_rebuild_duration_milliseconds",
		Help:      "Duration of a full aggregate recompute in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.submits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submits_total",
		Help:      "Total number of judgments successfully persisted",
	})

	m.submitErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submit_errors_total",
		Help:      "Total number of judgment submits that failed at the store",
	})

	m.votesCast = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "votes_cast_total",
		Help:      "Total number of popular votes persisted",
	})

	m.resetDeletes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reset_deletes_total",
		Help:      "Total number of records removed by reset sweeps",
	})

	m.resetFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reset_failures_total",
		Help:      "Total number of deletes that failed during reset sweeps",
	})

	m.entries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "entries",
		Help:      "Current number of entries in the competition",
	})

	m.judgments = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "judgments",
		Help:      "Current number of persisted judgment records",
	})

	m.votes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "votes",
		Help:      "Current number of persisted votes",
	})

	m.drafts = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "draft_entries",
		Help:      "Current number of entries with unsubmitted draft edits",
	})

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
}

// IncSnapshotApplied increments the applied-snapshot counter for a collection.
func IncSnapshotApplied(collection string) {
	globalManager.snapshotsApplied.WithLabelValues(collection).Inc()
}

// ObserveRebuildDuration records one aggregate recompute duration in milliseconds.
func ObserveRebuildDuration(ms float64) {
	globalManager.rebuildDuration.Observe(ms)
}

// IncSubmits increments the successful submit counter.
func IncSubmits() {
	globalManager.submits.Inc()
}

// IncSubmitErrors increments the failed submit counter.
func IncSubmitErrors() {
	globalManager.submitErrors.Inc()
}

// IncVotesCast increments the votes cast counter.
func IncVotesCast() {
	globalManager.votesCast.Inc()
}

// AddResetDeletes adds to the reset delete counter.
func AddResetDeletes(n int) {
	globalManager.resetDeletes.Add(float64(n))
}

// AddResetFailures adds to the reset failure counter.
func AddResetFailures(n int) {
	globalManager.resetFailures.Add(float64(n))
}

// SetEntries sets the current entry count.
func SetEntries(n int) {
	globalManager.entries.Set(float64(n))
}

// SetJudgments sets the current judgment count.
func SetJudgments(n int) {
	globalManager.judgments.Set(float64(n))
}

// SetVotes sets the current vote count.
func SetVotes(n int) {
	globalManager.votes.Set(float64(n))
}

// SetDrafts sets the current count of entries with draft edits.
func SetDrafts(n int) {
	globalManager.drafts.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
