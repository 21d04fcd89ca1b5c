// Package metrics provides Prometheus metrics for the arcade score service.
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

// Manager manages all Prometheus metrics for the arcade service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Ledger metrics
	scoresRecorded  *prometheus.CounterVec
	leaderboardSize *prometheus.GaugeVec

	// Aggregator metrics
	sessionsRecorded *prometheus.CounterVec
	sessionsTotal    prometheus.Gauge
	gamesTracked     prometheus.Gauge

	// Failure metrics
	validationErrors  *prometheus.CounterVec
	persistenceErrors *prometheus.CounterVec
	degradedReads     *prometheus.CounterVec
	droppedRecords    *prometheus.CounterVec

	// Storage metrics
	storageLatency *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "arcade",
		subsystem:        "scores",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Enabled reports whether recording is switched on.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauge updaters should run.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.scoresRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "scores_recorded_total",
		Help:        "Scores accepted into a leaderboard write",
		ConstLabels: labels,
	}, []string{"game"})

	m.leaderboardSize = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "leaderboard_size",
		Help:        "Entries held in a game's leaderboard after the last write",
		ConstLabels: labels,
	}, []string{"game"})

	m.sessionsRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sessions_recorded_total",
		Help:        "Sessions appended to the statistics log",
		ConstLabels: labels,
	}, []string{"game"})

	m.sessionsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sessions_in_log",
		Help:        "Sessions currently held in the statistics log",
		ConstLabels: labels,
	})

	m.gamesTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "games_tracked",
		Help:        "Distinct games with at least one recorded session",
		ConstLabels: labels,
	})

	m.validationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "validation_errors_total",
		Help:        "Writes rejected before touching storage",
		ConstLabels: labels,
	}, []string{"component"})

	m.persistenceErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "persistence_errors_total",
		Help:        "Storage writes that failed",
		ConstLabels: labels,
	}, []string{"component"})

	m.degradedReads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "degraded_reads_total",
		Help:        "Reads that fell back to empty data because stored content was corrupt or unreadable",
		ConstLabels: labels,
	}, []string{"component", "status"})

	m.droppedRecords = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "dropped_records_total",
		Help:        "Stored rows skipped on load because they could not be decoded",
		ConstLabels: labels,
	}, []string{"component"})

	m.storageLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "storage_latency_milliseconds",
		Help:        "Store read/write latency in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	}, []string{"backend", "op"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "HTTP error responses by endpoint",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: labels,
	})
}

// RecordScore increments the accepted-score counter and sets the board size.
func RecordScore(game string, boardSize int) {
	if !globalManager.enabled {
		return
	}
	globalManager.scoresRecorded.WithLabelValues(game).Inc()
	globalManager.leaderboardSize.WithLabelValues(game).Set(float64(boardSize))
}

// RecordSession increments the session counter for game.
func RecordSession(game string) {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsRecorded.WithLabelValues(game).Inc()
}

// UpdateSessionTotals sets the log size and distinct game gauges.
func UpdateSessionTotals(sessions, games int) {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsTotal.Set(float64(sessions))
	globalManager.gamesTracked.Set(float64(games))
}

// RecordValidationError counts a rejected write.
func RecordValidationError(component string) {
	if !globalManager.enabled {
		return
	}
	globalManager.validationErrors.WithLabelValues(component).Inc()
}

// RecordPersistenceError counts a failed storage write.
func RecordPersistenceError(component string) {
	if !globalManager.enabled {
		return
	}
	globalManager.persistenceErrors.WithLabelValues(component).Inc()
}

// RecordDegradedRead counts a read that fell back to empty data.
func RecordDegradedRead(component, status string) {
	if !globalManager.enabled {
		return
	}
	globalManager.degradedReads.WithLabelValues(component, status).Inc()
}

// RecordDroppedRecords counts stored rows skipped while loading.
func RecordDroppedRecords(component string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.droppedRecords.WithLabelValues(component).Add(float64(n))
}

// RecordStorageLatency records a store operation latency in milliseconds.
func RecordStorageLatency(backend, op string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.storageLatency.WithLabelValues(backend, op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error response.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the registry the global manager is bound to.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval is how often the process should refresh the system gauges.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}
