package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	QuoteBonus   = "bonus"
	QuoteNoBonus = "no_bonus"
	QuoteInvalid = "invalid"

	LoadNetwork = "network"
	LoadCache   = "cache"
	LoadEmpty   = "empty"
)

// Manager manages all Prometheus metrics for the bonus service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Quote metrics
	quotes      *prometheus.CounterVec
	tierMatches *prometheus.CounterVec
	bonusAmount prometheus.Histogram

	// Rule table metrics
	tierLoads        *prometheus.CounterVec
	tiersLoaded      prometheus.Gauge
	tierLoadDuration prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec

	// System metrics
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
// the collectors land on the prometheus default registerer.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bonus",
		subsystem:        "calculator",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.quotes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "quotes_total",
		Help:        "Total number of bonus quotes by outcome",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	m.tierMatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tier_matches_total",
		Help:        "Total number of quotes per matched tier label",
		ConstLabels: constLabels,
	}, []string{"tier"})

	m.bonusAmount = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "bonus_amount",
		Help:        "Distribution of computed bonus amounts in whole currency units",
		Buckets:     []float64{0, 10, 50, 100, 250, 500, 1000, 2000, 5000, 10000},
		ConstLabels: constLabels,
	})

	m.tierLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tier_loads_total",
		Help:        "Rule table loads by where the table came from (network, cache, empty)",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	m.tiersLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tiers_loaded",
		Help:        "Number of tiers in the active rule table",
		ConstLabels: constLabels,
	})

	m.tierLoadDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "tier_load_duration_milliseconds",
		Help:        "Time spent loading the rule table in milliseconds",
		Buckets:     []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		ConstLabels: constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_by_endpoint_total",
		Help:        "HTTP error responses by endpoint, method and error type",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "error_type"})

	m.rateLimited = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rate_limited_total",
		Help:        "Requests rejected by the rate limiter",
		ConstLabels: constLabels,
	}, []string{"endpoint"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_usage_bytes",
		Help:        "System memory usage in bytes",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutine_count",
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: constLabels,
	})
}

// RecordQuote counts a quote by outcome and, when a tier matched, by tier.
func (m *Manager) RecordQuote(outcome, tierLabel string, bonusAmount int64) {
	if !m.enabled {
		return
	}
	m.quotes.WithLabelValues(outcome).Inc()
	if outcome == QuoteBonus {
		m.tierMatches.WithLabelValues(tierLabel).Inc()
		m.bonusAmount.Observe(float64(bonusAmount))
	}
}

// RecordTierLoad counts a rule table load and sets the active tier gauge.
func (m *Manager) RecordTierLoad(outcome string, tiers int, durationMs float64) {
	if !m.enabled {
		return
	}
	m.tierLoads.WithLabelValues(outcome).Inc()
	m.tiersLoaded.Set(float64(tiers))
	m.tierLoadDuration.Observe(durationMs)
}

// RecordHTTPRequest counts one HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint counts an error response.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordRateLimited counts a request rejected by the limiter.
func (m *Manager) RecordRateLimited(endpoint string) {
	if !m.enabled {
		return
	}
	m.rateLimited.WithLabelValues(endpoint).Inc()
}

// UpdateSystem sets the process gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// RecordGCPause observes an average GC pause in milliseconds.
func (m *Manager) RecordGCPause(pauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemGCPauseTime.Observe(pauseMs)
}

// RecordQuote records a quote on the global manager.
func RecordQuote(outcome, tierLabel string, bonusAmount int64) {
	globalManager.RecordQuote(outcome, tierLabel, bonusAmount)
}

// RecordTierLoad records a rule table load on the global manager.
func RecordTierLoad(outcome string, tiers int, durationMs float64) {
	globalManager.RecordTierLoad(outcome, tiers, durationMs)
}

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByEndpoint records an error response on the global manager.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// RecordRateLimited records a limiter rejection on the global manager.
func RecordRateLimited(endpoint string) {
	globalManager.RecordRateLimited(endpoint)
}

// UpdateSystem sets process gauges on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memoryBytes, goroutines)
}

// RecordGCPause records a GC pause on the global manager.
func RecordGCPause(pauseMs float64) {
	globalManager.RecordGCPause(pauseMs)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
