package middleware

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/helm/pkg/router"
)

// Outcome label values.
const (
	OutcomeHandled   = "handled"
	OutcomeExhausted = "exhausted"
)

// noRoute is the route label of a dispatch no route matched.
const noRoute = "none"

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "helm").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for dispatch duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "helm",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus collectors.
type metrics struct {
	dispatchesTotal   *prometheus.CounterVec
	dispatchDuration  *prometheus.HistogramVec
	routeMatches      *prometheus.CounterVec
	activeConnections prometheus.Gauge
	socketErrors      *prometheus.CounterVec
}

// globalMetrics is created by the first call to Prometheus. Routers are
// built per connection, so every later call shares it instead of
// registering the collectors again.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatches_total",
			Help:        "Total number of dispatches by final route and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "outcome"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dispatch_duration_seconds",
			Help:        "Dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"route"}),

		routeMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_matches_total",
			Help:        "Total number of times each route pattern matched",
			ConstLabels: config.ConstLabels,
		}, []string{"route"}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_connections",
			Help:        "Number of open browser connections",
			ConstLabels: config.ConstLabels,
		}),

		socketErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "socket_errors_total",
			Help:        "Total browser connection errors by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

// Prometheus creates a handler that records dispatch metrics.
//
// Mount it with Use ahead of the routes. The options only take effect on
// the first call; later calls reuse the same collectors.
//
// Example:
//
//	r.Use(middleware.Prometheus(middleware.WithNamespace("shop")))
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) router.HandlerFunc {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(c *router.Context, next func()) {
		start := time.Now()
		next()
		duration := time.Since(start).Seconds()

		route := c.Route()
		if route == "" {
			route = noRoute
		}
		outcome := OutcomeHandled
		if c.Exhausted() {
			outcome = OutcomeExhausted
		}

		m.dispatchDuration.WithLabelValues(route).Observe(duration)
		m.dispatchesTotal.WithLabelValues(route, outcome).Inc()
		for _, pattern := range c.Matched() {
			m.routeMatches.WithLabelValues(pattern).Inc()
		}
	}
}

// RecordConnectionOpen records a browser connection being opened.
func RecordConnectionOpen() {
	if m := getMetrics(); m != nil {
		m.activeConnections.Inc()
	}
}

// RecordConnectionClose records a browser connection being closed.
func RecordConnectionClose() {
	if m := getMetrics(); m != nil {
		m.activeConnections.Dec()
	}
}

// RecordSocketError records a browser connection error.
func RecordSocketError(errorType string) {
	if m := getMetrics(); m != nil {
		m.socketErrors.WithLabelValues(errorType).Inc()
	}
}

func getMetrics() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}
