// Package metrics provides Prometheus metrics collection for gridpatch.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gridpatch"

// Collector holds all Prometheus metrics for gridpatch.
type Collector struct {
	// Request metrics
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	// Table metrics
	TableOperations *prometheus.CounterVec
	PatchOps        *prometheus.CounterVec
	Confirmations   *prometheus.CounterVec
	InvalidReorders *prometheus.CounterVec
	CommitDuration  prometheus.Histogram
	CommitErrors    *prometheus.CounterVec
	FeedSubscribers prometheus.Gauge

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
	ConfigLastReload   prometheus.Gauge
}

// New creates a collector registered with the default Prometheus registry.
func New() *Collector {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a new metrics collector with a custom registry.
// Useful for testing to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of HTTP requests currently being processed",
			},
		),

		TableOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "table_operations_total",
				Help:      "Table gestures by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		PatchOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "patch_ops_total",
				Help:      "Committed patch primitives by type",
			},
			[]string{"type"},
		),
		Confirmations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmations_total",
				Help:      "Confirmation prompts by action and resolution",
			},
			[]string{"action", "resolution"},
		),
		InvalidReorders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalid_reorders_total",
				Help:      "Rejected reorder requests by reason",
			},
			[]string{"reason"},
		),
		CommitDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "commit_duration_seconds",
				Help:      "Time spent committing patch events to the document store",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
		),
		CommitErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commit_errors_total",
				Help:      "Failed commits by operation",
			},
			[]string{"operation"},
		),
		FeedSubscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "feed_subscribers",
				Help:      "Number of connected live feed clients",
			},
		),

		ConfigReloads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_reload_errors_total",
				Help:      "Total number of config reload errors",
			},
		),
		ConfigLastReload: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "config_last_reload_timestamp",
				Help:      "Unix timestamp of last successful config reload",
			},
		),
	}
}

// ObserveOperation records a table gesture. A nil collector is a no-op so
// callers can run without metrics.
func (c *Collector) ObserveOperation(operation, outcome string) {
	if c == nil {
		return
	}
	c.TableOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveCommit records a commit attempt of the given primitive types.
func (c *Collector) ObserveCommit(operation string, types []string, took time.Duration, err error) {
	if c == nil {
		return
	}
	c.CommitDuration.Observe(took.Seconds())
	if err != nil {
		c.CommitErrors.WithLabelValues(operation).Inc()
		return
	}
	for _, t := range types {
		c.PatchOps.WithLabelValues(t).Inc()
	}
}

// ObserveConfirmation records how a confirmation prompt ended
// ("requested", "confirmed", "cancelled", "superseded").
func (c *Collector) ObserveConfirmation(action, resolution string) {
	if c == nil {
		return
	}
	c.Confirmations.WithLabelValues(action, resolution).Inc()
}

// ObserveInvalidReorder records a rejected reorder.
func (c *Collector) ObserveInvalidReorder(reason string) {
	if c == nil {
		return
	}
	c.InvalidReorders.WithLabelValues(reason).Inc()
}

// ObserveReload records a config reload attempt.
func (c *Collector) ObserveReload(at time.Time, err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.ConfigReloadErrors.Inc()
		return
	}
	c.ConfigReloads.Inc()
	c.ConfigLastReload.Set(float64(at.Unix()))
}

// StatusLabel returns a string label for the status code.
func StatusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
