package telemetry

import (
	"errors"
	"net/http"
	"time"

	"github.com/goliatone/go-component"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	Namespace string
	Buckets   []float64
}

// Metrics counts resolver cache activity and instance construction.
type Metrics struct {
	resolutions  *prometheus.CounterVec
	constructed  *prometheus.CounterVec
	stepFailures *prometheus.CounterVec
	duration     prometheus.Histogram

	registry *prometheus.Registry
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics(cfg MetricsConfig) *Metrics {
	buckets := cfg.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "constructor_resolutions_total",
				Help:      "Constructor option resolutions by cache result",
			},
			[]string{"result"},
		),
		constructed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "instances_constructed_total",
				Help:      "Instance initializations by outcome",
			},
			[]string{"status"},
		),
		stepFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "construction_step_failures_total",
				Help:      "Initialization failures by step",
			},
			[]string{"step"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "construction_duration_seconds",
				Help:      "Duration of instance initialization in seconds",
				Buckets:   buckets,
			},
		),
	}
	m.registry.MustRegister(m.resolutions, m.constructed, m.stepFailures, m.duration)
	return m
}

// ResolveHit implements component.ResolverObserver.
func (m *Metrics) ResolveHit(*component.Constructor) {
	m.resolutions.WithLabelValues("hit").Inc()
}

// ResolveMiss implements component.ResolverObserver.
func (m *Metrics) ResolveMiss(*component.Constructor) {
	m.resolutions.WithLabelValues("miss").Inc()
}

// Start implements component.Instrumentation.
func (m *Metrics) Start(*component.Instance) func(error) {
	started := time.Now()
	return func(err error) {
		m.duration.Observe(time.Since(started).Seconds())
		if err == nil {
			m.constructed.WithLabelValues("ok").Inc()
			return
		}
		m.constructed.WithLabelValues("error").Inc()
		step := "unknown"
		var stepErr *component.StepError
		if errors.As(err, &stepErr) {
			step = stepErr.Step
		}
		m.stepFailures.WithLabelValues(step).Inc()
	}
}

// Registry returns the private registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
