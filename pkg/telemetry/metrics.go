package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for configuration runs. A
// disabled instance is a safe no-op.
type Metrics struct {
	config   MetricsConfig
	registry *prometheus.Registry

	runsCompleted    *prometheus.CounterVec
	devicesProcessed *prometheus.CounterVec
	deviceDuration   *prometheus.HistogramVec
	sessionConnects  *prometheus.CounterVec
}

// NewMetrics creates a metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	registry := prometheus.NewRegistry()
	namespace := cfg.Namespace

	m := &Metrics{
		config:   cfg,
		registry: registry,

		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Total number of plan/apply runs completed",
			},
			[]string{"operation", "status"},
		),
		devicesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "devices_processed_total",
				Help:      "Total number of devices processed",
			},
			[]string{"vendor", "status"},
		),
		deviceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "device_duration_seconds",
				Help:      "Per-device processing duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"vendor", "operation"},
		),
		sessionConnects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_connects_total",
				Help:      "Total number of management session connection attempts",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.runsCompleted, m.devicesProcessed, m.deviceDuration, m.sessionConnects,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordRunCompleted counts a finished run with its overall status.
func (m *Metrics) RecordRunCompleted(operation, status string) {
	if m.registry == nil {
		return
	}
	m.runsCompleted.WithLabelValues(operation, status).Inc()
}

// RecordDevice counts one per-device outcome and its duration.
func (m *Metrics) RecordDevice(vendor, operation, status string, duration time.Duration) {
	if m.registry == nil {
		return
	}
	m.devicesProcessed.WithLabelValues(vendor, status).Inc()
	m.deviceDuration.WithLabelValues(vendor, operation).Observe(duration.Seconds())
}

// RecordSessionConnect counts a connection attempt result.
func (m *Metrics) RecordSessionConnect(result string) {
	if m.registry == nil {
		return
	}
	m.sessionConnects.WithLabelValues(result).Inc()
}

// Handler exposes the registry for scraping, or nil when disabled.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return nil
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve starts an HTTP listener for /metrics when a listen address is
// configured. It returns immediately; the listener lives for the rest of
// the process.
func (m *Metrics) Serve() {
	if m.registry == nil || m.config.ListenAddress == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	go func() {
		_ = http.ListenAndServe(m.config.ListenAddress, mux) //nolint:gosec // scrape endpoint, run-scoped
	}()
}
