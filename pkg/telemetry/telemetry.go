// Package telemetry provides observability instrumentation for netforge:
// structured logging (zerolog), Prometheus metrics, and OpenTelemetry
// tracing behind one configuration.
package telemetry

import "context"

// Telemetry bundles the observability components for one process.
type Telemetry struct {
	Logger  *Logger
	Metrics *Metrics
	Tracer  *Tracer
}

// New initializes all components from cfg.
func New(cfg Config) (*Telemetry, error) {
	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}
	metrics.Serve()

	tracer, err := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, err
	}

	return &Telemetry{Logger: logger, Metrics: metrics, Tracer: tracer}, nil
}

// Nop returns a fully disabled bundle. Library consumers that were not
// handed a Telemetry use it instead of nil checks.
func Nop() *Telemetry {
	metrics, _ := NewMetrics(MetricsConfig{})
	tracer, _ := NewTracer(TracingConfig{}, "netforge", "", "")
	return &Telemetry{Logger: NopLogger(), Metrics: metrics, Tracer: tracer}
}

// Shutdown flushes buffered telemetry. Call before process exit.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.Tracer.Shutdown(ctx)
}
