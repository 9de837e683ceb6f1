package telemetry

import "time"

// Config aggregates the observability configuration for one process.
type Config struct {
	// ServiceName identifies the process in traces and metrics.
	ServiceName string

	// ServiceVersion is the build version.
	ServiceVersion string

	// Environment distinguishes deployments (e.g. "lab", "production").
	Environment string

	Logging LoggingConfig
	Tracing TracingConfig
	Metrics MetricsConfig
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string

	// Format is "console" for human-readable output or "json".
	Format string

	// Output is "stdout", "stderr", or a file path.
	Output string
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled bool

	// Exporter is "stdout" (development), "otlp" (collector), or "none".
	Exporter string

	// Endpoint is the OTLP gRPC collector address.
	Endpoint string

	// Insecure disables TLS on the OTLP connection.
	Insecure bool

	// SamplingRate is the fraction of traces kept, 0.0 to 1.0.
	SamplingRate float64

	MaxExportBatchSize int
	ExportTimeout      time.Duration
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool

	// Namespace prefixes every metric name.
	Namespace string

	// ListenAddress, when non-empty, serves /metrics over HTTP for the
	// lifetime of the run.
	ListenAddress string
}

// DefaultConfig returns the configuration used by the CLI: console
// logging, tracing off, metrics collected in-process but not served.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "netforge",
		ServiceVersion: "dev",
		Environment:    "lab",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Tracing: TracingConfig{
			Exporter:           "stdout",
			SamplingRate:       1.0,
			MaxExportBatchSize: 512,
			ExportTimeout:      30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "netforge",
		},
	}
}
