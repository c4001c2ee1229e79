package streamly

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/naushadh/streamly/journal"
	"github.com/naushadh/streamly/service/dao"
	"github.com/naushadh/streamly/tracing"
)

// Option customises the Service façade.
type Option func(s *Service)

// WithConfig replaces the whole configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithThreads sets the default credit limit applied to every run started
// through the Runtime. Zero forces inline execution, a negative value
// removes the bound.
func WithThreads(limit int) Option {
	return func(s *Service) { s.config.Engine.Threads = limit }
}

// WithRecordingDAO sets the recording store.
func WithRecordingDAO(service dao.Service[string, journal.Recording]) Option {
	return func(s *Service) { s.recordingDAO = service }
}

// WithTracing configures OpenTelemetry tracing for the service. If
// outputFile is empty the stdout exporter is used; otherwise traces are
// written to the supplied file path. The function is safe to call multiple
// times – the first successful initialisation wins.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom
// SpanExporter. This enables integrations with exporters other than the
// built-in stdout exporter, for example OTLP, Jaeger or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		_ = tracing.InitWithExporter(serviceName, serviceVersion, exporter)
	}
}
