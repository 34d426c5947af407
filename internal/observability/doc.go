// Package observability groups the logging, metrics, and tracing helpers
// shared by the API server and the CLI.
//
// Subpackages:
//   - logging: slog construction and request-scoped loggers
//   - metrics: Prometheus collectors and recorders
//   - tracing: OpenTelemetry tracer and HTTP middleware
package observability
