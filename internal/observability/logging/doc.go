// Package logging provides structured logging utilities with context propagation.
//
// This package wraps the standard library's log/slog package. The level and
// output format come from LOG_LEVEL (debug, info, warn, error) and LOG_FORMAT
// (json, text).
//
// Example usage:
//
//	import "citypulse/internal/observability/logging"
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started", slog.String("version", "1.0"))
//	}
//
//	func handleRequest(ctx context.Context) {
//	    logger := logging.WithRequestID(ctx, slog.Default())
//	    logger.Info("processing request")
//	}
package logging
