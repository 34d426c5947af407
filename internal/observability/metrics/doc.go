// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Bookmark and preference store operations
//   - News provider requests and article reader fetches
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "citypulse/internal/observability/metrics"
//
//	func loadFeed(ctx context.Context, city string) {
//	    start := time.Now()
//	    articles, err := client.FetchCityNews(ctx, city)
//	    metrics.RecordNewsAPIRequest(statusOf(err), time.Since(start), len(articles))
//	}
package metrics
