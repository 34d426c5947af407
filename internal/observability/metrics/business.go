package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, requestSize, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if requestSize > 0 {
		HTTPRequestSize.WithLabelValues(method, path).Observe(float64(requestSize))
	}
	HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// RecordRateLimited counts a request rejected by the rate limiter.
func RecordRateLimited(path string) {
	HTTPRateLimitedTotal.WithLabelValues(path).Inc()
}

// RecordBookmarkOperation counts one bookmark store operation.
func RecordBookmarkOperation(operation, result string) {
	BookmarkOperationsTotal.WithLabelValues(operation, result).Inc()
}

// SetBookmarksStored updates the bookmark set size gauge.
func SetBookmarksStored(n int) {
	BookmarksStored.Set(float64(n))
}

// RecordPreferenceOperation counts one selected-city read or write.
func RecordPreferenceOperation(operation, result string) {
	PreferenceOperationsTotal.WithLabelValues(operation, result).Inc()
}

// RecordNewsAPIRequest records the outcome of one news provider request.
// articles is only added for successful requests.
func RecordNewsAPIRequest(status string, duration time.Duration, articles int) {
	NewsAPIRequestsTotal.WithLabelValues(status).Inc()
	NewsAPIRequestDuration.Observe(duration.Seconds())
	if status == "success" {
		NewsAPIArticlesTotal.Add(float64(articles))
	}
}

// RecordReaderFetch records an article reader fetch.
// Rejected fetches (invalid or private URLs) carry no duration.
func RecordReaderFetch(result string, duration time.Duration) {
	ReaderFetchAttemptsTotal.WithLabelValues(result).Inc()
	if result != "rejected" {
		ReaderFetchDuration.Observe(duration.Seconds())
	}
}
