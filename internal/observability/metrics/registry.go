package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration buckets cover fast store reads (5ms) up to slow provider calls (10s).
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestsInFlight tracks the current number of HTTP requests being processed.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// HTTPRateLimitedTotal counts requests rejected with 429 by path
	HTTPRateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of HTTP requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	// HTTPRequestSize measures HTTP request body size in bytes
	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_size_bytes",
			Help:    "HTTP request size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)
)

// Store metrics track the bookmark and preference stores
var (
	// BookmarkOperationsTotal counts bookmark store operations by outcome.
	// result: added, duplicate, removed, hit, miss, listed, read_failed, write_failed
	BookmarkOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookmark_operations_total",
			Help: "Total number of bookmark store operations",
		},
		[]string{"operation", "result"},
	)

	// BookmarksStored is the size of the bookmark set after the last read or write
	BookmarksStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookmarks_stored",
			Help: "Number of bookmarks in the persisted set",
		},
	)

	// PreferenceOperationsTotal counts selected-city reads and writes by result
	PreferenceOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_operations_total",
			Help: "Total number of selected-city preference operations",
		},
		[]string{"operation", "result"},
	)
)

// Provider metrics track outbound calls
var (
	// NewsAPIRequestsTotal counts news provider requests by status
	// status: success, http_error, transport_error, parse_error, circuit_open, rate_limited
	NewsAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsapi_requests_total",
			Help: "Total number of news provider requests",
		},
		[]string{"status"},
	)

	// NewsAPIRequestDuration measures news provider round trips
	NewsAPIRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "newsapi_request_duration_seconds",
			Help:    "News provider request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
	)

	// NewsAPIArticlesTotal counts normalized articles returned by the provider
	NewsAPIArticlesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "newsapi_articles_total",
			Help: "Total number of articles returned by the news provider",
		},
	)

	// ReaderFetchAttemptsTotal counts article reader fetches by result
	ReaderFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reader_fetch_attempts_total",
			Help: "Total number of article reader fetch attempts",
		},
		[]string{"result"}, // result: success, failure, rejected
	)

	// ReaderFetchDuration measures time to fetch and extract an article
	ReaderFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reader_fetch_duration_seconds",
			Help:    "Time taken to fetch and extract article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)
)
