// Package resilience provides fault tolerance patterns for the application.
//
// The package supports:
//   - Circuit breakers for the news provider, the article reader and the key-value store
//   - Retry with exponential backoff and jitter for establishing store connections at startup
//
// Outbound news requests are never retried: a failed feed load is reported to the
// caller, who decides whether to try again.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.NewsAPIConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callProvider()
//	})
//
//	err := retry.WithBackoff(ctx, retry.ConnectConfig(), func() error {
//	    return store.Ping(ctx)
//	})
package resilience
