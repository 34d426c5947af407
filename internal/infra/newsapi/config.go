package newsapi

import (
	"fmt"
	"net/url"
	"time"

	"citypulse/internal/resilience/circuitbreaker"
)

// Config holds the news provider client settings.
type Config struct {
	// BaseURL is the provider API root; "/everything" is appended.
	BaseURL string
	// APIKey is sent as the apiKey query parameter. Never logged.
	APIKey string
	// Timeout bounds a single request including body read.
	Timeout time.Duration
	// PageSize is the number of articles requested.
	PageSize int
	// RatePerSecond and Burst shape outbound calls to protect the key quota.
	RatePerSecond float64
	Burst         int
	// MaxBodySize caps the response body read.
	MaxBodySize int64
	// Breaker configures the circuit breaker around provider calls.
	Breaker circuitbreaker.Config
}

// DefaultConfig returns production defaults. APIKey must still be set.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "https://newsapi.org/v2",
		Timeout:       30 * time.Second,
		PageSize:      20,
		RatePerSecond: 1,
		Burst:         5,
		MaxBodySize:   5 * 1024 * 1024,
		Breaker:       circuitbreaker.NewsAPIConfig(),
	}
}

// Validate checks the configuration before a client is built.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base URL must be an absolute http(s) URL, got %q", c.BaseURL)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api key is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page size must be between 1 and 100, got %d", c.PageSize)
	}
	if c.RatePerSecond <= 0 {
		return fmt.Errorf("rate per second must be positive, got %v", c.RatePerSecond)
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", c.Burst)
	}
	if c.MaxBodySize < 1024 {
		return fmt.Errorf("max body size must be at least 1024 bytes, got %d", c.MaxBodySize)
	}
	return nil
}
