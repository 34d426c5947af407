package reader

import (
	"fmt"
	"time"
)

// Config controls article page fetching.
type Config struct {
	// Timeout is the maximum duration for fetching one page.
	// Default: 15s
	Timeout time.Duration

	// MaxBodySize is the maximum page size in bytes, enforced while reading.
	// Default: 5MB
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow. Each target is
	// validated like the original URL.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs blocks URLs resolving to private/loopback/link-local
	// addresses. Must stay true outside tests.
	// Default: true
	DenyPrivateIPs bool

	// UserAgent identifies the reader to publishers.
	UserAgent string
}

// DefaultConfig returns the default reader configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        15 * time.Second,
		MaxBodySize:    5 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "CityPulseReader/1.0",
	}
}

// Validate checks the configuration values.
//
// Validation rules:
//   - Timeout: > 0
//   - MaxBodySize: 1KB-50MB
//   - MaxRedirects: 0-10
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(50 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user agent is required")
	}
	return nil
}
