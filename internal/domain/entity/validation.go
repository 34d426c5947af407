package entity

import (
	"fmt"
	"net/url"
	"strings"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ValidateURL validates the format of an article URL.
// It checks that the URL is well-formed, uses HTTP/HTTPS scheme, and has a valid host.
// No network lookups are made; articles are identifiers here, not fetch targets.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "invalid URL format"}
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}

	return nil
}

// ValidateCity checks a city name chosen by the user or passed to the news feed.
func ValidateCity(city string) error {
	if strings.TrimSpace(city) == "" {
		return &ValidationError{Field: "city", Message: "is required"}
	}
	if len(city) > 100 {
		return &ValidationError{Field: "city", Message: "must not exceed 100 characters"}
	}
	return nil
}
