package reader

import "errors"

// Sentinel errors returned (wrapped) by Reader.Read.
var (
	// ErrInvalidURL indicates the URL is malformed or uses a scheme other than http(s).
	ErrInvalidURL = errors.New("invalid article URL")

	// ErrPrivateIP indicates the URL, or a redirect target, resolves to a
	// loopback, private or link-local address.
	ErrPrivateIP = errors.New("article URL resolves to a private address")

	// ErrBodyTooLarge indicates the page exceeded Config.MaxBodySize.
	ErrBodyTooLarge = errors.New("article page too large")

	// ErrTooManyRedirects indicates the redirect chain exceeded Config.MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrReadabilityFailed indicates no readable content could be extracted.
	ErrReadabilityFailed = errors.New("readable content extraction failed")

	// ErrTimeout indicates the page did not load within Config.Timeout.
	ErrTimeout = errors.New("article fetch timed out")

	// ErrUpstreamStatus indicates the publisher answered with a non-200 status.
	ErrUpstreamStatus = errors.New("publisher returned an error status")
)
