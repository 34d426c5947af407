package newsapi

import (
	"errors"
	"fmt"
)

// ErrFetchFailed matches every *FetchError via errors.Is.
var ErrFetchFailed = errors.New("news fetch failed")

// ErrMalformedResponse matches every *ParseError via errors.Is.
var ErrMalformedResponse = errors.New("malformed news response")

// FetchError reports a request that did not produce a successful provider response:
// a transport failure, a non-2xx status, a body with status "error", an open
// circuit or a rate-limit wait that was abandoned.
type FetchError struct {
	City       string
	StatusCode int    // 0 when no response was received
	Code       string // provider error code, e.g. "apiKeyInvalid"
	Message    string // provider error message
	Err        error  // underlying cause, if any
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Code != "":
		return fmt.Sprintf("fetch news for %q: HTTP %d %s: %s", e.City, e.StatusCode, e.Code, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch news for %q: HTTP %d", e.City, e.StatusCode)
	case e.Code != "":
		return fmt.Sprintf("fetch news for %q: %s: %s", e.City, e.Code, e.Message)
	default:
		return fmt.Sprintf("fetch news for %q: %v", e.City, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// ParseError reports a 2xx body that does not match the expected schema.
// Index is the offending article position, or -1 for the envelope.
type ParseError struct {
	Index int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		if e.Err != nil {
			return fmt.Sprintf("decode news response: %v", e.Err)
		}
		return fmt.Sprintf("decode news response: missing %s", e.Field)
	}
	return fmt.Sprintf("decode news response: article %d: missing %s", e.Index, e.Field)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrMalformedResponse }
