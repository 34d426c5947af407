// Package reader fetches article pages and extracts their readable content
// with go-shiori/go-readability. It backs the in-app article view.
package reader

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"citypulse/internal/observability/metrics"
	"citypulse/internal/observability/tracing"
	"citypulse/internal/resilience/circuitbreaker"
)

// Content is the readable form of an article page.
type Content struct {
	URL      string `json:"url"` // final URL after redirects
	Title    string `json:"title"`
	Byline   string `json:"byline,omitempty"`
	SiteName string `json:"siteName,omitempty"`
	Excerpt  string `json:"excerpt,omitempty"`
	Image    string `json:"image,omitempty"`
	Text     string `json:"text"`
	Length   int    `json:"length"`
}

// StatusError is returned when the publisher answers with a non-200 status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("publisher returned HTTP %d", e.StatusCode)
}

func (e *StatusError) Is(target error) bool { return target == ErrUpstreamStatus }

// Reader fetches pages with SSRF protection, a size cap and a circuit breaker.
// It is safe for concurrent use.
type Reader struct {
	client   *http.Client
	resolver *net.Resolver
	breaker  *circuitbreaker.CircuitBreaker
	config   Config
	logger   *slog.Logger
}

// New creates a Reader. Redirect targets and dialed addresses are validated
// with the same rules as the requested URL.
func New(config Config, logger *slog.Logger) (*Reader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("reader config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	cbConfig := circuitbreaker.ReaderConfig()
	cbConfig.IsSuccessful = countsAsSuccess

	r := &Reader{
		resolver: net.DefaultResolver,
		breaker:  circuitbreaker.New(cbConfig),
		config:   config,
		logger:   logger,
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	if config.DenyPrivateIPs {
		dialer.Control = denyPrivateControl
	}

	// the per-request context carries Config.Timeout
	r.client = &http.Client{
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > r.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if _, err := validateURL(req.Context(), r.resolver, req.URL.String(), r.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target: %w", err)
			}
			return nil
		},
	}
	return r, nil
}

// Breaker exposes the circuit breaker for health reporting.
func (r *Reader) Breaker() *circuitbreaker.CircuitBreaker {
	return r.breaker
}

// countsAsSuccess keeps per-article problems (missing pages, unreadable
// markup, blocked targets) from tripping the breaker; only transport
// failures, timeouts and 5xx responses count.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode < 500
	}
	return errors.Is(err, ErrReadabilityFailed) ||
		errors.Is(err, ErrBodyTooLarge) ||
		errors.Is(err, ErrTooManyRedirects) ||
		errors.Is(err, ErrPrivateIP) ||
		errors.Is(err, ErrInvalidURL) ||
		errors.Is(err, context.Canceled)
}

// Read fetches rawURL and extracts its readable content.
func (r *Reader) Read(ctx context.Context, rawURL string) (*Content, error) {
	ctx, span := tracing.Start(ctx, "reader.Read",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("reader.url", rawURL)))
	defer span.End()

	u, err := validateURL(ctx, r.resolver, rawURL, r.config.DenyPrivateIPs)
	if err != nil {
		metrics.RecordReaderFetch("rejected", 0)
		tracing.RecordError(span, err)
		return nil, err
	}

	start := time.Now()
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.fetch(ctx, u)
	})
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordReaderFetch("failure", elapsed)
		tracing.RecordError(span, err)
		r.logger.WarnContext(ctx, "article read failed",
			slog.String("url", rawURL),
			slog.Duration("duration", elapsed),
			slog.Any("error", err))
		return nil, err
	}

	content := result.(*Content)
	metrics.RecordReaderFetch("success", elapsed)
	span.SetAttributes(attribute.Int("reader.length", content.Length))
	r.logger.DebugContext(ctx, "article read",
		slog.String("url", rawURL),
		slog.Int("length", content.Length),
		slog.Duration("duration", elapsed))
	return content, nil
}

func (r *Reader) fetch(ctx context.Context, u *url.URL) (*Content, error) {
	reqCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", r.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(reqCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: request exceeded %v", ErrTimeout, r.config.Timeout)
		}
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	htmlBytes, err := io.ReadAll(io.LimitReader(resp.Body, r.config.MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(htmlBytes)) > r.config.MaxBodySize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrBodyTooLarge, r.config.MaxBodySize)
	}

	finalURL := u
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), finalURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadabilityFailed, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return nil, fmt.Errorf("%w: no readable content found", ErrReadabilityFailed)
	}

	return &Content{
		URL:      finalURL.String(),
		Title:    strings.TrimSpace(article.Title),
		Byline:   strings.TrimSpace(article.Byline),
		SiteName: strings.TrimSpace(article.SiteName),
		Excerpt:  strings.TrimSpace(article.Excerpt),
		Image:    article.Image,
		Text:     text,
		Length:   article.Length,
	}, nil
}
