// Package newsapi fetches city news from a NewsAPI-compatible search endpoint
// and normalizes the results into entity.Article values.
package newsapi

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"citypulse/internal/domain/entity"
	"citypulse/internal/observability/metrics"
	"citypulse/internal/observability/tracing"
	"citypulse/internal/resilience/circuitbreaker"
)

// ErrResponseTooLarge is wrapped by a FetchError when the body exceeds Config.MaxBodySize.
var ErrResponseTooLarge = errors.New("response body too large")

var errRateLimitWait = errors.New("rate limit wait")

const userAgent = "CityPulse/1.0"

// Client calls the provider's /everything endpoint.
// It is safe for concurrent use.
type Client struct {
	cfg      Config
	endpoint *url.URL
	http     *http.Client
	breaker  *circuitbreaker.CircuitBreaker
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewClient validates cfg and builds a client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("newsapi config: %w", err)
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("newsapi config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	bcfg := cfg.Breaker
	if bcfg.Name == "" {
		bcfg = circuitbreaker.NewsAPIConfig()
	}
	if bcfg.IsSuccessful == nil {
		// a caller giving up is not a provider failure
		bcfg.IsSuccessful = func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		}
	}

	return &Client{
		cfg:      cfg,
		endpoint: base.JoinPath("everything"),
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		breaker: circuitbreaker.New(bcfg),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		logger:  logger,
	}, nil
}

// Breaker exposes the circuit breaker for health reporting.
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

// FetchCityNews returns the newest English articles matching city, in provider order.
//
// Errors:
//   - *entity.ValidationError when city is blank (no request is made)
//   - *FetchError for transport failures, non-2xx or "error" bodies, an open circuit
//   - *ParseError when a 2xx body does not match the expected schema
func (c *Client) FetchCityNews(ctx context.Context, city string) ([]entity.Article, error) {
	if err := entity.ValidateCity(city); err != nil {
		return nil, err
	}

	ctx, span := tracing.Start(ctx, "newsapi.FetchCityNews",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("news.city", city)))
	defer span.End()

	start := time.Now()
	articles, err := c.fetch(ctx, city)
	elapsed := time.Since(start)
	status := statusOf(err)
	metrics.RecordNewsAPIRequest(status, elapsed, len(articles))

	if err != nil {
		tracing.RecordError(span, err)
		c.logger.WarnContext(ctx, "news fetch failed",
			slog.String("city", city),
			slog.String("status", status),
			slog.Duration("duration", elapsed),
			slog.Any("error", err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("news.articles", len(articles)))
	c.logger.DebugContext(ctx, "news fetched",
		slog.String("city", city),
		slog.Int("articles", len(articles)),
		slog.Duration("duration", elapsed))
	return articles, nil
}

func (c *Client) fetch(ctx context.Context, city string) ([]entity.Article, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{City: city, Err: fmt.Errorf("%w: %w", errRateLimitWait, err)}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, city)
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpenState) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return nil, &FetchError{City: city, Err: err}
		}
		return nil, err
	}
	return result.([]entity.Article), nil
}

func (c *Client) requestURL(city string, withKey bool) string {
	q := url.Values{}
	q.Set("q", city)
	if withKey {
		q.Set("apiKey", c.cfg.APIKey)
	}
	q.Set("language", "en")
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(c.cfg.PageSize))

	u := *c.endpoint
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) do(ctx context.Context, city string) ([]entity.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(city, true), nil)
	if err != nil {
		return nil, &FetchError{City: city, Err: c.redact(err, city)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{City: city, Err: c.redact(err, city)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodySize+1))
	if err != nil {
		return nil, &FetchError{City: city, StatusCode: resp.StatusCode, Err: c.redact(err, city)}
	}
	if int64(len(body)) > c.cfg.MaxBodySize {
		return nil, &FetchError{City: city, StatusCode: resp.StatusCode, Err: ErrResponseTooLarge}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := &FetchError{City: city, StatusCode: resp.StatusCode}
		// error bodies are best effort
		var env envelope
		if json.Unmarshal(body, &env) == nil {
			fe.Code, fe.Message = env.Code, env.Message
		}
		return nil, fe
	}

	return decode(body, city, resp.StatusCode)
}

// redact replaces the request URL inside transport errors so the api key
// never reaches logs or responses.
func (c *Client) redact(err error, city string) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return &url.Error{Op: ue.Op, URL: c.requestURL(city, false), Err: ue.Err}
	}
	return err
}

func statusOf(err error) string {
	if err == nil {
		return "success"
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return "parse_error"
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		switch {
		case errors.Is(fe.Err, circuitbreaker.ErrOpenState), errors.Is(fe.Err, circuitbreaker.ErrTooManyRequests):
			return "circuit_open"
		case fe.StatusCode != 0 || fe.Code != "":
			return "http_error"
		case errors.Is(fe.Err, errRateLimitWait):
			return "rate_limited"
		}
	}
	return "transport_error"
}
