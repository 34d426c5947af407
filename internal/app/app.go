// Package app assembles the City Pulse services and HTTP routes from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"citypulse/internal/config"
	hhttp "citypulse/internal/handler/http"
	halert "citypulse/internal/handler/http/alert"
	hbookmark "citypulse/internal/handler/http/bookmark"
	hcity "citypulse/internal/handler/http/city"
	hnews "citypulse/internal/handler/http/news"
	hreader "citypulse/internal/handler/http/reader"
	"citypulse/internal/handler/http/requestid"
	"citypulse/internal/infra/adapter/persistence"
	"citypulse/internal/infra/newsapi"
	"citypulse/internal/infra/reader"
	"citypulse/internal/observability/tracing"
	"citypulse/internal/usecase/alert"
	"citypulse/internal/usecase/bookmark"
	"citypulse/internal/usecase/preference"
)

const maxRequestBody = 1 << 20

// App holds the wired components. News is nil when no API key is configured.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     *persistence.Handle
	Bookmarks *bookmark.Service
	Prefs     *preference.Service
	Catalog   *alert.Catalog
	News      *newsapi.Client
	Reader    *reader.Reader
}

// New opens the store and builds every service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	catalog, err := loadCatalog(cfg.AlertCatalogPath)
	if err != nil {
		return nil, err
	}

	rd, err := reader.New(cfg.Reader, logger)
	if err != nil {
		return nil, fmt.Errorf("reader: %w", err)
	}

	var news *newsapi.Client
	if cfg.NewsAPI.APIKey == "" {
		logger.Warn("news feed disabled: NEWSAPI_KEY is not set")
	} else {
		if err := cfg.ValidateNews(); err != nil {
			return nil, err
		}
		if news, err = newsapi.NewClient(cfg.NewsAPI, logger); err != nil {
			return nil, err
		}
	}

	store, err := persistence.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	logger.Info("store opened", slog.String("backend", store.Backend))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     store,
		Bookmarks: bookmark.NewService(store.Store, cfg.Store.BookmarksKey(), logger),
		Prefs:     preference.NewService(store.Store, cfg.Store.SelectedCityKey(), cfg.DefaultCity, logger),
		Catalog:   catalog,
		News:      news,
		Reader:    rd,
	}, nil
}

func loadCatalog(path string) (*alert.Catalog, error) {
	if path == "" {
		return alert.Default()
	}
	c, err := alert.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("alert catalog: %w", err)
	}
	return c, nil
}

// Fetcher returns the news client as a handler dependency, or nil when disabled.
func (a *App) Fetcher() hnews.Fetcher {
	if a.News == nil {
		return nil
	}
	return a.News
}

// Breakers lists every circuit breaker for health reporting.
func (a *App) Breakers() []hhttp.Breaker {
	bs := []hhttp.Breaker{a.Store.Store, a.Reader.Breaker()}
	if a.News != nil {
		bs = append(bs, a.News.Breaker())
	}
	return bs
}

// Routes registers every endpoint on a new mux.
func (a *App) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	limiter := hhttp.NewRateLimiter(a.Config.RateLimit.Requests, a.Config.RateLimit.Window, a.Config.RateLimit.TrustProxy)

	hcity.Register(mux, a.Catalog, a.Prefs)
	hnews.Register(mux, a.Fetcher(), a.Prefs, limiter.Limit)
	hbookmark.Register(mux, a.Bookmarks)
	halert.Register(mux, a.Catalog)
	hreader.Register(mux, a.Reader, limiter.Limit)

	mux.Handle("GET /health", &hhttp.HealthHandler{
		Store:    a.Store.Store,
		Backend:  a.Store.Backend,
		Breakers: a.Breakers(),
		Version:  a.Config.Version,
		Logger:   a.Logger,
	})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Store: a.Store.Store})
	mux.Handle("GET /live", hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())
	return mux
}

// Handler returns the routes wrapped in the middleware chain.
// Order, outermost first: request ID, tracing, metrics, logging, panic recovery, body limit.
func (a *App) Handler() http.Handler {
	return hhttp.Chain(a.Routes(),
		requestid.Middleware,
		tracing.Middleware,
		hhttp.MetricsMiddleware,
		hhttp.Logging(a.Logger),
		hhttp.Recover(a.Logger),
		hhttp.LimitRequestBody(maxRequestBody),
	)
}

// Close releases the store.
func (a *App) Close(ctx context.Context) error {
	if a.Store == nil {
		return nil
	}
	if err := a.Store.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
