// Package news serves the city news feed.
package news

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"citypulse/internal/domain/entity"
	"citypulse/internal/handler/http/respond"
	"citypulse/internal/infra/newsapi"
	"citypulse/internal/observability/logging"
	"citypulse/internal/usecase/preference"
)

// Fetcher retrieves the latest articles for a city.
type Fetcher interface {
	FetchCityNews(ctx context.Context, city string) ([]entity.Article, error)
}

// Register mounts GET /news on mux, wrapped in limit.
func Register(mux *http.ServeMux, fetcher Fetcher, prefs *preference.Service, limit func(http.Handler) http.Handler) {
	var h http.Handler = Handler{Fetcher: fetcher, Prefs: prefs}
	if limit != nil {
		h = limit(h)
	}
	mux.Handle("GET /news", h)
}

// Response is the body of a successful GET /news.
type Response struct {
	City     string           `json:"city"`
	Articles []entity.Article `json:"articles"`
}

// Handler answers GET /news?city=. Without a city it uses the selected one.
type Handler struct {
	Fetcher Fetcher
	Prefs   *preference.Service
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Fetcher == nil {
		respond.Fail(w, http.StatusServiceUnavailable,
			respond.NewAppError(http.StatusServiceUnavailable, "news provider not configured", nil))
		return
	}

	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if city == "" && h.Prefs != nil {
		city = h.Prefs.SelectedCity(ctx)
	}

	articles, err := h.Fetcher.FetchCityNews(ctx, city)
	if err != nil {
		logger.Warn("news request failed", slog.String("city", city), slog.String("error", respond.SanitizeError(err)))
		respond.Fail(w, http.StatusInternalServerError, classify(err))
		return
	}
	if articles == nil {
		articles = []entity.Article{}
	}

	respond.JSON(w, http.StatusOK, Response{City: city, Articles: articles})
}

// classify maps a fetch error onto the response the client sees.
func classify(err error) error {
	switch {
	case errors.Is(err, entity.ErrValidationFailed):
		return respond.NewAppError(http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, newsapi.ErrMalformedResponse):
		return respond.NewAppError(http.StatusBadGateway, "malformed news response", err)
	case errors.Is(err, newsapi.ErrFetchFailed):
		appErr := respond.NewAppError(http.StatusBadGateway, "news provider unavailable", err)
		appErr.Retryable = true
		return appErr
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		appErr := respond.NewAppError(http.StatusGatewayTimeout, "news request timed out", err)
		appErr.Retryable = true
		return appErr
	default:
		return err
	}
}
