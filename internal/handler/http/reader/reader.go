// Package reader serves the in-app article reader.
package reader

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"citypulse/internal/handler/http/respond"
	rd "citypulse/internal/infra/reader"
	"citypulse/internal/observability/logging"
	"citypulse/internal/resilience/circuitbreaker"
)

// ContentReader extracts the readable content of an article page.
type ContentReader interface {
	Read(ctx context.Context, rawURL string) (*rd.Content, error)
}

// Register mounts GET /reader on mux, wrapped in limit.
func Register(mux *http.ServeMux, reader ContentReader, limit func(http.Handler) http.Handler) {
	var h http.Handler = Handler{Reader: reader}
	if limit != nil {
		h = limit(h)
	}
	mux.Handle("GET /reader", h)
}

// Handler answers GET /reader?url=.
type Handler struct{ Reader ContentReader }

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := strings.TrimSpace(r.URL.Query().Get("url"))
	if target == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("url query parameter is required"))
		return
	}

	content, err := h.Reader.Read(r.Context(), target)
	if err != nil {
		logging.FromContext(r.Context()).Warn("reader request failed",
			slog.String("url", target), slog.String("error", respond.SanitizeError(err)))
		respond.Fail(w, http.StatusBadGateway, classify(err))
		return
	}
	respond.JSON(w, http.StatusOK, content)
}

func classify(err error) error {
	switch {
	case errors.Is(err, rd.ErrInvalidURL):
		return respond.NewAppError(http.StatusBadRequest, "invalid article URL", err)
	case errors.Is(err, rd.ErrPrivateIP):
		return respond.NewAppError(http.StatusBadRequest, "article URL not allowed", err)
	case errors.Is(err, rd.ErrTimeout), errors.Is(err, circuitbreaker.ErrOpenState),
		errors.Is(err, circuitbreaker.ErrTooManyRequests):
		appErr := respond.NewAppError(http.StatusBadGateway, "article temporarily unavailable", err)
		appErr.Retryable = true
		return appErr
	case errors.Is(err, rd.ErrUpstreamStatus):
		return respond.NewAppError(http.StatusBadGateway, "publisher returned an error", err)
	case errors.Is(err, rd.ErrReadabilityFailed):
		return respond.NewAppError(http.StatusBadGateway, "article content could not be extracted", err)
	default:
		return respond.NewAppError(http.StatusBadGateway, "article could not be loaded", err)
	}
}
