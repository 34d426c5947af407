// Package http holds the middleware, metrics and health endpoints shared by the
// API's route packages.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"citypulse/internal/handler/http/respond"
)

// Pinger is anything with a cheap reachability check, e.g. the key-value store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Breaker exposes a circuit breaker's name and state.
type Breaker interface {
	Name() string
	State() gobreaker.State
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy", "degraded" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthHandler reports store reachability and circuit breaker states.
// Only an unreachable store makes the service unhealthy (503); an open
// breaker is reported as degraded.
type HealthHandler struct {
	Store    Pinger
	Backend  string
	Breakers []Breaker
	Version  string
	Logger   *slog.Logger
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]CheckStatus{
		"store":            h.checkStore(ctx),
		"circuit_breakers": h.checkBreakers(),
	}

	status := "healthy"
	code := http.StatusOK
	switch {
	case checks["store"].Status == "unhealthy":
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	case checks["circuit_breakers"].Status == "degraded":
		status = "degraded"
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkStore(ctx context.Context) CheckStatus {
	if h.Store == nil {
		return CheckStatus{Status: "unhealthy", Message: "not configured"}
	}

	details := map[string]any{"backend": h.Backend}
	start := time.Now()
	if err := h.Store.Ping(ctx); err != nil {
		if h.Logger != nil {
			h.Logger.WarnContext(ctx, "health: store ping failed",
				slog.String("backend", h.Backend),
				slog.String("error", respond.SanitizeError(err)))
		}
		return CheckStatus{Status: "unhealthy", Message: "store unreachable", Details: details}
	}
	details["latency_ms"] = time.Since(start).Milliseconds()
	return CheckStatus{Status: "healthy", Details: details}
}

func (h *HealthHandler) checkBreakers() CheckStatus {
	details := make(map[string]any, len(h.Breakers))
	status := "healthy"
	for _, b := range h.Breakers {
		state := b.State()
		details[b.Name()] = state.String()
		if state != gobreaker.StateClosed {
			status = "degraded"
		}
	}
	return CheckStatus{Status: status, Details: details}
}

// ReadyHandler answers readiness checks: 200 once the store answers a ping.
type ReadyHandler struct {
	Store Pinger
}

func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Store == nil || h.Store.Ping(ctx) != nil {
		http.Error(w, "store not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ready"))
}

// LiveHandler answers liveness checks and always returns 200.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("alive"))
}
