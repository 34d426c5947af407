// Package city serves the city catalog and the persisted city selection.
package city

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"citypulse/internal/domain/entity"
	"citypulse/internal/handler/http/respond"
	"citypulse/internal/observability/logging"
	"citypulse/internal/usecase/alert"
	"citypulse/internal/usecase/preference"
)

// Register mounts the city routes on mux.
func Register(mux *http.ServeMux, catalog *alert.Catalog, prefs *preference.Service) {
	mux.Handle("GET /cities", CitiesHandler{Catalog: catalog, Prefs: prefs})
	mux.Handle("GET /city", GetHandler{Prefs: prefs})
	mux.Handle("PUT /city", PutHandler{Prefs: prefs})
}

// CitiesHandler lists the selectable cities and marks the current selection.
type CitiesHandler struct {
	Catalog *alert.Catalog
	Prefs   *preference.Service
}

func (h CitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"cities":   h.Catalog.Cities(),
		"selected": h.Prefs.SelectedCity(r.Context()),
	})
}

// GetHandler returns the selected city, falling back to the default.
type GetHandler struct{ Prefs *preference.Service }

func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"city": h.Prefs.SelectedCity(r.Context())})
}

// PutHandler persists a new selection. The write is best effort: a store
// failure is logged by the service and the request still succeeds.
type PutHandler struct{ Prefs *preference.Service }

func (h PutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		City string `json:"city"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.SafeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
			return
		}
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}

	city := strings.TrimSpace(req.City)
	if err := entity.ValidateCity(city); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	h.Prefs.SaveSelectedCity(r.Context(), city)
	logging.FromContext(r.Context()).Info("city selected", slog.String("city", city))
	w.WriteHeader(http.StatusNoContent)
}
