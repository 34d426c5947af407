// Package alert serves the emergency alert catalog.
package alert

import (
	"net/http"
	"strings"

	"citypulse/internal/domain/entity"
	"citypulse/internal/handler/http/respond"
	alertUC "citypulse/internal/usecase/alert"
)

// Register mounts GET /alerts on mux.
func Register(mux *http.ServeMux, catalog *alertUC.Catalog) {
	mux.Handle("GET /alerts", ListHandler{Catalog: catalog})
}

// ListResponse is the body of GET /alerts. City is empty when every alert is listed.
type ListResponse struct {
	City   string         `json:"city,omitempty"`
	Alerts []entity.Alert `json:"alerts"`
}

// ListHandler lists the alerts for ?city= plus the ones that apply everywhere.
type ListHandler struct{ Catalog *alertUC.Catalog }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	respond.JSON(w, http.StatusOK, ListResponse{City: city, Alerts: h.Catalog.List(city)})
}
