// Package bookmark serves the persisted bookmark set.
package bookmark

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"citypulse/internal/domain/entity"
	"citypulse/internal/handler/http/respond"
	bmUC "citypulse/internal/usecase/bookmark"
)

// Register mounts the bookmark routes on mux.
func Register(mux *http.ServeMux, svc *bmUC.Service) {
	mux.Handle("GET /bookmarks", ListHandler{svc})
	mux.Handle("POST /bookmarks", AddHandler{svc})
	mux.Handle("DELETE /bookmarks", RemoveHandler{svc})
	mux.Handle("GET /bookmarks/check", CheckHandler{svc})
}

// ListResponse is the body of GET /bookmarks. State is the read outcome
// (loaded, absent, corrupt or unavailable); Bookmarks is empty unless loaded.
type ListResponse struct {
	Bookmarks []entity.Article `json:"bookmarks"`
	State     string           `json:"state"`
}

type ListHandler struct{ Svc *bmUC.Service }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.Svc.Listing(r.Context())
	respond.JSON(w, http.StatusOK, ListResponse{Bookmarks: snap.Articles, State: snap.Outcome.String()})
}

// AddHandler stores a bookmark: 201 when added, 200 when it was already there
// or the store could not be updated.
type AddHandler struct{ Svc *bmUC.Service }

func (h AddHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var a entity.Article
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.SafeError(w, http.StatusRequestEntityTooLarge, errors.New("request body too large"))
			return
		}
		respond.SafeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if err := a.Validate(); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}

	if h.Svc.Add(r.Context(), a) {
		respond.JSON(w, http.StatusCreated, map[string]bool{"added": true})
		return
	}
	respond.JSON(w, http.StatusOK, map[string]bool{"added": false})
}

// RemoveHandler deletes every bookmark with the given url.
// Removing an unknown url succeeds; only a failed store update returns 500.
type RemoveHandler struct{ Svc *bmUC.Service }

func (h RemoveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url, ok := urlParam(w, r)
	if !ok {
		return
	}
	if h.Svc.Remove(r.Context(), url) {
		respond.JSON(w, http.StatusOK, map[string]bool{"removed": true})
		return
	}
	respond.JSON(w, http.StatusInternalServerError, map[string]bool{"removed": false})
}

type CheckHandler struct{ Svc *bmUC.Service }

func (h CheckHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	url, ok := urlParam(w, r)
	if !ok {
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"url":        url,
		"bookmarked": h.Svc.Contains(r.Context(), url),
	})
}

func urlParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		respond.SafeError(w, http.StatusBadRequest, errors.New("url query parameter is required"))
		return "", false
	}
	return url, true
}
