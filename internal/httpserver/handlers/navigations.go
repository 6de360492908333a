package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
)

type navigationRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Favicon     string `json:"favicon"`
}

type reorderRequest struct {
	IDs []string `json:"ids"`
}

func ListNavigations(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := d.Store.ListNavigations(r.Context(), scopeOf(r))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toNavigationViews(items))
	}
}

// CreateNavigation appends a tile. A blank or duplicate url answers 204.
func CreateNavigation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req navigationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		n, err := d.Store.AddNavigation(r.Context(), scopeOf(r), domain.NewNavigation{
			URL:         req.URL,
			Title:       req.Title,
			Description: req.Description,
			Favicon:     req.Favicon,
		})
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		if n == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusCreated, toNavigationView(n))
	}
}

// ReorderNavigations moves the listed tiles to the front in the given order.
func ReorderNavigations(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		if err := d.Store.ReorderNavigations(r.Context(), scopeOf(r), req.IDs); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteNavigation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.RemoveNavigation(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
