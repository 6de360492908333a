package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
	"github.com/MrSnakeDoc/doodl/internal/logger"
	"github.com/MrSnakeDoc/doodl/internal/markdown"
)

type memoRequest struct {
	Content string `json:"content"`
}

func ListMemos(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := scopeOf(r)
		q := strings.TrimSpace(r.URL.Query().Get("q"))

		var err error
		var views []memoView
		if q != "" {
			items, serr := d.Store.SearchMemos(r.Context(), scope, q)
			views, err = toMemoViews(items), serr
		} else {
			items, lerr := d.Store.ListMemos(r.Context(), scope)
			views, err = toMemoViews(items), lerr
		}
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func CreateMemo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req memoRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		m, err := d.Store.AddMemo(r.Context(), scopeOf(r), req.Content)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toMemoView(m))
	}
}

// GetMemo returns the memo with its content rendered to sanitised HTML.
// A rendering failure still returns the raw content.
func GetMemo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := d.Store.GetMemo(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		view := toMemoView(m)
		if html, err := markdown.Render(m.Content); err != nil {
			d.Logger.Warn("memo render failed",
				logger.String("memo_id", m.ID),
				logger.Error(err))
		} else {
			view.HTML = html
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func UpdateMemo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req memoRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		if err := d.Store.UpdateMemo(r.Context(), scopeOf(r), chi.URLParam(r, "id"), req.Content); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ToggleMemoPin(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.TogglePin(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteMemo(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.RemoveMemo(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func BulkDeleteMemos(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		n, err := d.Store.BulkRemoveMemos(r.Context(), scopeOf(r), req.IDs)
		if err != nil && n == 0 {
			writeError(w, d.Logger, r, err)
			return
		}
		if err != nil {
			d.Logger.Warn("bulk memo delete partially failed", logger.Error(err))
		}
		writeJSON(w, http.StatusOK, bulkResponse{Count: n})
	}
}

func ListMemoTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := d.Store.ListMemoTags(r.Context(), scopeOf(r))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(tags))
	}
}
