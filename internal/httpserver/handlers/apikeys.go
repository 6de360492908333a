package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
)

type apiKeyRequest struct {
	Name string `json:"name"`
}

type apiKeyCreatedResponse struct {
	Key   apiKeyView `json:"key"`
	Token string     `json:"token"`
}

func ListAPIKeys(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := d.Store.ListAPIKeys(r.Context(), scopeOf(r))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		out := make([]apiKeyView, 0, len(keys))
		for _, k := range keys {
			out = append(out, toAPIKeyView(k))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CreateAPIKey issues a token. The plaintext is only ever in this response.
func CreateAPIKey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apiKeyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		key, token, err := d.Store.CreateAPIKey(r.Context(), scopeOf(r), req.Name)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, apiKeyCreatedResponse{Key: toAPIKeyView(key), Token: token})
	}
}

func RevokeAPIKey(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.RevokeAPIKey(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
