package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
)

// Me returns the signed-in user, or null.
func Me(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := scopeOf(r)
		if scope.Anonymous() {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		u, err := d.Store.GetUser(r.Context(), scope)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userView{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image})
	}
}
