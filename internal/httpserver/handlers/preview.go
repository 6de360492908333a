package handlers

import (
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
)

type previewRequest struct {
	URL string `json:"url"`
}

type previewResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Favicon     string `json:"favicon"`
}

// Preview extracts page metadata for the add-bookmark form. Fetch failures
// degrade to defaults and never surface as errors.
func Preview(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := scopeOf(r).Require(); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		var req previewRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		target := domain.EnsureScheme(req.URL)
		if u, err := url.Parse(target); err != nil || u.Host == "" {
			writeMessage(w, http.StatusBadRequest, "A valid http(s) url is required")
			return
		}

		md := d.Metadata.Extract(r.Context(), target)
		writeJSON(w, http.StatusOK, previewResponse{
			Title:       md.Title,
			Description: md.Description,
			Favicon:     md.Favicon,
		})
	}
}
