package routes

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/doodl/internal/auth"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/mw"
)

func init() { Register(registerAPI) }

// registerAPI mounts the bearer-token API used by the browser extension.
// CORS runs first so preflights are answered without a token.
func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api", func(r chi.Router) {
		r.Use(mw.CORS())
		r.Use(mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.APIRateLimit,
			RefillPerIPPerMin: d.APIRateLimit,
			MaxEntries:        10000,
			SweepInterval:     time.Minute,
			IdleTTL:           15 * time.Minute,
			TrustProxy:        d.TrustProxy,
		}))
		r.Use(auth.APIKey(d.Store, d.Logger))

		r.Post("/bookmark", handlers.APICreateBookmark(d))
		r.Get("/bookmarks", handlers.APIListBookmarks(d))
		r.Get("/tags", handlers.APIListTags(d))
		r.Get("/urls", handlers.APIListURLs(d))
	})
}
