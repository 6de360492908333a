package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/doodl/internal/auth"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/mw"
)

func init() { Register(registerV1) }

// registerV1 mounts the app routes. Identity comes from forward-auth
// headers, so only the trusted proxy may reach them.
func registerV1(r chi.Router, d deps.Deps) {
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(auth.Session(d.Identity, d.Store, d.Logger))

		r.Get("/me", handlers.Me(d))
		r.Get("/stats", handlers.Stats(d))
		r.Get("/tags", handlers.ListTags(d))
		r.Post("/preview", handlers.Preview(d))

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", handlers.ListBookmarks(d))
			r.Post("/", handlers.CreateBookmark(d))
			r.Post("/bulk/tags", handlers.BulkTagBookmarks(d))
			r.Post("/bulk/delete", handlers.BulkDeleteBookmarks(d))
			r.Get("/{id}", handlers.GetBookmark(d))
			r.Patch("/{id}", handlers.UpdateBookmark(d))
			r.Delete("/{id}", handlers.DeleteBookmark(d))
			r.Post("/{id}/tags", handlers.AddBookmarkTag(d))
			r.Delete("/{id}/tags/{tag}", handlers.RemoveBookmarkTag(d))
			r.Put("/{id}/notes", handlers.UpdateBookmarkNotes(d))
			r.Post("/{id}/read", handlers.TrackRead(d))
			r.Post("/{id}/refresh", handlers.RefreshBookmark(d))
		})

		r.Route("/memos", func(r chi.Router) {
			r.Get("/", handlers.ListMemos(d))
			r.Post("/", handlers.CreateMemo(d))
			r.Get("/tags", handlers.ListMemoTags(d))
			r.Post("/bulk/delete", handlers.BulkDeleteMemos(d))
			r.Get("/{id}", handlers.GetMemo(d))
			r.Put("/{id}", handlers.UpdateMemo(d))
			r.Post("/{id}/pin", handlers.ToggleMemoPin(d))
			r.Delete("/{id}", handlers.DeleteMemo(d))
		})

		r.Route("/navigations", func(r chi.Router) {
			r.Get("/", handlers.ListNavigations(d))
			r.Post("/", handlers.CreateNavigation(d))
			r.Put("/order", handlers.ReorderNavigations(d))
			r.Delete("/{id}", handlers.DeleteNavigation(d))
		})

		r.Route("/keys", func(r chi.Router) {
			r.Get("/", handlers.ListAPIKeys(d))
			r.Post("/", handlers.CreateAPIKey(d))
			r.Delete("/{id}", handlers.RevokeAPIKey(d))
		})
	})
}
