package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
)

// Stats aggregates the caller's bookmarks and memos. Calendar buckets use
// the timezone parameter or the configured default.
func Stats(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := scopeOf(r)
		if scope.Anonymous() {
			writeJSON(w, http.StatusOK, domain.EmptyStats())
			return
		}

		loc, err := domain.ParseTimezone(r.URL.Query().Get("timezone"), d.DefaultTimezone)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}

		var (
			bookmarks []*domain.Bookmark
			memos     []*domain.Memo
		)
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error {
			var err error
			bookmarks, err = d.Store.ListBookmarks(ctx, scope)
			return err
		})
		g.Go(func() error {
			var err error
			memos, err = d.Store.ListMemos(ctx, scope)
			return err
		})
		if err := g.Wait(); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}

		writeJSON(w, http.StatusOK, domain.ComputeStats(bookmarks, memos, d.Now(), loc))
	}
}
