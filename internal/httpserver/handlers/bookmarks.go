package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
	"github.com/MrSnakeDoc/doodl/internal/logger"
	"github.com/MrSnakeDoc/doodl/internal/scheduler"
	"github.com/MrSnakeDoc/doodl/internal/store/sqlite"
)

type createBookmarkRequest struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Favicon     string   `json:"favicon"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
}

type patchBookmarkRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type tagRequest struct {
	Tag string `json:"tag"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type bulkRequest struct {
	IDs []string `json:"ids"`
	Tag string   `json:"tag,omitempty"`
}

type bulkResponse struct {
	Count int `json:"count"`
}

// ListBookmarks lists the caller's bookmarks. q runs a full-text search;
// otherwise tag/tags, date and timezone filter the listing.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := scopeOf(r)

		if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
			items, err := d.Store.SearchBookmarks(r.Context(), scope, q)
			if err != nil {
				writeError(w, d.Logger, r, err)
				return
			}
			writeJSON(w, http.StatusOK, toBookmarkViews(items))
			return
		}

		filter, err := bookmarkFilter(r, d.DefaultTimezone)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		items, err := d.Store.FilterBookmarks(r.Context(), scope, filter)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookmarkViews(items))
	}
}

// CreateBookmark saves a bookmark. Without a title the row is a stub and
// enrichment is scheduled.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createBookmarkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}

		in := domain.NewBookmark{
			URL:         domain.EnsureScheme(req.URL),
			Title:       req.Title,
			Description: req.Description,
			Favicon:     req.Favicon,
			Notes:       req.Notes,
			Tags:        req.Tags,
		}
		b, err := addAndEnrich(r, d, scopeOf(r), in)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toBookmarkView(b))
	}
}

// addAndEnrich creates the bookmark and schedules at most one enrichment for it.
func addAndEnrich(r *http.Request, d deps.Deps, scope domain.Scope, in domain.NewBookmark) (*domain.Bookmark, error) {
	b, err := d.Store.AddBookmark(r.Context(), scope, in)
	if err != nil {
		return nil, err
	}
	if in.NeedsEnrichment() && d.Enricher != nil {
		if !d.Enricher.Schedule(scheduler.EnrichJob{
			Scope:      scope,
			BookmarkID: b.ID,
			URL:        b.URL,
			Rev:        b.MetadataRev,
		}) {
			d.Logger.Warn("bookmark saved without enrichment",
				logger.String("bookmark_id", b.ID))
		}
	}
	return b, nil
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Store.GetBookmark(r.Context(), scopeOf(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookmarkView(b))
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req patchBookmarkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		patch := sqlite.BookmarkPatch{Title: req.Title, Description: req.Description}
		if err := d.Store.UpdateBookmark(r.Context(), scopeOf(r), chi.URLParam(r, "id"), patch); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.RemoveBookmark(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AddBookmarkTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		if err := d.Store.AddTag(r.Context(), scopeOf(r), chi.URLParam(r, "id"), req.Tag); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RemoveBookmarkTag takes the tag from the path. chi matches on the raw path
// when one is set, so an escaped tag such as "ci%2Fcd" is decoded here.
func RemoveBookmarkTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, err := url.PathUnescape(chi.URLParam(r, "tag"))
		if err != nil {
			writeError(w, d.Logger, r, domain.Validation("Invalid tag"))
			return
		}
		if err := d.Store.RemoveTag(r.Context(), scopeOf(r), chi.URLParam(r, "id"), tag); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpdateBookmarkNotes(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req notesRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		if err := d.Store.UpdateNotes(r.Context(), scopeOf(r), chi.URLParam(r, "id"), req.Notes); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// TrackRead counts an outbound navigation to the bookmark.
func TrackRead(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Store.TrackRead(r.Context(), scopeOf(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RefreshBookmark drops the cached page metadata and schedules a new
// enrichment against the current revision. A user edit before it lands wins.
func RefreshBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope := scopeOf(r)
		if err := scope.Require(); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		b, err := d.Store.GetBookmark(r.Context(), scope, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}

		if d.MetadataCache != nil {
			if err := d.MetadataCache.InvalidateMetadata(r.Context(), b.URL); err != nil {
				d.Logger.Warn("metadata cache invalidation failed",
					logger.String("url", b.URL),
					logger.Error(err))
			}
		}
		if d.Enricher == nil || !d.Enricher.Schedule(scheduler.EnrichJob{
			Scope:      scope,
			BookmarkID: b.ID,
			URL:        b.URL,
			Rev:        b.MetadataRev,
		}) {
			writeMessage(w, http.StatusServiceUnavailable, "Metadata refresh is unavailable, try again later")
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// BulkTagBookmarks tags every listed bookmark; count is how many changed.
func BulkTagBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		n, err := d.Store.BulkAddTag(r.Context(), scopeOf(r), req.IDs, req.Tag)
		if err != nil && n == 0 {
			writeError(w, d.Logger, r, err)
			return
		}
		if err != nil {
			d.Logger.Warn("bulk tag partially failed", logger.Error(err))
		}
		writeJSON(w, http.StatusOK, bulkResponse{Count: n})
	}
}

// BulkDeleteBookmarks deletes every listed bookmark; count is how many were deleted.
func BulkDeleteBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		n, err := d.Store.BulkRemove(r.Context(), scopeOf(r), req.IDs)
		if err != nil && n == 0 {
			writeError(w, d.Logger, r, err)
			return
		}
		if err != nil {
			d.Logger.Warn("bulk delete partially failed", logger.Error(err))
		}
		writeJSON(w, http.StatusOK, bulkResponse{Count: n})
	}
}

// ListTags returns the caller's tags; with q, ranked suggestions for autocomplete.
func ListTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := d.Store.ListTags(r.Context(), scopeOf(r))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		if q := r.URL.Query().Get("q"); strings.TrimSpace(q) != "" {
			tags = domain.SuggestTags(q, tags, d.TagSuggestLimit)
		}
		writeJSON(w, http.StatusOK, nonNil(tags))
	}
}
