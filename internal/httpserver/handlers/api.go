package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/httpserver/deps"
	"github.com/MrSnakeDoc/doodl/internal/store/sqlite"
)

type apiCreatedResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// APICreateBookmark is the token-authenticated create used by the browser
// extension. Field types are checked one by one so each gets its own message.
func APICreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isJSON(r) {
			writeMessage(w, http.StatusBadRequest, "Content-Type must be application/json")
			return
		}

		var raw any
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&raw); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		body, ok := raw.(map[string]any)
		if !ok {
			writeMessage(w, http.StatusBadRequest, "Request body must be a JSON object")
			return
		}

		in, err := parseAPIBookmark(body)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}

		b, err := addAndEnrich(r, d, scopeOf(r), in)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, apiCreatedResponse{ID: b.ID, URL: b.URL})
	}
}

func parseAPIBookmark(body map[string]any) (domain.NewBookmark, error) {
	var in domain.NewBookmark

	url, ok := body["url"].(string)
	if !ok || strings.TrimSpace(url) == "" {
		return in, domain.Validation(`"url" must be a non-empty string`)
	}
	in.URL = strings.TrimSpace(url)

	if v, present := body["tags"]; present && v != nil {
		list, ok := v.([]any)
		if !ok {
			return in, domain.Validation(`"tags" must be an array of strings`)
		}
		for _, item := range list {
			tag, ok := item.(string)
			if !ok {
				return in, domain.Validation(`"tags" must be an array of strings`)
			}
			in.Tags = append(in.Tags, tag)
		}
	}

	if v, present := body["notes"]; present && v != nil {
		notes, ok := v.(string)
		if !ok {
			return in, domain.Validation(`"notes" must be a string`)
		}
		in.Notes = notes
	}
	return in, nil
}

// APIListBookmarks lists bookmarks filtered by calendar day and tags.
func APIListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := bookmarkFilter(r, d.DefaultTimezone)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		items, err := d.Store.FilterBookmarks(r.Context(), scopeOf(r), filter)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookmarkViews(items))
	}
}

func APIListTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := d.Store.ListTags(r.Context(), scopeOf(r))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(tags))
	}
}

func APIListURLs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		urls, err := d.Store.ListURLs(r.Context(), scopeOf(r))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(urls))
	}
}

// bookmarkFilter reads date, timezone and tag/tags from the query string.
// tag and tags may repeat and may hold comma separated lists.
func bookmarkFilter(r *http.Request, fallback *time.Location) (sqlite.BookmarkFilter, error) {
	q := r.URL.Query()
	var f sqlite.BookmarkFilter

	if date := strings.TrimSpace(q.Get("date")); date != "" {
		loc, err := domain.ParseTimezone(q.Get("timezone"), fallback)
		if err != nil {
			return f, err
		}
		f.Start, f.End, err = domain.DayRange(date, loc)
		if err != nil {
			return f, err
		}
	} else if tz := q.Get("timezone"); tz != "" {
		if _, err := domain.ParseTimezone(tz, fallback); err != nil {
			return f, err
		}
	}

	for _, key := range []string{"tag", "tags"} {
		for _, v := range q[key] {
			for _, part := range strings.Split(v, ",") {
				if tag := domain.NormalizeTag(part); tag != "" {
					f.Tags = append(f.Tags, tag)
				}
			}
		}
	}
	return f, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
