package domain

import (
	"strings"
	"time"
)

// Bookmark is a saved URL owned by exactly one user.
type Bookmark struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is the row identifier (uuid).
	ID string

	// UserID is the owner. Every read and write is scoped to it.
	UserID string

	// URL is unique per owner.
	URL string

	// ─────────────────────────────
	// Metadata (stub until enriched)
	// ─────────────────────────────

	// Title defaults to the URL until enrichment lands.
	Title string

	// Description defaults to the empty string.
	Description string

	// Favicon is an absolute icon URL, empty when unknown.
	Favicon string

	// MetadataRev guards enrichment against concurrent user edits.
	// Creation stores 0; each metadata write increments it.
	MetadataRev int64

	// ─────────────────────────────
	// User annotations
	// ─────────────────────────────

	// Notes is nil when unset. Never stored as an empty string.
	Notes *string

	// Tags are lowercase and unique, in insertion order.
	Tags []string

	// ReadCount counts outbound navigations.
	ReadCount int64

	// SearchText is derived from url/title/description/notes/tags.
	// It is never written by callers directly.
	SearchText string

	// ─────────────────────────────
	// Timestamps
	// ─────────────────────────────

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBookmark carries the caller-supplied fields of a bookmark creation.
type NewBookmark struct {
	URL         string
	Title       string
	Description string
	Favicon     string
	Notes       string
	Tags        []string
}

// NeedsEnrichment reports whether creation should schedule a metadata fetch.
// Callers that supply a title (imports, the preview flow) skip it.
func (n NewBookmark) NeedsEnrichment() bool {
	return strings.TrimSpace(n.Title) == ""
}

// Metadata is the result of a page metadata extraction.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Favicon     string `json:"favicon,omitempty"`
	// Fetched is false when the page could not be retrieved.
	Fetched bool `json:"fetched"`
}

// NotesValue returns the notes or "".
func (b *Bookmark) NotesValue() string {
	if b.Notes == nil {
		return ""
	}
	return *b.Notes
}

// HasTag reports whether tag is already attached.
func (b *Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Refresh recomputes SearchText from the current fields.
// Every mutation of a contributing field must call it before persisting.
func (b *Bookmark) Refresh() {
	b.SearchText = DeriveSearchText(b.URL, b.Title, b.Description, b.NotesValue(), b.Tags)
}

// DeriveSearchText joins the non-empty searchable fields with single spaces,
// in the order url, title, description, notes, tags.
func DeriveSearchText(url, title, description, notes string, tags []string) string {
	parts := make([]string, 0, 4+len(tags))
	for _, p := range []string{url, title, description, notes} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	for _, t := range tags {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// NormalizeTag trims and lowercases a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags normalizes, drops empties and dedupes, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = NormalizeTag(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NormalizeNotes maps empty-after-trim notes to nil.
func NormalizeNotes(notes string) *string {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil
	}
	return &notes
}

// EnsureScheme trims raw and prefixes https:// unless it already is http(s).
func EnsureScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}
