package domain

import (
	"regexp"
	"sort"
	"strings"
	"time"
)

// Memo is a short markdown note. Tags, SearchText and HasNsfw are derived
// from Content and rewritten together with it.
type Memo struct {
	ID         string
	UserID     string
	Content    string
	Tags       []string
	SearchText string
	HasNsfw    bool
	IsPinned   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// The '#' must open the text or follow a non-identifier character.
var memoTagPattern = regexp.MustCompile(`(?:^|[^A-Za-z0-9_-])#([A-Za-z0-9_-]+)`)

const nsfwMarker = "#nsfw"

// NormalizeMemoContent trims content and rejects empty memos.
func NormalizeMemoContent(raw string) (string, error) {
	content := strings.TrimSpace(raw)
	if content == "" {
		return "", Validation("Memo content is required")
	}
	return content, nil
}

// ExtractTags returns the lowercase, deduplicated, ascending #tags of content.
func ExtractTags(content string) []string {
	seen := make(map[string]bool)
	tags := make([]string, 0)
	for _, m := range memoTagPattern.FindAllStringSubmatch(content, -1) {
		tag := strings.ToLower(m[1])
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// HasNsfwLine reports whether any line, trimmed and lowercased, is exactly #nsfw.
func HasNsfwLine(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.ToLower(strings.TrimSpace(line)) == nsfwMarker {
			return true
		}
	}
	return false
}

// MemoSearchText joins content and tags and lowercases the result.
func MemoSearchText(content string, tags []string) string {
	parts := append([]string{content}, tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// SetContent normalizes content and recomputes every derived field.
func (m *Memo) SetContent(raw string, now time.Time) error {
	content, err := NormalizeMemoContent(raw)
	if err != nil {
		return err
	}
	m.Content = content
	m.Tags = ExtractTags(content)
	m.SearchText = MemoSearchText(content, m.Tags)
	m.HasNsfw = HasNsfwLine(content)
	m.UpdatedAt = now
	return nil
}
