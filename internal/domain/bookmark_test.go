package domain

import (
	"reflect"
	"testing"
)

func TestDeriveSearchText(t *testing.T) {
	notes := "remember this"
	tests := []struct {
		name        string
		url         string
		title       string
		description string
		notes       string
		tags        []string
		want        string
	}{
		{
			name:  "stub row",
			url:   "https://example.com",
			title: "https://example.com",
			want:  "https://example.com https://example.com",
		},
		{
			name:        "all fields in order",
			url:         "https://go.dev",
			title:       "The Go Programming Language",
			description: "Build simple, secure, scalable systems",
			notes:       notes,
			tags:        []string{"go", "lang"},
			want:        "https://go.dev The Go Programming Language Build simple, secure, scalable systems remember this go lang",
		},
		{
			name:  "empty fields skipped",
			url:   "https://a.example",
			notes: "   ",
			tags:  []string{"", "x"},
			want:  "https://a.example x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSearchText(tt.url, tt.title, tt.description, tt.notes, tt.tags)
			if got != tt.want {
				t.Errorf("DeriveSearchText() = %q, want %q", got, tt.want)
			}
			// pure: same input, same output
			if again := DeriveSearchText(tt.url, tt.title, tt.description, tt.notes, tt.tags); again != got {
				t.Errorf("DeriveSearchText() not deterministic: %q vs %q", again, got)
			}
		})
	}
}

func TestBookmarkRefresh(t *testing.T) {
	b := &Bookmark{URL: "https://example.com", Title: "Example", Tags: []string{"demo"}}
	b.Notes = NormalizeNotes(" a note ")
	b.Refresh()

	want := DeriveSearchText(b.URL, b.Title, b.Description, "a note", b.Tags)
	if b.SearchText != want {
		t.Errorf("Refresh() SearchText = %q, want %q", b.SearchText, want)
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "only blanks", in: []string{" ", ""}, want: nil},
		{name: "lowercase and dedupe", in: []string{" Go ", "go", "Rust"}, want: []string{"go", "rust"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeTags(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeNotes(t *testing.T) {
	if got := NormalizeNotes("   \n "); got != nil {
		t.Errorf("NormalizeNotes(blank) = %q, want nil", *got)
	}
	got := NormalizeNotes("  hello ")
	if got == nil || *got != "hello" {
		t.Errorf("NormalizeNotes() = %v, want \"hello\"", got)
	}
}

func TestEnsureScheme(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "example.com", want: "https://example.com"},
		{in: "  https://example.com/a ", want: "https://example.com/a"},
		{in: "HTTP://example.com", want: "HTTP://example.com"},
		{in: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := EnsureScheme(tt.in); got != tt.want {
				t.Errorf("EnsureScheme(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNeedsEnrichment(t *testing.T) {
	if !(NewBookmark{URL: "https://x.example"}).NeedsEnrichment() {
		t.Error("bookmark without title should need enrichment")
	}
	if (NewBookmark{URL: "https://x.example", Title: "X"}).NeedsEnrichment() {
		t.Error("bookmark with explicit title should skip enrichment")
	}
}
