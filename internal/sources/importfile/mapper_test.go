package importfile

import (
	"reflect"
	"testing"
)

func TestMapperMapBookmarks(t *testing.T) {
	file := File{
		{
			"Developer": []map[string][]Entry{
				{"Github": {{Abbr: "GH", Href: "https://github.com/", Icon: "https://github.com/favicon.ico"}}},
				{"Go Docs": {{Href: "go.dev/doc", Icon: "go.svg", Description: "  Documentation "}}},
			},
		},
	}

	bookmarks, err := NewMapper().MapBookmarks(file)
	if err != nil {
		t.Fatalf("MapBookmarks() error = %v", err)
	}
	if len(bookmarks) != 2 {
		t.Fatalf("MapBookmarks() returned %d bookmarks, want 2", len(bookmarks))
	}

	gh := bookmarks[0]
	if gh.URL != "https://github.com/" || gh.Title != "Github" {
		t.Errorf("unexpected bookmark: %+v", gh)
	}
	if gh.Favicon != "https://github.com/favicon.ico" {
		t.Errorf("Favicon = %q", gh.Favicon)
	}
	if !reflect.DeepEqual(gh.Tags, []string{"developer"}) {
		t.Errorf("Tags = %v, want [developer]", gh.Tags)
	}
	if gh.NeedsEnrichment() {
		t.Error("imported bookmarks carry a title and must not be enriched")
	}

	docs := bookmarks[1]
	if docs.URL != "https://go.dev/doc" {
		t.Errorf("URL = %q, want scheme added", docs.URL)
	}
	if docs.Favicon != "" {
		t.Errorf("relative icon names are not favicons, got %q", docs.Favicon)
	}
	if docs.Description != "Documentation" {
		t.Errorf("Description = %q", docs.Description)
	}
}

func TestMapperMapBookmarksSkipsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		file    File
		want    int
		wantErr bool
	}{
		{name: "empty config", file: File{}, wantErr: true},
		{
			name: "missing href",
			file: File{{"Home": {{"Router": {{Abbr: "RT"}}}}}},
			wantErr: true,
		},
		{
			name: "empty entry list",
			file: File{{"Home": {{"Router": {}}}}},
			wantErr: true,
		},
		{
			name: "duplicate url across categories",
			file: File{
				{"A": {{"One": {{Href: "https://one.example"}}}}},
				{"B": {{"Again": {{Href: "https://one.example"}}}}},
			},
			want: 1,
		},
		{
			name: "abbr is the fallback title",
			file: File{{"A": {{" ": {{Abbr: "ON", Href: "https://one.example"}}}}}},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookmarks, err := NewMapper().MapBookmarks(tt.file)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MapBookmarks() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(bookmarks) != tt.want {
				t.Errorf("MapBookmarks() returned %d bookmarks, want %d", len(bookmarks), tt.want)
			}
		})
	}
}

func TestValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "https://example.com/icon.png", want: true},
		{in: "http://example.com", want: true},
		{in: "icon.svg", want: false},
		{in: "mdi-github", want: false},
		{in: "ftp://example.com", want: false},
		{in: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := validURL(tt.in); got != tt.want {
				t.Errorf("validURL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
