package domain

import (
	"reflect"
	"testing"
)

func TestScoreTag(t *testing.T) {
	tests := []struct {
		name  string
		query string
		tag   string
		want  float64
	}{
		{name: "exact", query: "go", tag: "go", want: ScoreExactMatch},
		{name: "exact after normalize", query: " GO ", tag: "go", want: ScoreExactMatch},
		{name: "prefix", query: "go", tag: "golang", want: ScorePrefixMatch},
		{name: "no match", query: "rust", tag: "golang", want: 0},
		{name: "empty query", query: "", tag: "go", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreTag(tt.query, tt.tag); got != tt.want {
				t.Errorf("ScoreTag(%q, %q) = %v, want %v", tt.query, tt.tag, got, tt.want)
			}
		})
	}
}

func TestScoreTagSubstringPosition(t *testing.T) {
	early := ScoreTag("ng", "angular")
	late := ScoreTag("ng", "golang")
	if early <= ScoreSubstringMatch || late <= ScoreSubstringMatch {
		t.Fatalf("substring scores must exceed base: %v, %v", early, late)
	}
	if early <= late {
		t.Errorf("earlier hit should rank higher: angular=%v golang=%v", early, late)
	}
}

func TestSuggestTags(t *testing.T) {
	tags := []string{"django", "go", "golang", "cargo", "rust"}

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{name: "ranked", query: "go", limit: 0, want: []string{"go", "golang", "cargo", "django"}},
		{name: "limited", query: "go", limit: 2, want: []string{"go", "golang"}},
		{name: "empty query returns all", query: "", limit: 3, want: []string{"django", "go", "golang"}},
		{name: "nothing matches", query: "zig", limit: 0, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestTags(tt.query, tags, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SuggestTags(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
