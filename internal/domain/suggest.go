package domain

import (
	"sort"
	"strings"
)

const (
	// Scoring weights for tag suggestions
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0

	// Position bonus (earlier substring hits rank higher)
	ScorePositionBonus = 10.0
)

// TagCandidate is a tag with its match score.
type TagCandidate struct {
	Tag   string
	Score float64
}

// ScoreTag scores tag against query. Zero means no match.
func ScoreTag(query, tag string) float64 {
	query = NormalizeTag(query)
	if query == "" || tag == "" {
		return 0.0
	}

	// Exact match
	if query == tag {
		return ScoreExactMatch
	}

	// Prefix match
	if strings.HasPrefix(tag, query) {
		return ScorePrefixMatch
	}

	// Substring match, earlier hits score higher
	if idx := strings.Index(tag, query); idx >= 0 {
		return ScoreSubstringMatch + ScorePositionBonus*(1.0-float64(idx)/float64(len(tag)))
	}

	return 0.0
}

// SuggestTags ranks tags matching query for autocomplete.
// An empty query returns the tags unchanged (up to limit). limit <= 0 means no limit.
func SuggestTags(query string, tags []string, limit int) []string {
	if NormalizeTag(query) == "" {
		return truncateTags(append([]string(nil), tags...), limit)
	}

	candidates := make([]TagCandidate, 0, len(tags))
	for _, tag := range tags {
		if score := ScoreTag(query, tag); score > 0 {
			candidates = append(candidates, TagCandidate{Tag: tag, Score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Tag < candidates[j].Tag
	})

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Tag)
	}
	return truncateTags(out, limit)
}

func truncateTags(tags []string, limit int) []string {
	if limit > 0 && len(tags) > limit {
		return tags[:limit]
	}
	return tags
}
