package domain

import (
	"slices"
	"time"
)

// Navigation is a manually ordered shortcut tile.
type Navigation struct {
	ID          string
	UserID      string
	Title       string
	URL         string
	Description string
	Favicon     string
	// Position is nil until the tile has been placed; unplaced tiles sort last.
	Position  *int
	CreatedAt time.Time
}

// NewNavigation carries the caller-supplied fields of a tile.
type NewNavigation struct {
	URL         string
	Title       string
	Description string
	Favicon     string
}

func (n *Navigation) positionOrLast() int {
	if n.Position == nil {
		return int(^uint(0) >> 1)
	}
	return *n.Position
}

// SortNavigations orders tiles by position, then newest first.
// The input slice is not modified.
func SortNavigations(items []*Navigation) []*Navigation {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b *Navigation) int {
		pa, pb := a.positionOrLast(), b.positionOrLast()
		if pa != pb {
			if pa < pb {
				return -1
			}
			return 1
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}

// NextPosition returns the position a newly added tile takes (after the last one).
func NextPosition(items []*Navigation) int {
	maxPos := -1
	for i, n := range SortNavigations(items) {
		p := i
		if n.Position != nil {
			p = *n.Position
		}
		if p > maxPos {
			maxPos = p
		}
	}
	return maxPos + 1
}

// PlanReorder assigns contiguous positions: ids listed in orderedIDs first, in
// that order, then every other tile in its current relative order.
// Unknown ids and repeats are ignored.
func PlanReorder(all []*Navigation, orderedIDs []string) map[string]int {
	byID := make(map[string]*Navigation, len(all))
	for _, n := range all {
		byID[n.ID] = n
	}

	plan := make(map[string]int, len(all))
	position := 0
	for _, id := range orderedIDs {
		if _, ok := byID[id]; !ok {
			continue
		}
		if _, done := plan[id]; done {
			continue
		}
		plan[id] = position
		position++
	}

	for _, n := range SortNavigations(all) {
		if _, done := plan[n.ID]; done {
			continue
		}
		plan[n.ID] = position
		position++
	}
	return plan
}
