package domain

import (
	"net/url"
	"slices"
	"strings"
	"time"
)

const (
	statsTopDomains = 5
	statsTopTags    = 8
	statsMostRead   = 5
	statsWeeks      = 12
	statsWeek       = 7 * 24 * time.Hour
)

// DomainCount is one entry of the domain ranking.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// TagCount is one entry of a tag ranking.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ReadEntry is a projection of a frequently read bookmark.
type ReadEntry struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Favicon   string `json:"favicon,omitempty"`
	ReadCount int64  `json:"readCount"`
}

// WeekBucket counts creations in one trailing 7x24h window.
type WeekBucket struct {
	WeekLabel string `json:"weekLabel"`
	Count     int    `json:"count"`
}

// Stats aggregates a user's bookmarks and memos. Lists are never nil.
type Stats struct {
	TotalBookmarks     int           `json:"totalBookmarks"`
	TotalReads         int64         `json:"totalReads"`
	UnreadCount        int           `json:"unreadCount"`
	WithNotesCount     int           `json:"withNotesCount"`
	UniqueTagsCount    int           `json:"uniqueTagsCount"`
	UniqueDomainsCount int           `json:"uniqueDomainsCount"`
	TopDomains         []DomainCount `json:"topDomains"`
	TopTags            []TagCount    `json:"topTags"`
	MostRead           []ReadEntry   `json:"mostRead"`
	WeeklyActivity     []WeekBucket  `json:"weeklyActivity"`

	TotalMemos            int          `json:"totalMemos"`
	PinnedMemosCount      int          `json:"pinnedMemosCount"`
	NsfwMemosCount        int          `json:"nsfwMemosCount"`
	MemoCreatedTodayCount int          `json:"memoCreatedTodayCount"`
	MemoUniqueTagsCount   int          `json:"memoUniqueTagsCount"`
	TopMemoTags           []TagCount   `json:"topMemoTags"`
	MemoWeeklyActivity    []WeekBucket `json:"memoWeeklyActivity"`
}

// EmptyStats is the all-zero result for anonymous callers.
func EmptyStats() Stats {
	return Stats{
		TopDomains:         []DomainCount{},
		TopTags:            []TagCount{},
		MostRead:           []ReadEntry{},
		WeeklyActivity:     []WeekBucket{},
		TopMemoTags:        []TagCount{},
		MemoWeeklyActivity: []WeekBucket{},
	}
}

// counter counts keys and remembers first-seen order for stable ranking.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter { return &counter{counts: make(map[string]int)} }

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) len() int { return len(c.order) }

// top returns the n most frequent keys; ties keep first-seen order.
func (c *counter) top(n int) []string {
	keys := slices.Clone(c.order)
	slices.SortStableFunc(keys, func(a, b string) int {
		return c.counts[b] - c.counts[a]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func (c *counter) topTags(n int) []TagCount {
	out := make([]TagCount, 0, n)
	for _, k := range c.top(n) {
		out = append(out, TagCount{Tag: k, Count: c.counts[k]})
	}
	return out
}

// BookmarkDomain returns the hostname of rawURL without a leading "www.".
// ok is false for URLs without a host.
func BookmarkDomain(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", false
	}
	return strings.TrimPrefix(host, "www."), true
}

// ComputeStats builds the stats of one user's snapshot.
// Calendar boundaries ("today", week labels) are evaluated in loc.
func ComputeStats(bookmarks []*Bookmark, memos []*Memo, now time.Time, loc *time.Location) Stats {
	if loc == nil {
		loc = time.UTC
	}
	s := EmptyStats()

	domains := newCounter()
	tags := newCounter()
	for _, b := range bookmarks {
		s.TotalBookmarks++
		s.TotalReads += b.ReadCount
		if b.ReadCount == 0 {
			s.UnreadCount++
		}
		if b.Notes != nil {
			s.WithNotesCount++
		}
		if d, ok := BookmarkDomain(b.URL); ok {
			domains.add(d)
		}
		for _, t := range b.Tags {
			tags.add(t)
		}
	}
	s.UniqueDomainsCount = domains.len()
	s.UniqueTagsCount = tags.len()
	for _, d := range domains.top(statsTopDomains) {
		s.TopDomains = append(s.TopDomains, DomainCount{Domain: d, Count: domains.counts[d]})
	}
	s.TopTags = tags.topTags(statsTopTags)
	s.MostRead = mostRead(bookmarks)
	s.WeeklyActivity = weeklyActivity(now, loc, func(yield func(time.Time)) {
		for _, b := range bookmarks {
			yield(b.CreatedAt)
		}
	})

	y, m, d := now.In(loc).Date()
	startOfToday := time.Date(y, m, d, 0, 0, 0, 0, loc)
	memoTags := newCounter()
	for _, memo := range memos {
		s.TotalMemos++
		if memo.IsPinned {
			s.PinnedMemosCount++
		}
		if memo.HasNsfw {
			s.NsfwMemosCount++
		}
		if !memo.CreatedAt.Before(startOfToday) {
			s.MemoCreatedTodayCount++
		}
		for _, t := range memo.Tags {
			memoTags.add(t)
		}
	}
	s.MemoUniqueTagsCount = memoTags.len()
	s.TopMemoTags = memoTags.topTags(statsTopTags)
	s.MemoWeeklyActivity = weeklyActivity(now, loc, func(yield func(time.Time)) {
		for _, memo := range memos {
			yield(memo.CreatedAt)
		}
	})

	return s
}

func mostRead(bookmarks []*Bookmark) []ReadEntry {
	read := make([]*Bookmark, 0)
	for _, b := range bookmarks {
		if b.ReadCount > 0 {
			read = append(read, b)
		}
	}
	slices.SortStableFunc(read, func(a, b *Bookmark) int {
		switch {
		case a.ReadCount > b.ReadCount:
			return -1
		case a.ReadCount < b.ReadCount:
			return 1
		}
		return 0
	})
	if len(read) > statsMostRead {
		read = read[:statsMostRead]
	}
	out := make([]ReadEntry, 0, len(read))
	for _, b := range read {
		out = append(out, ReadEntry{Title: b.Title, URL: b.URL, Favicon: b.Favicon, ReadCount: b.ReadCount})
	}
	return out
}

// weeklyActivity buckets creation times into 12 trailing weeks ending at now,
// oldest first. Each bucket is [start, end).
func weeklyActivity(now time.Time, loc *time.Location, each func(yield func(time.Time))) []WeekBucket {
	buckets := make([]WeekBucket, statsWeeks)
	starts := make([]time.Time, statsWeeks)
	for i := range statsWeeks {
		back := statsWeeks - i
		starts[i] = now.Add(-time.Duration(back) * statsWeek)
		buckets[i].WeekLabel = starts[i].In(loc).Format("01/02")
	}
	oldest := starts[0]
	each(func(t time.Time) {
		if t.Before(oldest) || !t.Before(now) {
			return
		}
		idx := int(t.Sub(oldest) / statsWeek)
		if idx >= 0 && idx < statsWeeks {
			buckets[idx].Count++
		}
	})
	return buckets
}
