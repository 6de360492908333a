package handlers

import (
	"time"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

// Timestamps are unix milliseconds.

type bookmarkView struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Favicon     string   `json:"favicon,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Tags        []string `json:"tags"`
	ReadCount   int64    `json:"readCount"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

func toBookmarkView(b *domain.Bookmark) bookmarkView {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return bookmarkView{
		ID:          b.ID,
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Description,
		Favicon:     b.Favicon,
		Notes:       b.Notes,
		Tags:        tags,
		ReadCount:   b.ReadCount,
		CreatedAt:   b.CreatedAt.UnixMilli(),
		UpdatedAt:   b.UpdatedAt.UnixMilli(),
	}
}

func toBookmarkViews(bs []*domain.Bookmark) []bookmarkView {
	out := make([]bookmarkView, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookmarkView(b))
	}
	return out
}

type memoView struct {
	ID        string   `json:"id"`
	Content   string   `json:"content"`
	HTML      string   `json:"html,omitempty"`
	Tags      []string `json:"tags"`
	HasNsfw   bool     `json:"hasNsfw"`
	IsPinned  bool     `json:"isPinned"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

func toMemoView(m *domain.Memo) memoView {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return memoView{
		ID:        m.ID,
		Content:   m.Content,
		Tags:      tags,
		HasNsfw:   m.HasNsfw,
		IsPinned:  m.IsPinned,
		CreatedAt: m.CreatedAt.UnixMilli(),
		UpdatedAt: m.UpdatedAt.UnixMilli(),
	}
}

func toMemoViews(ms []*domain.Memo) []memoView {
	out := make([]memoView, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMemoView(m))
	}
	return out
}

type navigationView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	Position    *int   `json:"position"`
	CreatedAt   int64  `json:"createdAt"`
}

func toNavigationViews(ns []*domain.Navigation) []navigationView {
	out := make([]navigationView, 0, len(ns))
	for _, n := range ns {
		out = append(out, toNavigationView(n))
	}
	return out
}

func toNavigationView(n *domain.Navigation) navigationView {
	return navigationView{
		ID:          n.ID,
		Title:       n.Title,
		URL:         n.URL,
		Description: n.Description,
		Favicon:     n.Favicon,
		Position:    n.Position,
		CreatedAt:   n.CreatedAt.UnixMilli(),
	}
}

type apiKeyView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Prefix     string `json:"prefix"`
	CreatedAt  int64  `json:"createdAt"`
	LastUsedAt *int64 `json:"lastUsedAt"`
}

func toAPIKeyView(k *domain.APIKey) apiKeyView {
	return apiKeyView{
		ID:         k.ID,
		Name:       k.Name,
		Prefix:     k.Prefix,
		CreatedAt:  k.CreatedAt.UnixMilli(),
		LastUsedAt: millisPtr(k.LastUsedAt),
	}
}

func millisPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image,omitempty"`
}
