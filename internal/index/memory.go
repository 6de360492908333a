package index

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

type entry struct {
	md        domain.Metadata
	expiresAt time.Time
}

// MemoryCache keeps extraction results in process memory.
// It acts as the metadata cache when Redis is not configured.
type MemoryCache struct {
	mu        sync.RWMutex
	entries   map[string]entry // URL -> result
	ttl       time.Duration
	lastPurge time.Time
	now       func() time.Time
}

// NewMemoryCache creates a cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// GetMetadata returns the cached result for rawURL, ignoring expired entries.
func (c *MemoryCache) GetMetadata(_ context.Context, rawURL string) (domain.Metadata, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[rawURL]
	if !ok || !c.now().Before(e.expiresAt) {
		return domain.Metadata{}, false, nil
	}
	return e.md, true, nil
}

// SaveMetadata stores md for rawURL.
func (c *MemoryCache) SaveMetadata(_ context.Context, rawURL string, md domain.Metadata) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[rawURL] = entry{md: md, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// InvalidateMetadata drops the entry for rawURL
func (c *MemoryCache) InvalidateMetadata(_ context.Context, rawURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, rawURL)
	return nil
}

// Purge removes every entry expired at now and returns how many were dropped.
func (c *MemoryCache) Purge(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	purged := 0
	for url, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, url)
			purged++
		}
	}
	c.lastPurge = now
	return purged
}

// Count returns the number of entries, expired ones included.
func (c *MemoryCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// GetLastPurge returns the timestamp of the last purge
func (c *MemoryCache) GetLastPurge() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lastPurge
}
