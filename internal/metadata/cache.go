package metadata

import (
	"context"

	"github.com/MrSnakeDoc/doodl/internal/domain"
	"github.com/MrSnakeDoc/doodl/internal/logger"
)

// Cache stores extraction results by URL. Expiry is the cache's concern.
type Cache interface {
	GetMetadata(ctx context.Context, rawURL string) (domain.Metadata, bool, error)
	SaveMetadata(ctx context.Context, rawURL string, md domain.Metadata) error
	InvalidateMetadata(ctx context.Context, rawURL string) error
}

// CachedExtractor serves repeated extractions of the same URL from a cache.
// Only successful fetches are cached, so a site that was down is retried.
type CachedExtractor struct {
	next  Source
	cache Cache
	log   logger.Logger
}

// NewCachedExtractor wraps next with cache.
func NewCachedExtractor(next Source, cache Cache, log logger.Logger) *CachedExtractor {
	return &CachedExtractor{next: next, cache: cache, log: log}
}

// Extract implements Source.
func (c *CachedExtractor) Extract(ctx context.Context, rawURL string) domain.Metadata {
	md, ok, err := c.cache.GetMetadata(ctx, rawURL)
	if err != nil {
		c.log.Warn("metadata cache read failed", logger.String("url", rawURL), logger.Error(err))
	}
	if ok {
		return md
	}

	md = c.next.Extract(ctx, rawURL)
	if !md.Fetched {
		return md
	}
	if err := c.cache.SaveMetadata(ctx, rawURL, md); err != nil {
		c.log.Warn("metadata cache write failed", logger.String("url", rawURL), logger.Error(err))
	}
	return md
}
