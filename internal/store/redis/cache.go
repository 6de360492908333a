package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

// DefaultMetadataTTL is the default TTL for cached extraction results (24 hours)
const DefaultMetadataTTL = 24 * time.Hour

// Store caches page metadata in Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis metadata store
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultMetadataTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// SaveMetadata stores an extraction result with the store TTL
func (s *Store) SaveMetadata(ctx context.Context, rawURL string, md domain.Metadata) error {
	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := s.client.Set(ctx, MetadataKey(rawURL), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache metadata: %w", err)
	}
	return nil
}

// GetMetadata retrieves a cached extraction result
func (s *Store) GetMetadata(ctx context.Context, rawURL string) (domain.Metadata, bool, error) {
	data, err := s.client.Get(ctx, MetadataKey(rawURL)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Metadata{}, false, nil // Cache miss
		}
		return domain.Metadata{}, false, fmt.Errorf("failed to get cached metadata: %w", err)
	}

	var md domain.Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return domain.Metadata{}, false, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return md, true, nil
}

// InvalidateMetadata removes a cached result
func (s *Store) InvalidateMetadata(ctx context.Context, rawURL string) error {
	if err := s.client.Del(ctx, MetadataKey(rawURL)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate metadata: %w", err)
	}
	return nil
}

// CountMetadata returns the number of cached results
func (s *Store) CountMetadata(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixMetadata+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count metadata: %w", err)
	}
	return count, nil
}
