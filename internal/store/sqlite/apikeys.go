package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

const apiKeyColumns = "id, user_id, key_hash, prefix, name, created_at, last_used_at"

func scanAPIKey(row interface{ Scan(...any) error }) (*domain.APIKey, error) {
	var (
		k        domain.APIKey
		created  int64
		lastUsed sql.NullInt64
	)
	if err := row.Scan(&k.ID, &k.UserID, &k.KeyHash, &k.Prefix, &k.Name, &created, &lastUsed); err != nil {
		return nil, err
	}
	k.CreatedAt = fromMillis(created)
	if lastUsed.Valid {
		t := fromMillis(lastUsed.Int64)
		k.LastUsedAt = &t
	}
	return &k, nil
}

// CreateAPIKey generates a key for the caller. The plaintext is only
// available in the returned value; the store keeps its hash.
func (s *Store) CreateAPIKey(ctx context.Context, scope domain.Scope, name string) (*domain.APIKey, string, error) {
	if err := scope.Require(); err != nil {
		return nil, "", err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", domain.Validation("Name is required")
	}

	gen, err := domain.GenerateAPIKey()
	if err != nil {
		return nil, "", err
	}
	k := &domain.APIKey{
		ID:        s.newID(),
		UserID:    scope.UserID,
		KeyHash:   gen.Hash,
		Prefix:    gen.Prefix,
		Name:      name,
		CreatedAt: s.now(),
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM api_keys WHERE user_id = ?", scope.UserID,
		).Scan(&count); err != nil {
			return fmt.Errorf("failed to count api keys: %w", err)
		}
		if count >= domain.MaxAPIKeysPerUser {
			return domain.Conflict(fmt.Sprintf("Maximum of %d API keys allowed", domain.MaxAPIKeysPerUser))
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO api_keys ("+apiKeyColumns+") VALUES (?, ?, ?, ?, ?, ?, NULL)",
			k.ID, k.UserID, k.KeyHash, k.Prefix, k.Name, toMillis(k.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert api key: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return k, gen.Plaintext, nil
}

// ListAPIKeys returns the caller's keys, oldest first.
func (s *Store) ListAPIKeys(ctx context.Context, scope domain.Scope) ([]*domain.APIKey, error) {
	if scope.Anonymous() {
		return []*domain.APIKey{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+apiKeyColumns+" FROM api_keys WHERE user_id = ? ORDER BY created_at", scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]*domain.APIKey, 0)
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate api keys: %w", err)
	}
	return out, nil
}

// RevokeAPIKey deletes one of the caller's keys.
func (s *Store) RevokeAPIKey(ctx context.Context, scope domain.Scope, id string) error {
	if err := scope.Require(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM api_keys WHERE id = ? AND user_id = ?", id, scope.UserID); err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	return nil
}

// LookupAPIKey finds a key by the hash of its plaintext.
// It returns domain.ErrNotFound for unknown hashes.
func (s *Store) LookupAPIKey(ctx context.Context, hash string) (*domain.APIKey, error) {
	k, err := scanAPIKey(s.db.QueryRowContext(ctx,
		"SELECT "+apiKeyColumns+" FROM api_keys WHERE key_hash = ?", hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lookup api key: %w", err)
	}
	return k, nil
}

// TouchAPIKey records a successful use of a key.
func (s *Store) TouchAPIKey(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		"UPDATE api_keys SET last_used_at = ? WHERE id = ?", toMillis(s.now()), id,
	); err != nil {
		return fmt.Errorf("failed to touch api key: %w", err)
	}
	return nil
}
