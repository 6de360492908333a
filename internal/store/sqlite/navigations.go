package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

const navigationColumns = "id, user_id, title, url, description, favicon, position, created_at"

func scanNavigation(row interface{ Scan(...any) error }) (*domain.Navigation, error) {
	var (
		n        domain.Navigation
		position sql.NullInt64
		created  int64
	)
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.URL, &n.Description, &n.Favicon, &position, &created); err != nil {
		return nil, err
	}
	if position.Valid {
		p := int(position.Int64)
		n.Position = &p
	}
	n.CreatedAt = fromMillis(created)
	return &n, nil
}

func listNavigations(ctx context.Context, q interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}, userID string) ([]*domain.Navigation, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+navigationColumns+" FROM navigations WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list navigations: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]*domain.Navigation, 0)
	for rows.Next() {
		n, err := scanNavigation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan navigation: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate navigations: %w", err)
	}
	return out, nil
}

// ListNavigations returns the caller's tiles in display order.
func (s *Store) ListNavigations(ctx context.Context, scope domain.Scope) ([]*domain.Navigation, error) {
	if scope.Anonymous() {
		return []*domain.Navigation{}, nil
	}
	items, err := listNavigations(ctx, s.db, scope.UserID)
	if err != nil {
		return nil, err
	}
	return domain.SortNavigations(items), nil
}

// AddNavigation appends a tile after the last one. A blank or already
// present url is a no-op and returns nil.
func (s *Store) AddNavigation(ctx context.Context, scope domain.Scope, in domain.NewNavigation) (*domain.Navigation, error) {
	if err := scope.Require(); err != nil {
		return nil, err
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return nil, nil
	}

	n := &domain.Navigation{
		ID:          s.newID(),
		UserID:      scope.UserID,
		Title:       strings.TrimSpace(in.Title),
		URL:         url,
		Description: strings.TrimSpace(in.Description),
		Favicon:     strings.TrimSpace(in.Favicon),
		CreatedAt:   s.now(),
	}
	if n.Title == "" {
		n.Title = url
	}

	inserted := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM navigations WHERE user_id = ? AND url = ?)", scope.UserID, url,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check navigation: %w", err)
		}
		if exists {
			return nil
		}

		existing, err := listNavigations(ctx, tx, scope.UserID)
		if err != nil {
			return err
		}
		position := domain.NextPosition(existing)
		n.Position = &position

		_, err = tx.ExecContext(ctx,
			"INSERT INTO navigations ("+navigationColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			n.ID, n.UserID, n.Title, n.URL, n.Description, n.Favicon, position, toMillis(n.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert navigation: %w", err)
		}
		inserted = true
		return nil
	})
	if err != nil || !inserted {
		return nil, err
	}
	return n, nil
}

// RemoveNavigation deletes one of the caller's tiles.
func (s *Store) RemoveNavigation(ctx context.Context, scope domain.Scope, id string) error {
	if err := scope.Require(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM navigations WHERE id = ? AND user_id = ?", id, scope.UserID); err != nil {
		return fmt.Errorf("failed to remove navigation: %w", err)
	}
	return nil
}

// ReorderNavigations renumbers every tile of the caller contiguously:
// orderedIDs first, then the rest in their previous order.
func (s *Store) ReorderNavigations(ctx context.Context, scope domain.Scope, orderedIDs []string) error {
	if err := scope.Require(); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		all, err := listNavigations(ctx, tx, scope.UserID)
		if err != nil {
			return err
		}
		for id, position := range domain.PlanReorder(all, orderedIDs) {
			if _, err := tx.ExecContext(ctx,
				"UPDATE navigations SET position = ? WHERE id = ? AND user_id = ?", position, id, scope.UserID,
			); err != nil {
				return fmt.Errorf("failed to reorder navigation: %w", err)
			}
		}
		return nil
	})
}
