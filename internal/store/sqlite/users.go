package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

const userColumns = "id, auth_subject, email, name, image, created_at"

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var (
		u       domain.User
		created int64
	)
	if err := row.Scan(&u.ID, &u.AuthSubject, &u.Email, &u.Name, &u.Image, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = fromMillis(created)
	return &u, nil
}

// findUser looks an identity up by external subject first, then by normalized email.
func findUser(ctx context.Context, q queryer, id domain.Identity) (*domain.User, error) {
	if subject := strings.TrimSpace(id.Subject); subject != "" {
		u, err := scanUser(q.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE auth_subject = ? LIMIT 1", subject))
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to find user by subject: %w", err)
		}
	}

	if email := domain.NormalizeEmail(id.Email); email != "" {
		u, err := scanUser(q.QueryRowContext(ctx,
			"SELECT "+userColumns+" FROM users WHERE email = ? ORDER BY created_at LIMIT 1", email))
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to find user by email: %w", err)
		}
	}
	return nil, nil
}

// ResolveUser returns the scope of an existing account, or an anonymous scope.
// It never writes, so it is safe on read paths.
func (s *Store) ResolveUser(ctx context.Context, id domain.Identity) (domain.Scope, error) {
	if !id.Valid() {
		return domain.Scope{}, nil
	}
	u, err := findUser(ctx, s.db, id)
	if err != nil || u == nil {
		return domain.Scope{}, err
	}
	return domain.ScopeFor(u.ID), nil
}

// EnsureUser links id to an account, creating it on first sight and
// refreshing profile fields that changed upstream.
func (s *Store) EnsureUser(ctx context.Context, id domain.Identity) (domain.Scope, error) {
	if !id.Valid() {
		return domain.Scope{}, domain.Unauthorized()
	}

	var userID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := findUser(ctx, tx, id)
		if err != nil {
			return err
		}

		if existing != nil {
			userID = existing.ID
			merged := existing.Merge(id)
			if merged == *existing {
				return nil
			}
			_, err := tx.ExecContext(ctx,
				"UPDATE users SET auth_subject = ?, email = ?, name = ?, image = ? WHERE id = ?",
				merged.AuthSubject, merged.Email, merged.Name, merged.Image, existing.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to patch user: %w", err)
			}
			return nil
		}

		next := domain.User{}.Merge(id)
		userID = s.newID()
		_, err = tx.ExecContext(ctx,
			"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			userID, next.AuthSubject, next.Email, next.Name, next.Image, toMillis(s.now()),
		)
		if err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Scope{}, err
	}
	return domain.ScopeFor(userID), nil
}

// GetUser returns the account behind scope.
func (s *Store) GetUser(ctx context.Context, scope domain.Scope) (*domain.User, error) {
	if scope.Anonymous() {
		return nil, domain.ErrNotFound
	}
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", scope.UserID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
