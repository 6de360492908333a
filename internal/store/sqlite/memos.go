package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

const memoColumns = "id, user_id, content, tags, search_text, has_nsfw, is_pinned, created_at, updated_at"

func scanMemo(row interface{ Scan(...any) error }) (*domain.Memo, error) {
	var (
		m                domain.Memo
		tags             string
		created, updated int64
	)
	err := row.Scan(&m.ID, &m.UserID, &m.Content, &tags, &m.SearchText, &m.HasNsfw, &m.IsPinned, &created, &updated)
	if err != nil {
		return nil, err
	}
	if m.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	m.CreatedAt = fromMillis(created)
	m.UpdatedAt = fromMillis(updated)
	return &m, nil
}

func collectMemos(rows *sql.Rows) ([]*domain.Memo, error) {
	defer func() {
		_ = rows.Close()
	}()
	out := make([]*domain.Memo, 0)
	for rows.Next() {
		m, err := scanMemo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memo: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memos: %w", err)
	}
	return out, nil
}

func getMemoTx(ctx context.Context, tx *sql.Tx, scope domain.Scope, id string) (*domain.Memo, error) {
	m, err := scanMemo(tx.QueryRowContext(ctx, "SELECT "+memoColumns+" FROM memos WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load memo: %w", err)
	}
	if !domain.RequireOwns(m.UserID, scope) {
		return nil, nil
	}
	return m, nil
}

// AddMemo stores a new memo for the caller.
func (s *Store) AddMemo(ctx context.Context, scope domain.Scope, content string) (*domain.Memo, error) {
	if err := scope.Require(); err != nil {
		return nil, err
	}

	now := s.now()
	m := &domain.Memo{ID: s.newID(), UserID: scope.UserID, CreatedAt: now}
	if err := m.SetContent(content, now); err != nil {
		return nil, err
	}
	tags, err := encodeTags(m.Tags)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO memos ("+memoColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.UserID, m.Content, tags, m.SearchText, m.HasNsfw, m.IsPinned,
		toMillis(m.CreatedAt), toMillis(m.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert memo: %w", err)
	}
	return m, nil
}

// UpdateMemo replaces the content and every field derived from it.
// Foreign or missing ids are a silent no-op.
func (s *Store) UpdateMemo(ctx context.Context, scope domain.Scope, id, content string) error {
	if err := scope.Require(); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		m, err := getMemoTx(ctx, tx, scope, id)
		if err != nil || m == nil {
			return err
		}
		if err := m.SetContent(content, s.now()); err != nil {
			return err
		}
		tags, err := encodeTags(m.Tags)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE memos SET content = ?, tags = ?, search_text = ?, has_nsfw = ?, updated_at = ? WHERE id = ?",
			m.Content, tags, m.SearchText, m.HasNsfw, toMillis(m.UpdatedAt), m.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update memo: %w", err)
		}
		return nil
	})
}

// TogglePin flips the pinned flag.
func (s *Store) TogglePin(ctx context.Context, scope domain.Scope, id string) error {
	if err := scope.Require(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE memos SET is_pinned = NOT is_pinned WHERE id = ? AND user_id = ?", id, scope.UserID)
	if err != nil {
		return fmt.Errorf("failed to toggle pin: %w", err)
	}
	return nil
}

// RemoveMemo deletes one of the caller's memos.
func (s *Store) RemoveMemo(ctx context.Context, scope domain.Scope, id string) error {
	_, err := s.removeMemo(ctx, scope, id)
	return err
}

func (s *Store) removeMemo(ctx context.Context, scope domain.Scope, id string) (bool, error) {
	if err := scope.Require(); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM memos WHERE id = ? AND user_id = ?", id, scope.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to remove memo: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// BulkRemoveMemos deletes each memo independently and returns how many were deleted.
func (s *Store) BulkRemoveMemos(ctx context.Context, scope domain.Scope, ids []string) (int, error) {
	if err := scope.Require(); err != nil {
		return 0, err
	}
	removed := 0
	var firstErr error
	for _, id := range ids {
		ok, err := s.removeMemo(ctx, scope, id)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ok {
			removed++
		}
	}
	return removed, firstErr
}

// GetMemo returns one of the caller's memos or domain.ErrNotFound.
func (s *Store) GetMemo(ctx context.Context, scope domain.Scope, id string) (*domain.Memo, error) {
	if scope.Anonymous() {
		return nil, domain.ErrNotFound
	}
	m, err := scanMemo(s.db.QueryRowContext(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE id = ? AND user_id = ?", id, scope.UserID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get memo: %w", err)
	}
	return m, nil
}

// ListMemos returns the caller's memos, pinned first, then newest first.
func (s *Store) ListMemos(ctx context.Context, scope domain.Scope) ([]*domain.Memo, error) {
	if scope.Anonymous() {
		return []*domain.Memo{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+memoColumns+" FROM memos WHERE user_id = ? ORDER BY is_pinned DESC, created_at DESC, pk DESC",
		scope.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memos: %w", err)
	}
	return collectMemos(rows)
}

// SearchMemos runs a full-text query over the caller's memos.
func (s *Store) SearchMemos(ctx context.Context, scope domain.Scope, query string) ([]*domain.Memo, error) {
	if scope.Anonymous() {
		return []*domain.Memo{}, nil
	}
	match := ftsQuery(query)
	if match == "" {
		return s.ListMemos(ctx, scope)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.user_id, m.content, m.tags, m.search_text, m.has_nsfw, m.is_pinned, m.created_at, m.updated_at
		FROM memos_fts
		JOIN memos m ON m.pk = memos_fts.rowid
		WHERE memos_fts MATCH ? AND m.user_id = ?
		ORDER BY m.is_pinned DESC, bm25(memos_fts), m.created_at DESC`,
		match, scope.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search memos: %w", err)
	}
	return collectMemos(rows)
}

// ListMemoTags returns the distinct tags of the caller's memos, ascending.
func (s *Store) ListMemoTags(ctx context.Context, scope domain.Scope) ([]string, error) {
	if scope.Anonymous() {
		return []string{}, nil
	}
	return s.stringColumn(ctx, "failed to list memo tags", `
		SELECT DISTINCT json_each.value
		FROM memos, json_each(memos.tags)
		WHERE memos.user_id = ?
		ORDER BY json_each.value`, scope.UserID)
}
