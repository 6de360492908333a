package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

const bookmarkColumns = "id, user_id, url, title, description, favicon, notes, tags, read_count, metadata_rev, search_text, created_at, updated_at"

var errDuplicateURL = domain.Conflict("This URL has already been bookmarked")

// BookmarkFilter narrows a bookmark listing. Zero values disable a criterion.
type BookmarkFilter struct {
	// Start and End bound created_at to [Start, End).
	Start time.Time
	End   time.Time
	// Tags must all be present.
	Tags []string
}

// BookmarkPatch is a user edit of the descriptive fields. Nil leaves a field unchanged.
type BookmarkPatch struct {
	Title       *string
	Description *string
}

func scanBookmark(row interface{ Scan(...any) error }) (*domain.Bookmark, error) {
	var (
		b                domain.Bookmark
		notes            sql.NullString
		tags             string
		created, updated int64
	)
	err := row.Scan(&b.ID, &b.UserID, &b.URL, &b.Title, &b.Description, &b.Favicon,
		&notes, &tags, &b.ReadCount, &b.MetadataRev, &b.SearchText, &created, &updated)
	if err != nil {
		return nil, err
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	if b.Tags, err = decodeTags(tags); err != nil {
		return nil, err
	}
	b.CreatedAt = fromMillis(created)
	b.UpdatedAt = fromMillis(updated)
	return &b, nil
}

func collectBookmarks(rows *sql.Rows) ([]*domain.Bookmark, error) {
	defer func() {
		_ = rows.Close()
	}()
	out := make([]*domain.Bookmark, 0)
	for rows.Next() {
		b, err := scanBookmark(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bookmark: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookmarks: %w", err)
	}
	return out, nil
}

// getBookmarkTx loads a bookmark the caller owns; nil when missing or foreign.
func getBookmarkTx(ctx context.Context, tx *sql.Tx, scope domain.Scope, id string) (*domain.Bookmark, error) {
	b, err := scanBookmark(tx.QueryRowContext(ctx,
		"SELECT "+bookmarkColumns+" FROM bookmarks WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bookmark: %w", err)
	}
	if !domain.RequireOwns(b.UserID, scope) {
		return nil, nil
	}
	return b, nil
}

// saveBookmarkTx persists every mutable field. searchText is always
// recomputed here, in the same transaction as the edit.
func (s *Store) saveBookmarkTx(ctx context.Context, tx *sql.Tx, b *domain.Bookmark) error {
	b.Refresh()
	b.UpdatedAt = s.now()
	tags, err := encodeTags(b.Tags)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE bookmarks SET
		title = ?, description = ?, favicon = ?, notes = ?, tags = ?,
		read_count = ?, metadata_rev = ?, search_text = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		b.Title, b.Description, b.Favicon, b.Notes, tags,
		b.ReadCount, b.MetadataRev, b.SearchText, toMillis(b.UpdatedAt),
		b.ID, b.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to save bookmark: %w", err)
	}
	return nil
}

// mutateBookmark loads, edits and saves one bookmark in a single transaction.
// Missing or foreign ids are a silent no-op. fn returns false to skip the write.
func (s *Store) mutateBookmark(ctx context.Context, scope domain.Scope, id string, fn func(b *domain.Bookmark) bool) (bool, error) {
	if err := scope.Require(); err != nil {
		return false, err
	}
	applied := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := getBookmarkTx(ctx, tx, scope, id)
		if err != nil || b == nil {
			return err
		}
		if !fn(b) {
			return nil
		}
		applied = true
		return s.saveBookmarkTx(ctx, tx, b)
	})
	return applied, err
}

// AddBookmark inserts a bookmark for the caller. Without a title the row is
// a stub (title = url) awaiting enrichment.
func (s *Store) AddBookmark(ctx context.Context, scope domain.Scope, in domain.NewBookmark) (*domain.Bookmark, error) {
	if err := scope.Require(); err != nil {
		return nil, err
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		return nil, domain.Validation("URL is required")
	}

	now := s.now()
	b := &domain.Bookmark{
		ID:          s.newID(),
		UserID:      scope.UserID,
		URL:         url,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Favicon:     strings.TrimSpace(in.Favicon),
		Notes:       domain.NormalizeNotes(in.Notes),
		Tags:        domain.NormalizeTags(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if b.Title == "" {
		b.Title = url
	}
	b.Refresh()

	tags, err := encodeTags(b.Tags)
	if err != nil {
		return nil, err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM bookmarks WHERE user_id = ? AND url = ?)",
			scope.UserID, url,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check duplicate: %w", err)
		}
		if exists {
			return errDuplicateURL
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO bookmarks ("+bookmarkColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			b.ID, b.UserID, b.URL, b.Title, b.Description, b.Favicon, b.Notes, tags,
			b.ReadCount, b.MetadataRev, b.SearchText, toMillis(b.CreatedAt), toMillis(b.UpdatedAt),
		)
		if isUniqueViolation(err) {
			return errDuplicateURL
		}
		if err != nil {
			return fmt.Errorf("failed to insert bookmark: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookmark returns one of the caller's bookmarks or domain.ErrNotFound.
func (s *Store) GetBookmark(ctx context.Context, scope domain.Scope, id string) (*domain.Bookmark, error) {
	if scope.Anonymous() {
		return nil, domain.ErrNotFound
	}
	b, err := scanBookmark(s.db.QueryRowContext(ctx,
		"SELECT "+bookmarkColumns+" FROM bookmarks WHERE id = ? AND user_id = ?", id, scope.UserID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return b, nil
}

// ListBookmarks returns the caller's bookmarks, newest first.
func (s *Store) ListBookmarks(ctx context.Context, scope domain.Scope) ([]*domain.Bookmark, error) {
	return s.FilterBookmarks(ctx, scope, BookmarkFilter{})
}

// FilterBookmarks returns the caller's bookmarks matching f, newest first.
func (s *Store) FilterBookmarks(ctx context.Context, scope domain.Scope, f BookmarkFilter) ([]*domain.Bookmark, error) {
	if scope.Anonymous() {
		return []*domain.Bookmark{}, nil
	}

	var (
		where = []string{"user_id = ?"}
		args  = []any{scope.UserID}
	)
	if !f.Start.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, toMillis(f.Start))
	}
	if !f.End.IsZero() {
		where = append(where, "created_at < ?")
		args = append(args, toMillis(f.End))
	}
	for _, tag := range domain.NormalizeTags(f.Tags) {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(bookmarks.tags) WHERE json_each.value = ?)")
		args = append(args, tag)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+bookmarkColumns+" FROM bookmarks WHERE "+strings.Join(where, " AND ")+
			" ORDER BY created_at DESC, pk DESC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	return collectBookmarks(rows)
}

// SearchBookmarks runs a full-text query over the caller's bookmarks, best match first.
// A query without usable terms lists everything.
func (s *Store) SearchBookmarks(ctx context.Context, scope domain.Scope, query string) ([]*domain.Bookmark, error) {
	if scope.Anonymous() {
		return []*domain.Bookmark{}, nil
	}
	match := ftsQuery(query)
	if match == "" {
		return s.ListBookmarks(ctx, scope)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.user_id, b.url, b.title, b.description, b.favicon, b.notes, b.tags,
		       b.read_count, b.metadata_rev, b.search_text, b.created_at, b.updated_at
		FROM bookmarks_fts
		JOIN bookmarks b ON b.pk = bookmarks_fts.rowid
		WHERE bookmarks_fts MATCH ? AND b.user_id = ?
		ORDER BY bm25(bookmarks_fts), b.created_at DESC`,
		match, scope.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search bookmarks: %w", err)
	}
	return collectBookmarks(rows)
}

// ListTags returns the distinct tags of the caller's bookmarks, ascending.
func (s *Store) ListTags(ctx context.Context, scope domain.Scope) ([]string, error) {
	if scope.Anonymous() {
		return []string{}, nil
	}
	return s.stringColumn(ctx, "failed to list tags", `
		SELECT DISTINCT json_each.value
		FROM bookmarks, json_each(bookmarks.tags)
		WHERE bookmarks.user_id = ?
		ORDER BY json_each.value`, scope.UserID)
}

// ListURLs returns every URL the caller has saved.
func (s *Store) ListURLs(ctx context.Context, scope domain.Scope) ([]string, error) {
	if scope.Anonymous() {
		return []string{}, nil
	}
	return s.stringColumn(ctx, "failed to list urls",
		"SELECT url FROM bookmarks WHERE user_id = ? ORDER BY created_at DESC, pk DESC", scope.UserID)
}

func (s *Store) stringColumn(ctx context.Context, errMsg, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", errMsg, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errMsg, err)
	}
	return out, nil
}

// AddTag attaches tag to a bookmark. Already-present and blank tags are no-ops.
func (s *Store) AddTag(ctx context.Context, scope domain.Scope, id, tag string) error {
	tag = domain.NormalizeTag(tag)
	if tag == "" {
		return scope.Require()
	}
	_, err := s.mutateBookmark(ctx, scope, id, func(b *domain.Bookmark) bool {
		if b.HasTag(tag) {
			return false
		}
		b.Tags = append(b.Tags, tag)
		return true
	})
	return err
}

// RemoveTag detaches tag from a bookmark.
func (s *Store) RemoveTag(ctx context.Context, scope domain.Scope, id, tag string) error {
	tag = domain.NormalizeTag(tag)
	_, err := s.mutateBookmark(ctx, scope, id, func(b *domain.Bookmark) bool {
		if !b.HasTag(tag) {
			return false
		}
		kept := make([]string, 0, len(b.Tags))
		for _, t := range b.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		b.Tags = domain.NormalizeTags(kept)
		return true
	})
	return err
}

// UpdateNotes replaces the notes; blank notes clear them.
func (s *Store) UpdateNotes(ctx context.Context, scope domain.Scope, id, notes string) error {
	_, err := s.mutateBookmark(ctx, scope, id, func(b *domain.Bookmark) bool {
		b.Notes = domain.NormalizeNotes(notes)
		return true
	})
	return err
}

// UpdateBookmark applies a user edit of title/description. It bumps the
// metadata revision so a pending enrichment cannot overwrite the edit.
func (s *Store) UpdateBookmark(ctx context.Context, scope domain.Scope, id string, p BookmarkPatch) error {
	_, err := s.mutateBookmark(ctx, scope, id, func(b *domain.Bookmark) bool {
		if p.Title == nil && p.Description == nil {
			return false
		}
		if p.Title != nil {
			b.Title = strings.TrimSpace(*p.Title)
			if b.Title == "" {
				b.Title = b.URL
			}
		}
		if p.Description != nil {
			b.Description = strings.TrimSpace(*p.Description)
		}
		b.MetadataRev++
		return true
	})
	return err
}

// TrackRead increments the read counter of a bookmark.
func (s *Store) TrackRead(ctx context.Context, scope domain.Scope, id string) error {
	if err := scope.Require(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE bookmarks SET read_count = read_count + 1 WHERE id = ? AND user_id = ?",
		id, scope.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to track read: %w", err)
	}
	return nil
}

// RemoveBookmark deletes one of the caller's bookmarks.
func (s *Store) RemoveBookmark(ctx context.Context, scope domain.Scope, id string) error {
	_, err := s.removeBookmark(ctx, scope, id)
	return err
}

func (s *Store) removeBookmark(ctx context.Context, scope domain.Scope, id string) (bool, error) {
	if err := scope.Require(); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ? AND user_id = ?", id, scope.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to remove bookmark: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// BulkAddTag tags each bookmark independently and returns how many changed.
// Foreign or missing ids are skipped; a failing item does not undo the others.
func (s *Store) BulkAddTag(ctx context.Context, scope domain.Scope, ids []string, tag string) (int, error) {
	if err := scope.Require(); err != nil {
		return 0, err
	}
	tag = domain.NormalizeTag(tag)
	if tag == "" {
		return 0, domain.Validation("Tag is required")
	}

	applied := 0
	var firstErr error
	for _, id := range ids {
		ok, err := s.mutateBookmark(ctx, scope, id, func(b *domain.Bookmark) bool {
			if b.HasTag(tag) {
				return false
			}
			b.Tags = append(b.Tags, tag)
			return true
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ok && err == nil {
			applied++
		}
	}
	return applied, firstErr
}

// BulkRemove deletes each bookmark independently and returns how many were deleted.
func (s *Store) BulkRemove(ctx context.Context, scope domain.Scope, ids []string) (int, error) {
	if err := scope.Require(); err != nil {
		return 0, err
	}
	removed := 0
	var firstErr error
	for _, id := range ids {
		ok, err := s.removeBookmark(ctx, scope, id)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if ok {
			removed++
		}
	}
	return removed, firstErr
}

// ApplyMetadata writes an enrichment result, unless the bookmark changed
// revision since the job was scheduled (user edit or earlier enrichment).
// It reports whether the row was updated.
func (s *Store) ApplyMetadata(ctx context.Context, scope domain.Scope, id string, rev int64, md domain.Metadata) (bool, error) {
	return s.mutateBookmark(ctx, scope, id, func(b *domain.Bookmark) bool {
		if b.MetadataRev != rev {
			return false
		}
		if t := strings.TrimSpace(md.Title); t != "" {
			b.Title = t
		}
		b.Description = strings.TrimSpace(md.Description)
		if md.Favicon != "" {
			b.Favicon = md.Favicon
		}
		b.MetadataRev++
		return true
	})
}
