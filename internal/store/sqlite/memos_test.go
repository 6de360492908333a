package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

func TestMemoLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	m, err := s.AddMemo(ctx, alice, "  Reading list #Books\n#nsfw  ")
	require.NoError(t, err)
	assert.Equal(t, "Reading list #Books\n#nsfw", m.Content)
	assert.Equal(t, []string{"books", "nsfw"}, m.Tags)
	assert.True(t, m.HasNsfw)
	assert.False(t, m.IsPinned)

	_, err = s.AddMemo(ctx, alice, "   ")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, err = s.AddMemo(ctx, domain.Scope{}, "hello")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	require.NoError(t, s.UpdateMemo(ctx, alice, m.ID, "plain text now"))
	got, err := s.GetMemo(ctx, alice, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "plain text now", got.Content)
	assert.Equal(t, []string{}, got.Tags)
	assert.False(t, got.HasNsfw)
	assert.Equal(t, "plain text now", got.SearchText)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	// Foreign updates are no-ops; an empty update is still rejected for the owner.
	require.NoError(t, s.UpdateMemo(ctx, bob, m.ID, "hijack"))
	require.ErrorIs(t, s.UpdateMemo(ctx, alice, m.ID, ""), domain.ErrValidation)
	got, err = s.GetMemo(ctx, alice, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "plain text now", got.Content)

	_, err = s.GetMemo(ctx, bob, m.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.TogglePin(ctx, alice, m.ID))
	require.NoError(t, s.TogglePin(ctx, bob, m.ID))
	got, err = s.GetMemo(ctx, alice, m.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPinned)

	require.NoError(t, s.RemoveMemo(ctx, bob, m.ID))
	require.NoError(t, s.RemoveMemo(ctx, alice, m.ID))
	_, err = s.GetMemo(ctx, alice, m.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListAndSearchMemos(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	older, err := s.AddMemo(ctx, alice, "buy milk #errands")
	require.NoError(t, err)
	pinned, err := s.AddMemo(ctx, alice, "ideas for the #blog")
	require.NoError(t, err)
	newer, err := s.AddMemo(ctx, alice, "call the plumber #errands #home")
	require.NoError(t, err)
	_, err = s.AddMemo(ctx, bob, "bob's #errands")
	require.NoError(t, err)

	require.NoError(t, s.TogglePin(ctx, alice, pinned.ID))

	list, err := s.ListMemos(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{pinned.ID, newer.ID, older.ID}, []string{list[0].ID, list[1].ID, list[2].ID})

	found, err := s.SearchMemos(ctx, alice, "errands")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.SearchMemos(ctx, alice, "plumb")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, newer.ID, found[0].ID)

	found, err = s.SearchMemos(ctx, alice, "  ")
	require.NoError(t, err)
	assert.Len(t, found, 3)

	tags, err := s.ListMemoTags(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"blog", "errands", "home"}, tags)

	n, err := s.BulkRemoveMemos(ctx, bob, []string{older.ID, newer.ID})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = s.BulkRemoveMemos(ctx, alice, []string{older.ID, newer.ID, "missing"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err = s.ListMemos(ctx, domain.Scope{})
	require.NoError(t, err)
	assert.Empty(t, list)
}
