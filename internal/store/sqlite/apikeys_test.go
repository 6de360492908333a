package sqlite

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

func TestAPIKeys(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	_, _, err := s.CreateAPIKey(ctx, alice, "  ")
	require.ErrorIs(t, err, domain.ErrValidation)
	_, _, err = s.CreateAPIKey(ctx, domain.Scope{}, "cli")
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	k, plaintext, err := s.CreateAPIKey(ctx, alice, " cli ")
	require.NoError(t, err)
	assert.Equal(t, "cli", k.Name)
	assert.True(t, strings.HasPrefix(plaintext, domain.APIKeyPrefix))
	assert.True(t, strings.HasPrefix(plaintext, k.Prefix))
	assert.Equal(t, domain.HashAPIKey(plaintext), k.KeyHash)

	found, err := s.LookupAPIKey(ctx, domain.HashAPIKey(plaintext))
	require.NoError(t, err)
	assert.Equal(t, k.ID, found.ID)
	assert.Equal(t, alice.UserID, found.UserID)
	assert.Nil(t, found.LastUsedAt)

	require.NoError(t, s.TouchAPIKey(ctx, k.ID))
	found, err = s.LookupAPIKey(ctx, k.KeyHash)
	require.NoError(t, err)
	require.NotNil(t, found.LastUsedAt)

	_, err = s.LookupAPIKey(ctx, domain.HashAPIKey("doodl_unknown"))
	require.ErrorIs(t, err, domain.ErrNotFound)

	for _, name := range []string{"two", "three"} {
		_, _, err := s.CreateAPIKey(ctx, alice, name)
		require.NoError(t, err)
	}
	_, _, err = s.CreateAPIKey(ctx, alice, "four")
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Maximum of 3 API keys allowed", domain.Message(err))

	keys, err := s.ListAPIKeys(ctx, alice)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, "cli", keys[0].Name)

	// Foreign revocation is a no-op.
	require.NoError(t, s.RevokeAPIKey(ctx, bob, k.ID))
	_, err = s.LookupAPIKey(ctx, k.KeyHash)
	require.NoError(t, err)

	require.NoError(t, s.RevokeAPIKey(ctx, alice, k.ID))
	_, err = s.LookupAPIKey(ctx, k.KeyHash)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = s.CreateAPIKey(ctx, alice, "four")
	require.NoError(t, err, "revoking frees a slot")

	keys, err = s.ListAPIKeys(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
