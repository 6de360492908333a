package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

func TestEnsureUser(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureUser(ctx, domain.Identity{Name: "nobody"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	scope, err := s.EnsureUser(ctx, domain.Identity{Subject: "sub-1", Email: " Alice@Example.com ", Name: "Alice"})
	require.NoError(t, err)

	again, err := s.EnsureUser(ctx, domain.Identity{Subject: "sub-1", Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, scope, again)

	u, err := s.GetUser(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.Name)

	// Profile changes upstream are patched in place.
	_, err = s.EnsureUser(ctx, domain.Identity{Subject: "sub-1", Email: "alice@example.com", Name: "Alice B", Image: "https://img.example/a.png"})
	require.NoError(t, err)
	u, err = s.GetUser(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", u.Name)
	assert.Equal(t, "https://img.example/a.png", u.Image)
}

func TestEnsureUserLinksByEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	scope, err := s.EnsureUser(ctx, domain.Identity{Email: "bob@example.com"})
	require.NoError(t, err)

	// A later login carrying a subject adopts the email account.
	linked, err := s.EnsureUser(ctx, domain.Identity{Subject: "sub-bob", Email: "BOB@example.com"})
	require.NoError(t, err)
	assert.Equal(t, scope, linked)

	u, err := s.GetUser(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, "sub-bob", u.AuthSubject)

	other, err := s.EnsureUser(ctx, domain.Identity{Subject: "sub-carol"})
	require.NoError(t, err)
	assert.NotEqual(t, scope, other)
}

func TestEnsureUserKeepsEmailAcrossEmaillessLogin(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureUser(ctx, domain.Identity{Subject: "github|1", Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)

	// A sign-in asserting only the subject must not clear stored fields.
	again, err := s.EnsureUser(ctx, domain.Identity{Subject: "github|1"})
	require.NoError(t, err)
	assert.Equal(t, first, again)

	u, err := s.GetUser(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "Alice", u.Name)

	other, err := s.EnsureUser(ctx, domain.Identity{Subject: "google|9", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first, other, "same email links to the same account")

	// An email-only identity, as the importer sends, keeps the subject.
	owner, err := s.EnsureUser(ctx, domain.Identity{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, first, owner)
	u, err = s.GetUser(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "google|9", u.AuthSubject)
}

func TestResolveUser(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	scope, err := s.ResolveUser(ctx, domain.Identity{Subject: "ghost"})
	require.NoError(t, err)
	assert.True(t, scope.Anonymous(), "resolving never creates accounts")

	scope, err = s.ResolveUser(ctx, domain.Identity{})
	require.NoError(t, err)
	assert.True(t, scope.Anonymous())

	created, err := s.EnsureUser(ctx, domain.Identity{Subject: "ghost", Email: "ghost@example.com"})
	require.NoError(t, err)

	scope, err = s.ResolveUser(ctx, domain.Identity{Subject: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, created, scope)

	scope, err = s.ResolveUser(ctx, domain.Identity{Email: "GHOST@example.com"})
	require.NoError(t, err)
	assert.Equal(t, created, scope)

	_, err = s.GetUser(ctx, domain.Scope{})
	require.ErrorIs(t, err, domain.ErrNotFound)
}
