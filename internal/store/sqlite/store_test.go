package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/doodl/internal/domain"
)

// testClock advances one second per reading so rows get distinct timestamps.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "doodl.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	clock := &testClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.now
	return s, clock
}

func newTestUser(t *testing.T, s *Store, subject string) domain.Scope {
	t.Helper()
	scope, err := s.EnsureUser(context.Background(), domain.Identity{Subject: subject, Email: subject + "@example.com"})
	require.NoError(t, err)
	require.False(t, scope.Anonymous())
	return scope
}

func TestOpenAppliesMigrations(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.NoError(t, s.Ping(ctx))

	// Reopening must not re-run applied migrations.
	path := s.Path()
	require.NoError(t, s.Close())
	s2, err := Open(ctx, path, time.Second)
	require.NoError(t, err)
	defer func() {
		_ = s2.Close()
	}()
	v, err = s2.SchemaVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "  ", want: ""},
		{in: "go", want: `"go"*`},
		{in: "golang tips", want: `"golang" "tips"*`},
		{in: `a "quoted" OR b`, want: `"a" "quoted" "OR" "b"*`},
		{in: "example.com/path", want: `"example.com/path"*`},
		{in: "***", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, ftsQuery(tt.in))
		})
	}
}

func TestTagsCodec(t *testing.T) {
	raw, err := encodeTags(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", raw)

	tags, err := decodeTags(`["a","b"]`)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, tags)

	_, err = decodeTags("{")
	require.Error(t, err)
}
