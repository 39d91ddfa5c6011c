package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return newTestSQLiteStore(t)
	})
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	id, err := s.UpsertUserByEmail(ctx, User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	require.NoError(t, s.Close(ctx))

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close(ctx)

	again, err := reopened.UpsertUserByEmail(ctx, User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestSQLiteStore_InfoListsTables(t *testing.T) {
	s := newTestSQLiteStore(t)

	info, err := s.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, info.Driver)
	assert.ElementsMatch(t, []string{"chats", "messages", "projects", "users"}, info.Collections)
}
