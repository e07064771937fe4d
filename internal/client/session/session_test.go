package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/georemind/georemind/internal/client/models"
	"github.com/georemind/georemind/internal/client/storage"
	"github.com/georemind/georemind/internal/logging"
)

func setupManager(t *testing.T) (*Manager, storage.Store) {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := storage.NewSQLiteStore(db)
	return NewManager(store, logging.Nop()), store
}

func TestManager_CurrentDefaultsToAnonymous(t *testing.T) {
	m, _ := setupManager(t)

	s := m.Current(context.Background())
	assert.Nil(t, s.User)
	assert.Empty(t, s.Token)
	assert.Equal(t, models.UnsignedUser, s.UserKey())
	assert.False(t, s.Authenticated())
}

func TestManager_SaveAndCurrent(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()

	user := models.User{ID: "42", Username: "alice"}
	require.NoError(t, m.Save(ctx, user, "token-1"))

	s := m.Current(ctx)
	require.NotNil(t, s.User)
	assert.Equal(t, "alice", s.User.Username)
	assert.Equal(t, "token-1", s.Token)
	assert.Equal(t, "42", s.UserKey())
	assert.True(t, s.Authenticated())
}

func TestManager_Clear(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, models.User{Username: "alice"}, "token-1"))
	require.NoError(t, m.Clear(ctx))

	s := m.Current(ctx)
	assert.Nil(t, s.User)
	assert.Empty(t, s.Token)
}

func TestManager_MalformedUserDegradesToAnonymous(t *testing.T) {
	m, store := setupManager(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyCurrentUser, `{broken`))
	require.NoError(t, store.Set(ctx, storage.KeyAuthToken, "token-1"))

	s := m.Current(ctx)
	assert.Nil(t, s.User)
	// the token is still read; Authenticated stays false without a user
	assert.Equal(t, "token-1", s.Token)
	assert.False(t, s.Authenticated())
}
