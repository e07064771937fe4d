package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/georemind/georemind/internal/client/models"
	"github.com/georemind/georemind/internal/client/storage"
	"github.com/georemind/georemind/internal/common"
	"github.com/georemind/georemind/internal/logging"
)

func setupRepo(t *testing.T) (*Repository, storage.Store) {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	store := storage.NewSQLiteStore(db)
	return NewRepository(store, logging.Nop()), store
}

func TestRepository_ListEmpty(t *testing.T) {
	repo, _ := setupRepo(t)

	rs, err := repo.List(context.Background(), models.UnsignedUser)
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestRepository_CreateStampsMetadata(t *testing.T) {
	// Scenario: create while offline for the unsigned user.
	repo, _ := setupRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.UnsignedUser, models.Reminder{
		Title:     "Meeting",
		Latitude:  47.0,
		Longitude: 8.0,
		Radius:    50,
	})
	require.NoError(t, err)
	assert.True(t, models.IsLocalID(created.LocalID))
	assert.False(t, created.Synced)
	assert.Zero(t, created.BackendID())
	assert.NotEmpty(t, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	rs, err := repo.List(ctx, models.UnsignedUser)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, created, rs[0])
}

func TestRepository_CreateKeepsProvidedLocalID(t *testing.T) {
	repo, _ := setupRepo(t)

	created, err := repo.Create(context.Background(), "alice", models.Reminder{
		LocalID: "local_42_xyz",
		Title:   "Call mom",
	})
	require.NoError(t, err)
	assert.Equal(t, "local_42_xyz", created.LocalID)
}

func TestRepository_Update(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, "alice", models.Reminder{Title: "Old", Content: "c"})
	require.NoError(t, err)

	repo.now = func() string { return "2030-01-01T00:00:00Z" }

	title := "New"
	updated, err := repo.Update(ctx, "alice", LocalID(created.LocalID), models.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "c", updated.Content)
	assert.Equal(t, "2030-01-01T00:00:00Z", updated.UpdatedAt)
	assert.False(t, updated.Synced)
	assert.Equal(t, created.LocalID, updated.LocalID)
}

func TestRepository_UpdateNotFoundLeavesCollectionUntouched(t *testing.T) {
	// Scenario: update('local_123', ...) with no matching record.
	repo, _ := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", models.Reminder{Title: "Keep"})
	require.NoError(t, err)

	title := "New"
	_, err = repo.Update(ctx, "alice", LocalID("local_123"), models.Patch{Title: &title})
	assert.ErrorIs(t, err, common.ErrNotFound)

	rs, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "Keep", rs[0].Title)
}

func TestRepository_Delete(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	first, err := repo.Create(ctx, "alice", models.Reminder{Title: "First"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, "alice", models.Reminder{Title: "Second"})
	require.NoError(t, err)

	remaining, err := repo.Delete(ctx, "alice", LocalID(first.LocalID))
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Second", remaining[0].Title)

	_, err = repo.Delete(ctx, "alice", LocalID(first.LocalID))
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRepository_OfflineNetEffect(t *testing.T) {
	// A whole offline session of mutations reads back exactly.
	repo, _ := setupRepo(t)
	ctx := context.Background()
	user := models.UnsignedUser

	a, err := repo.Create(ctx, user, models.Reminder{Title: "A"})
	require.NoError(t, err)
	b, err := repo.Create(ctx, user, models.Reminder{Title: "B"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, user, models.Reminder{Title: "C"})
	require.NoError(t, err)

	title := "B2"
	_, err = repo.Update(ctx, user, LocalID(b.LocalID), models.Patch{Title: &title})
	require.NoError(t, err)

	_, err = repo.Delete(ctx, user, LocalID(a.LocalID))
	require.NoError(t, err)

	rs, err := repo.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, rs, 2)
	assert.Equal(t, "B2", rs[0].Title)
	assert.Equal(t, "C", rs[1].Title)
}

func TestRepository_LegacyArrayMigration(t *testing.T) {
	// A bare stored array becomes {"unsigned": [...]} on first read.
	repo, store := setupRepo(t)
	ctx := context.Background()

	legacy := []models.Reminder{{Title: "Old one", LocalID: "local_1_aaa"}}
	encoded, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, storage.KeyReminders, string(encoded)))

	rs, err := repo.List(ctx, models.UnsignedUser)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "Old one", rs[0].Title)

	// other users see nothing
	other, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, other)

	// the stored document is now the mapping form
	value, ok, err := store.Get(ctx, storage.KeyReminders)
	require.NoError(t, err)
	require.True(t, ok)
	var mapping map[string][]models.Reminder
	require.NoError(t, json.Unmarshal([]byte(value), &mapping))
	require.Len(t, mapping[models.UnsignedUser], 1)
}

func TestRepository_LegacyMigrationUnderConcurrentAccess(t *testing.T) {
	// The migration write shares the shared-document write lock with saves,
	// so first reads racing another user's create never lose the legacy
	// records.
	repo, store := setupRepo(t)
	ctx := context.Background()

	legacy := []models.Reminder{{Title: "Old one", LocalID: "local_1_aaa"}}
	encoded, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, storage.KeyReminders, string(encoded)))

	var wg sync.WaitGroup
	errs := make(chan error, 3)
	wg.Add(3)
	go func() {
		defer wg.Done()
		_, err := repo.List(ctx, models.UnsignedUser)
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := repo.List(ctx, "alice")
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := repo.Create(ctx, "alice", models.Reminder{Title: "New"})
		errs <- err
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rs, err := repo.List(ctx, models.UnsignedUser)
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "Old one", rs[0].Title)

	other, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "New", other[0].Title)
}

func TestRepository_MalformedStoreReadsAsEmpty(t *testing.T) {
	repo, store := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, storage.KeyReminders, `{not json`))

	rs, err := repo.List(ctx, models.UnsignedUser)
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestRepository_CollectionsPerUserAreIsolated(t *testing.T) {
	repo, _ := setupRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", models.Reminder{Title: "Alice's"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, models.UnsignedUser, models.Reminder{Title: "Anon's"})
	require.NoError(t, err)

	rs, err := repo.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, "Alice's", rs[0].Title)
}

type failingStore struct {
	getErr error
	setErr error
}

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, f.getErr
}
func (f *failingStore) Set(ctx context.Context, key, value string) error { return f.setErr }
func (f *failingStore) Remove(ctx context.Context, key string) error     { return nil }

func TestRepository_StorageFailureIsFatalForOperation(t *testing.T) {
	boom := errors.New("disk broke")
	repo := NewRepository(&failingStore{getErr: boom}, logging.Nop())

	_, err := repo.List(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)

	_, err = repo.Create(context.Background(), "alice", models.Reminder{Title: "X"})
	assert.ErrorIs(t, err, boom)
}
