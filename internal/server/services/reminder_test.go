package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georemind/georemind/internal/common"
	"github.com/georemind/georemind/internal/dbx"
	"github.com/georemind/georemind/internal/server/models"
	"github.com/georemind/georemind/internal/server/repositories/reminders"
	"github.com/georemind/georemind/internal/server/repositories/users"
)

type fakeManager struct {
	users     users.Repository
	reminders reminders.Repository
}

func (m *fakeManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeManager) Reminders(db dbx.DBTX) reminders.Repository          { return m.reminders }

// fakeReminderRepo keeps one row per title and records delete calls.
type fakeReminderRepo struct {
	rows      map[string]*models.Reminder
	nextID    int64
	deletes   []string
	deletedAt map[string]time.Time
	deleteErr error
}

func newFakeReminderRepo() *fakeReminderRepo {
	return &fakeReminderRepo{rows: map[string]*models.Reminder{}, deletedAt: map[string]time.Time{}}
}

func (f *fakeReminderRepo) ListByUser(ctx context.Context, userID int64) ([]models.Reminder, error) {
	out := make([]models.Reminder, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReminderRepo) Upsert(ctx context.Context, rem *models.Reminder) (*models.Reminder, error) {
	if existing, ok := f.rows[rem.Title]; ok {
		if rem.ClientUpdatedAt.Before(existing.ClientUpdatedAt) {
			stale := *existing
			return &stale, nil
		}
		rem.ID = existing.ID
	} else {
		f.nextID++
		rem.ID = f.nextID
	}
	stored := *rem
	f.rows[rem.Title] = &stored
	out := stored
	return &out, nil
}

func (f *fakeReminderRepo) DeleteByTitle(ctx context.Context, userID int64, title string, olderThan time.Time) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, title)
	f.deletedAt[title] = olderThan
	if r, ok := f.rows[title]; ok && !r.ClientUpdatedAt.After(olderThan) {
		delete(f.rows, title)
	}
	return nil
}

func (f *fakeReminderRepo) DeleteByID(ctx context.Context, userID, id int64) error {
	for title, r := range f.rows {
		if r.ID == id {
			delete(f.rows, title)
			return nil
		}
	}
	return common.ErrNotFound
}

func setupReminderService(t *testing.T, repo *fakeReminderRepo) (*ReminderService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := NewReminderService(db, &fakeManager{reminders: repo}, nil)
	return s, mock
}

func TestReminderService_CreateBatchSkipsTombstones(t *testing.T) {
	repo := newFakeReminderRepo()
	s, mock := setupReminderService(t, repo)
	mock.ExpectBegin()
	mock.ExpectCommit()

	stored, err := s.CreateBatch(context.Background(), 1, []models.ReminderChange{
		{Title: "pharmacy", ClientUpdatedAt: "2026-01-02T10:00:00Z"},
		{Title: "gone", IsDeleted: true},
		{Title: "bakery"},
	})
	require.NoError(t, err)

	require.Len(t, stored, 2)
	assert.Equal(t, "pharmacy", stored[0].Title)
	assert.Equal(t, "bakery", stored[1].Title)
	assert.NotContains(t, repo.rows, "gone")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderService_CreateBatchParsesClientTime(t *testing.T) {
	repo := newFakeReminderRepo()
	s, mock := setupReminderService(t, repo)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := s.CreateBatch(context.Background(), 1, []models.ReminderChange{
		{Title: "stamped", ClientUpdatedAt: "2026-01-02T10:00:00Z"},
		{Title: "unstamped"},
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC), repo.rows["stamped"].ClientUpdatedAt)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), repo.rows["unstamped"].ClientUpdatedAt)
}

func TestReminderService_SyncAppliesChangesAndReturnsState(t *testing.T) {
	repo := newFakeReminderRepo()
	repo.rows["stale"] = &models.Reminder{ID: 7, UserID: 1, Title: "stale",
		ClientUpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	s, mock := setupReminderService(t, repo)
	serverNow := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return serverNow }
	mock.ExpectBegin()
	mock.ExpectCommit()

	out, err := s.Sync(context.Background(), 1, []models.ReminderChange{
		{Title: "stale", IsDeleted: true, ClientUpdatedAt: "2026-02-01T00:00:00Z"},
		{Title: "fresh", Content: "pick up keys", ClientUpdatedAt: "2026-02-15T00:00:00Z"},
	}, "2026-02-28T00:00:00Z")
	require.NoError(t, err)

	assert.Equal(t, []string{"stale"}, repo.deletes)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), repo.deletedAt["stale"])

	require.Len(t, out.Reminders, 1)
	assert.Equal(t, "fresh", out.Reminders[0].Title)
	assert.Equal(t, serverNow, out.ServerTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderService_SyncRollsBackOnRepoError(t *testing.T) {
	repo := newFakeReminderRepo()
	repo.deleteErr = common.ErrStorage

	s, mock := setupReminderService(t, repo)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := s.Sync(context.Background(), 1, []models.ReminderChange{
		{Title: "doomed", IsDeleted: true},
	}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderService_Delete(t *testing.T) {
	repo := newFakeReminderRepo()
	repo.rows["keep"] = &models.Reminder{ID: 3, UserID: 1, Title: "keep"}

	s, _ := setupReminderService(t, repo)

	require.NoError(t, s.Delete(context.Background(), 1, 3))
	assert.Empty(t, repo.rows)

	assert.ErrorIs(t, s.Delete(context.Background(), 1, 99), common.ErrNotFound)
}
