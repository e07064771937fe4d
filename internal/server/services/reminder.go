package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/georemind/georemind/internal/dbx"
	"github.com/georemind/georemind/internal/logging"
	"github.com/georemind/georemind/internal/server/models"
	"github.com/georemind/georemind/internal/server/repositories/repomanager"
)

// ReminderService owns the reminder endpoints' logic: listing, batch upserts
// and the sync exchange.
type ReminderService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
	now         func() time.Time
}

func NewReminderService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ReminderService {
	if log == nil {
		log = logging.Nop()
	}
	return &ReminderService{db: db, repomanager: m, log: log, now: time.Now}
}

// List returns the user's reminders.
func (s *ReminderService) List(ctx context.Context, userID int64) ([]models.Reminder, error) {
	return s.repomanager.Reminders(s.db).ListByUser(ctx, userID)
}

// CreateBatch upserts each submitted change for the user in one transaction
// and returns the surviving rows in submission order. Tombstoned changes are
// ignored here; deletion flows through Sync or Delete.
func (s *ReminderService) CreateBatch(ctx context.Context, userID int64, changes []models.ReminderChange) ([]models.Reminder, error) {
	now := s.now()
	stored := make([]models.Reminder, 0, len(changes))

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reminders(tx)

		for _, c := range changes {
			if c.IsDeleted {
				continue
			}
			row, err := repo.Upsert(ctx, &models.Reminder{
				UserID:          userID,
				Title:           c.Title,
				Content:         c.Content,
				Latitude:        c.Latitude,
				Longitude:       c.Longitude,
				Radius:          c.Radius,
				ClientUpdatedAt: c.ClientTime(now),
			})
			if err != nil {
				return err
			}
			stored = append(stored, *row)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	return stored, nil
}

// SyncOutcome is the reply to a sync exchange: the user's full surviving
// collection and the server timestamp clients store as their next watermark.
type SyncOutcome struct {
	Reminders  []models.Reminder
	ServerTime time.Time
}

// Sync applies the client's change set and returns the authoritative state.
// Tombstones delete the matching row unless a newer change is stored; live
// changes upsert with newer clientUpdatedAt winning per title. The whole
// exchange runs in one transaction so a half-applied batch never becomes
// visible. The reply always carries the full collection, so lastSync (the
// client's previous serverTime) only narrates the exchange in the log.
func (s *ReminderService) Sync(ctx context.Context, userID int64, changes []models.ReminderChange, lastSync string) (*SyncOutcome, error) {
	now := s.now()

	var rs []models.Reminder
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reminders(tx)

		for _, c := range changes {
			ct := c.ClientTime(now)
			if c.IsDeleted {
				if err := repo.DeleteByTitle(ctx, userID, c.Title, ct); err != nil {
					return err
				}
				continue
			}
			if _, err := repo.Upsert(ctx, &models.Reminder{
				UserID:          userID,
				Title:           c.Title,
				Content:         c.Content,
				Latitude:        c.Latitude,
				Longitude:       c.Longitude,
				Radius:          c.Radius,
				ClientUpdatedAt: ct,
			}); err != nil {
				return err
			}
		}

		var err error
		rs, err = repo.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sync: %w", err)
	}

	s.log.Info(ctx, "sync applied", "user", userID, "changes", len(changes), "stored", len(rs), "lastSync", lastSync)
	return &SyncOutcome{Reminders: rs, ServerTime: now.UTC()}, nil
}

// Delete removes one reminder by id. Missing rows surface as
// common.ErrNotFound.
func (s *ReminderService) Delete(ctx context.Context, userID, id int64) error {
	return s.repomanager.Reminders(s.db).DeleteByID(ctx, userID, id)
}
