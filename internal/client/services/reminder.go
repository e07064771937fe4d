package services

import (
	"context"

	"github.com/georemind/georemind/internal/client/api"
	"github.com/georemind/georemind/internal/client/models"
	"github.com/georemind/georemind/internal/client/reminders"
	"github.com/georemind/georemind/internal/client/session"
	"github.com/georemind/georemind/internal/client/sync"
	"github.com/georemind/georemind/internal/common"
	"github.com/georemind/georemind/internal/logging"
)

// ReminderService defines the reminder workflows for the CLI. Every write
// lands locally first; backend pushes are best effort and their failures are
// logged, never returned.
type ReminderService interface {
	ListAll(ctx context.Context) ([]models.Reminder, error)
	Create(ctx context.Context, rem models.Reminder) (models.Reminder, error)
	Update(ctx context.Context, id reminders.Identifier, patch models.Patch) (models.Reminder, error)
	Delete(ctx context.Context, id reminders.Identifier) ([]models.Reminder, error)
	Sync(ctx context.Context) sync.Result
}

type reminderService struct {
	repo     *reminders.Repository
	engine   *sync.Engine
	backend  api.API
	sessions *session.Manager
	log      logging.Logger
}

// NewReminderService constructs a ReminderService from the client core
// components.
func NewReminderService(repo *reminders.Repository, engine *sync.Engine, backend api.API, sessions *session.Manager, log logging.Logger) ReminderService {
	if log == nil {
		log = logging.Nop()
	}
	return &reminderService{repo: repo, engine: engine, backend: backend, sessions: sessions, log: log}
}

// ListAll returns the user's reminders. When a session is active it runs a
// sync pass first so the listing reflects the backend; a failed pass falls
// back to the local collection.
func (s *reminderService) ListAll(ctx context.Context) ([]models.Reminder, error) {
	sess := s.sessions.Current(ctx)
	if sess.Authenticated() {
		if res := s.engine.Sync(ctx, sess.UserKey()); res.Synced {
			return res.Reminders, nil
		}
	}
	return s.repo.List(ctx, sess.UserKey())
}

// Create stores the reminder locally, then, when a session is active, pushes
// the single record to the backend and links the returned server id back onto
// the stored record. A failed push leaves the record unsynced for the next
// sync pass.
func (s *reminderService) Create(ctx context.Context, rem models.Reminder) (models.Reminder, error) {
	sess := s.sessions.Current(ctx)
	userID := sess.UserKey()

	created, err := s.repo.Create(ctx, userID, rem)
	if err != nil {
		return models.Reminder{}, err
	}

	if !sess.Authenticated() {
		return created, nil
	}

	pushed, err := s.backend.CreateReminders(ctx, sess.Token, []models.WireReminder{created.Wire()})
	if err != nil || len(pushed) == 0 {
		s.log.Warn(ctx, "pushing new reminder failed, will retry on next sync",
			"user", userID, "localId", created.LocalID, "error", err)
		return created, nil
	}

	linked, err := s.linkServerRecord(ctx, userID, created.LocalID, pushed[0].BackendID())
	if err != nil {
		s.log.Warn(ctx, "linking pushed reminder failed",
			"user", userID, "localId", created.LocalID, "error", err)
		return created, nil
	}
	return linked, nil
}

// Update applies the patch locally and then runs a best-effort sync pass.
func (s *reminderService) Update(ctx context.Context, id reminders.Identifier, patch models.Patch) (models.Reminder, error) {
	sess := s.sessions.Current(ctx)
	userID := sess.UserKey()

	updated, err := s.repo.Update(ctx, userID, id, patch)
	if err != nil {
		return models.Reminder{}, err
	}

	if sess.Authenticated() {
		if res := s.engine.Sync(ctx, userID); res.Err != nil {
			s.log.Warn(ctx, "post-update sync failed", "user", userID, "error", res.Err)
		}
	}
	return updated, nil
}

// Delete removes the record locally and, when it carried a server id,
// best-effort deletes it on the backend too. A sync pass follows, ordered
// after the targeted delete so a record the backend already dropped is not
// merged back in. The remaining collection is returned; backend failures are
// logged only.
func (s *reminderService) Delete(ctx context.Context, id reminders.Identifier) ([]models.Reminder, error) {
	sess := s.sessions.Current(ctx)
	userID := sess.UserKey()

	target, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	remaining, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if sess.Authenticated() {
		if target.BackendID() != 0 {
			if err := s.backend.DeleteReminder(ctx, sess.Token, target.BackendID()); err != nil {
				s.log.Warn(ctx, "backend delete failed, record removed locally",
					"user", userID, "serverId", target.BackendID(), "error", err)
			}
		}
		if res := s.engine.Sync(ctx, userID); res.Synced {
			remaining = res.Reminders
		} else if res.Err != nil {
			s.log.Warn(ctx, "post-delete sync failed", "user", userID, "error", res.Err)
		}
	}
	return remaining, nil
}

// Sync runs one sync pass for the current session's user.
func (s *reminderService) Sync(ctx context.Context) sync.Result {
	sess := s.sessions.Current(ctx)
	return s.engine.Sync(ctx, sess.UserKey())
}

// linkServerRecord stamps the backend id onto the record with the given
// localId and marks it synced.
func (s *reminderService) linkServerRecord(ctx context.Context, userID, localID string, serverID int64) (models.Reminder, error) {
	unlock := s.repo.LockUser(userID)
	defer unlock()

	rs, err := s.repo.LoadCollection(ctx, userID)
	if err != nil {
		return models.Reminder{}, err
	}

	for i := range rs {
		if rs[i].LocalID == localID {
			rs[i].ServerID = serverID
			rs[i].Synced = true
			if _, err := s.repo.SaveCollection(ctx, userID, rs); err != nil {
				return models.Reminder{}, err
			}
			return rs[i], nil
		}
	}
	return models.Reminder{}, common.ErrNotFound
}
