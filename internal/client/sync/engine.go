// Package sync reconciles a user's local reminder collection against the
// backend. The backend is a synchronized mirror, not an authority: every
// failure leaves local data untouched and is reported as a soft result.
package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/georemind/georemind/internal/client/api"
	"github.com/georemind/georemind/internal/client/models"
	"github.com/georemind/georemind/internal/client/reminders"
	"github.com/georemind/georemind/internal/client/session"
	"github.com/georemind/georemind/internal/client/storage"
	"github.com/georemind/georemind/internal/logging"
)

// Result reports the outcome of one sync pass. A pass either completed
// (Synced), was skipped because the preconditions do not hold (Skipped), or
// failed recoverably (Err set, local state untouched). Network problems are
// never surfaced as hard errors.
type Result struct {
	Synced     bool
	Skipped    bool
	Reminders  []models.Reminder
	ServerTime string
	Err        error
}

// Engine owns the reconciliation algorithm and the per-user last-sync
// watermark.
type Engine struct {
	store    storage.Store
	repo     *reminders.Repository
	backend  api.API
	sessions *session.Manager
	log      logging.Logger

	newLocalID func() string
}

// NewEngine constructs a sync engine.
func NewEngine(store storage.Store, repo *reminders.Repository, backend api.API, sessions *session.Manager, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{
		store:      store,
		repo:       repo,
		backend:    backend,
		sessions:   sessions,
		log:        log,
		newLocalID: models.NewLocalID,
	}
}

// Sync pushes the user's full local change set to the backend and merges the
// authoritative response back into local storage.
//
// Preconditions: a signed-in user and a bearer token. Their absence is not an
// error; the pass is reported as skipped.
func (e *Engine) Sync(ctx context.Context, userID string) Result {
	sess := e.sessions.Current(ctx)
	if !sess.Authenticated() {
		e.log.Debug(ctx, "sync skipped, no authenticated session", "user", userID)
		return Result{Skipped: true}
	}

	unlock := e.repo.LockUser(userID)
	defer unlock()

	local, err := e.repo.LoadCollection(ctx, userID)
	if err != nil {
		return Result{Err: err}
	}

	lastSync, err := e.LastSync(ctx, userID)
	if err != nil {
		// A lost watermark only widens the server's change window.
		e.log.Warn(ctx, "reading last-sync watermark failed", "user", userID, "error", err)
		lastSync = ""
	}

	wire := make([]models.WireReminder, 0, len(local))
	for _, r := range local {
		wire = append(wire, r.Wire())
	}

	e.log.Info(ctx, "starting sync", "user", userID, "local", len(local), "lastSync", lastSync)

	res, err := e.backend.SyncReminders(ctx, sess.Token, wire, lastSync)
	if err != nil {
		e.log.Warn(ctx, "sync request failed, keeping local state", "user", userID, "error", err)
		return Result{Err: err, Reminders: local}
	}

	merged := merge(local, res.Data, e.newLocalID)

	saved, err := e.repo.SaveCollection(ctx, userID, merged)
	if err != nil {
		return Result{Err: err}
	}

	if err := e.setLastSync(ctx, userID, res.ServerTime); err != nil {
		e.log.Warn(ctx, "storing last-sync watermark failed", "user", userID, "error", err)
	}

	e.log.Info(ctx, "sync completed", "user", userID, "merged", len(saved), "serverTime", res.ServerTime)
	return Result{Synced: true, Reminders: saved, ServerTime: res.ServerTime}
}

// LastSync returns the user's last successful sync time, or "" if the user
// has never synced.
func (e *Engine) LastSync(ctx context.Context, userID string) (string, error) {
	value, ok, err := e.store.Get(ctx, storage.KeyLastSync)
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return "", nil
	}

	var times map[string]*string
	if err := json.Unmarshal([]byte(value), &times); err != nil {
		e.log.Warn(ctx, "last-sync store is malformed, treating as never synced")
		return "", nil
	}
	if t := times[userID]; t != nil {
		return *t, nil
	}
	return "", nil
}

func (e *Engine) setLastSync(ctx context.Context, userID, serverTime string) error {
	times := map[string]*string{}

	value, ok, err := e.store.Get(ctx, storage.KeyLastSync)
	if err != nil {
		return err
	}
	if ok && value != "" {
		if err := json.Unmarshal([]byte(value), &times); err != nil {
			times = map[string]*string{}
		}
	}

	times[userID] = &serverTime

	encoded, err := json.Marshal(times)
	if err != nil {
		return fmt.Errorf("encode last-sync times: %w", err)
	}
	return e.store.Set(ctx, storage.KeyLastSync, string(encoded))
}

// merge reconciles the server's authoritative list with the local
// collection:
//
//   - each server record adopts the localId of the local record it
//     corresponds to (linked by backend id, else by title) and is marked
//     synced;
//   - server records with no local counterpart get a freshly minted localId;
//   - local records with no server counterpart (created offline, push not
//     yet confirmed) are preserved unchanged and appended.
//
// Applying merge twice against the same server response yields the same
// collection, and a localId never changes once assigned.
//
// The title linkage will unify two distinct reminders that share a title;
// known limitation carried over from the shipped behavior.
func merge(local, server []models.Reminder, mintLocalID func() string) []models.Reminder {
	merged := make([]models.Reminder, 0, len(server)+len(local))
	claimed := make([]bool, len(local))

	for _, sr := range server {
		idx := -1

		if sid := sr.BackendID(); sid != 0 {
			for i := range local {
				if !claimed[i] && local[i].BackendID() == sid {
					idx = i
					break
				}
			}
		}
		if idx == -1 {
			for i := range local {
				if !claimed[i] && local[i].Title == sr.Title {
					idx = i
					break
				}
			}
		}

		m := sr
		m.ServerID = sr.BackendID()
		if idx >= 0 {
			claimed[idx] = true
			m.LocalID = local[idx].LocalID
		} else {
			m.LocalID = mintLocalID()
		}
		m.Synced = true
		merged = append(merged, m)
	}

	for i := range local {
		if !claimed[i] {
			merged = append(merged, local[i])
		}
	}

	return merged
}
