// Package session owns the locally persisted authentication state: the
// current user object and the bearer token.
package session

import (
	"context"
	"encoding/json"

	"github.com/georemind/georemind/internal/client/models"
	"github.com/georemind/georemind/internal/client/storage"
	"github.com/georemind/georemind/internal/logging"
)

// Manager reads and writes the session keys. The core only ever reads the
// session; writing happens on login/logout.
type Manager struct {
	store storage.Store
	log   logging.Logger
}

func NewManager(store storage.Store, log logging.Logger) *Manager {
	if log == nil {
		log = logging.Nop()
	}
	return &Manager{store: store, log: log}
}

// Current returns the persisted session. Missing or malformed user data
// degrades to the anonymous session (logged, never an error): offline use
// must keep working no matter what is on disk.
func (m *Manager) Current(ctx context.Context) models.Session {
	var s models.Session

	token, ok, err := m.store.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		m.log.Warn(ctx, "reading auth token failed", "error", err)
	} else if ok {
		s.Token = token
	}

	raw, ok, err := m.store.Get(ctx, storage.KeyCurrentUser)
	if err != nil {
		m.log.Warn(ctx, "reading current user failed", "error", err)
		return s
	}
	if !ok || raw == "" {
		return s
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.log.Warn(ctx, "current user record is malformed, treating as signed out")
		return s
	}
	s.User = &user
	return s
}

// Save persists the authenticated user and token.
func (m *Manager) Save(ctx context.Context, user models.User, token string) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, storage.KeyCurrentUser, string(encoded)); err != nil {
		return err
	}
	return m.store.Set(ctx, storage.KeyAuthToken, token)
}

// Clear removes the persisted session (logout). Reminder data stays.
func (m *Manager) Clear(ctx context.Context) error {
	if err := m.store.Remove(ctx, storage.KeyCurrentUser); err != nil {
		return err
	}
	return m.store.Remove(ctx, storage.KeyAuthToken)
}
