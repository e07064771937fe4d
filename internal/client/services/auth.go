// Package services contains the application services of the reminder client:
// account authentication and the reminder workflows that combine local writes
// with best-effort backend pushes.
package services

import (
	"context"

	"github.com/georemind/georemind/internal/client/api"
	"github.com/georemind/georemind/internal/client/models"
	"github.com/georemind/georemind/internal/client/session"
	"github.com/georemind/georemind/internal/logging"
)

// AuthService defines the account operations for the CLI.
//
// Contract:
//   - Login: authenticate against the backend and persist the session.
//   - Register: create the account, then log in with the same credentials.
//   - Logout: clear the persisted session; local reminder data stays.
//   - CurrentSession: the persisted session, anonymous when signed out.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username, password string) (models.Session, error)
	Register(ctx context.Context, username, password string) (models.Session, error)
	Logout(ctx context.Context) error
	CurrentSession(ctx context.Context) models.Session
}

// authService is the concrete AuthService backed by the REST client and the
// local session store.
type authService struct {
	backend  api.API
	sessions *session.Manager
	log      logging.Logger
}

// NewAuthService constructs an AuthService bound to the given backend and
// session manager.
func NewAuthService(backend api.API, sessions *session.Manager, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{backend: backend, sessions: sessions, log: log}
}

// Login authenticates against the backend and persists the returned user and
// token so the session survives restarts.
func (a *authService) Login(ctx context.Context, username, password string) (models.Session, error) {
	res, err := a.backend.Login(ctx, username, password)
	if err != nil {
		return models.Session{}, err
	}

	if err := a.sessions.Save(ctx, res.User, res.Token); err != nil {
		return models.Session{}, err
	}

	a.log.Info(ctx, "logged in", "user", res.User.Key())
	return models.Session{User: &res.User, Token: res.Token}, nil
}

// Register creates the account and immediately logs in with the same
// credentials.
func (a *authService) Register(ctx context.Context, username, password string) (models.Session, error) {
	if err := a.backend.Register(ctx, username, password); err != nil {
		return models.Session{}, err
	}
	return a.Login(ctx, username, password)
}

// Logout clears the persisted session. Reminder collections are kept so an
// account can sign back in without losing offline edits.
func (a *authService) Logout(ctx context.Context) error {
	return a.sessions.Clear(ctx)
}

func (a *authService) CurrentSession(ctx context.Context) models.Session {
	return a.sessions.Current(ctx)
}
