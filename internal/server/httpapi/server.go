// Package httpapi exposes the reminder backend as a JSON REST API:
// registration and login are open, everything under /api/reminders requires a
// bearer token.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/georemind/georemind/internal/logging"
	"github.com/georemind/georemind/internal/server/models"
	"github.com/georemind/georemind/internal/server/services"
)

// UserAPI is the account surface the handlers depend on. The concrete
// implementation is services.UserService.
type UserAPI interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Authenticate(tokenString string) (int64, error)
}

// ReminderAPI is the reminder surface the handlers depend on. The concrete
// implementation is services.ReminderService.
type ReminderAPI interface {
	List(ctx context.Context, userID int64) ([]models.Reminder, error)
	CreateBatch(ctx context.Context, userID int64, changes []models.ReminderChange) ([]models.Reminder, error)
	Sync(ctx context.Context, userID int64, changes []models.ReminderChange, lastSync string) (*services.SyncOutcome, error)
	Delete(ctx context.Context, userID, id int64) error
}

// Server hosts the REST API.
type Server struct {
	addr   string
	router *chi.Mux
	log    logging.Logger
}

// NewServer assembles the router with its middleware stack and routes.
func NewServer(addr string, userAPI UserAPI, reminderAPI ReminderAPI, log logging.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}

	h := &handlers{users: userAPI, reminders: reminderAPI, log: log}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)

		r.Route("/reminders", func(r chi.Router) {
			r.Use(authMiddleware(userAPI, log))
			r.Get("/", h.listReminders)
			r.Post("/", h.createReminders)
			r.Post("/sync", h.syncReminders)
			r.Delete("/{id}", h.deleteReminder)
		})
	})

	return &Server{addr: addr, router: r, log: log}
}

// Handler exposes the assembled router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
