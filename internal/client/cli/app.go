package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/georemind/georemind/internal/client/api"
	"github.com/georemind/georemind/internal/client/config"
	"github.com/georemind/georemind/internal/client/monitor"
	"github.com/georemind/georemind/internal/client/reminders"
	"github.com/georemind/georemind/internal/client/services"
	"github.com/georemind/georemind/internal/client/session"
	"github.com/georemind/georemind/internal/client/storage"
	"github.com/georemind/georemind/internal/client/sync"
	"github.com/georemind/georemind/internal/logging"
)

// App wires the client core together and hosts the REPL state.
type App struct {
	config          *config.Config
	authService     services.AuthService
	reminderService services.ReminderService
	monitor         *monitor.Monitor
	states          chan monitor.State
	reader          *bufio.Reader
	closeDB         func() error
}

// NewApp opens the local database and assembles the service graph.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := storage.Open(ctx, c.DBPath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	logger := logging.NewJSON()
	store := storage.NewSQLiteStore(db)
	repo := reminders.NewRepository(store, logger)
	sessions := session.NewManager(store, logger)
	backend := api.NewHTTPClient(c.ServerBaseURL, c.RequestTimeout)
	engine := sync.NewEngine(store, repo, backend, sessions, logger)

	states := make(chan monitor.State, 4)

	return &App{
		config:          c,
		authService:     services.NewAuthService(backend, sessions, logger),
		reminderService: services.NewReminderService(repo, engine, backend, sessions, logger),
		monitor:         monitor.New(engine, sessions, states, logger),
		states:          states,
		reader:          bufio.NewReader(os.Stdin),
		closeDB:         db.Close,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.authService.CurrentSession(context.Background()).Authenticated()
}

func (a *App) getStatus() string {
	sess := a.authService.CurrentSession(context.Background())
	if sess.User == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", sess.User.Username)
}

// Run starts the background monitor, pushes the startup active event and
// hands control to the REPL. It blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.closeDB()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.monitor.Run(ctx)
	a.states <- monitor.StateActive

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
