package repomanager

import (
	"context"
	"database/sql"

	"github.com/georemind/georemind/internal/dbx"
	"github.com/georemind/georemind/internal/server/repositories/reminders"
	"github.com/georemind/georemind/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so
// services can run several repository calls inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Reminders(db dbx.DBTX) reminders.Repository
}
