package reminders

import (
	"context"
	"time"

	"github.com/georemind/georemind/internal/server/models"
)

type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]models.Reminder, error)
	Upsert(ctx context.Context, rem *models.Reminder) (*models.Reminder, error)
	DeleteByTitle(ctx context.Context, userID int64, title string, olderThan time.Time) error
	DeleteByID(ctx context.Context, userID, id int64) error
}
