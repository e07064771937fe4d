// Package reminders stores reminder rows in PostgreSQL. Rows are keyed by
// (user_id, title): a client change always addresses the user's reminder with
// that title, matching how clients reconcile records.
package reminders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georemind/georemind/internal/common"
	"github.com/georemind/georemind/internal/dbx"
	"github.com/georemind/georemind/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const reminderColumns = `id, user_id, title, content, latitude, longitude, radius, client_updated_at, created_at, updated_at`

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var rs []models.Reminder
	for rows.Next() {
		var rem models.Reminder
		if err := rows.Scan(&rem.ID, &rem.UserID, &rem.Title, &rem.Content,
			&rem.Latitude, &rem.Longitude, &rem.Radius,
			&rem.ClientUpdatedAt, &rem.CreatedAt, &rem.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		rs = append(rs, rem)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rs, nil
}

// Upsert inserts the reminder, or updates the user's reminder with the same
// title when the incoming change is at least as new. A stale change leaves
// the stored row untouched; the surviving row is returned either way.
func (r *PostgresRepository) Upsert(ctx context.Context, rem *models.Reminder) (*models.Reminder, error) {
	query :=
		`INSERT INTO reminders (user_id, title, content, latitude, longitude, radius, client_updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, title) DO UPDATE SET
		     content = excluded.content,
		     latitude = excluded.latitude,
		     longitude = excluded.longitude,
		     radius = excluded.radius,
		     client_updated_at = excluded.client_updated_at,
		     updated_at = now()
		 WHERE reminders.client_updated_at <= excluded.client_updated_at
		 RETURNING ` + reminderColumns

	stored := &models.Reminder{}
	err := r.db.QueryRowContext(ctx, query,
		rem.UserID, rem.Title, rem.Content, rem.Latitude, rem.Longitude, rem.Radius, rem.ClientUpdatedAt,
	).Scan(&stored.ID, &stored.UserID, &stored.Title, &stored.Content,
		&stored.Latitude, &stored.Longitude, &stored.Radius,
		&stored.ClientUpdatedAt, &stored.CreatedAt, &stored.UpdatedAt)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("db error: %w", err)
	}

	// Stale change: the conflict target won. Return the stored row.
	return r.getByTitle(ctx, rem.UserID, rem.Title)
}

func (r *PostgresRepository) getByTitle(ctx context.Context, userID int64, title string) (*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 AND title = $2`

	stored := &models.Reminder{}
	err := r.db.QueryRowContext(ctx, query, userID, title).Scan(
		&stored.ID, &stored.UserID, &stored.Title, &stored.Content,
		&stored.Latitude, &stored.Longitude, &stored.Radius,
		&stored.ClientUpdatedAt, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

// DeleteByTitle removes the user's reminder with the given title unless the
// stored row carries a newer client change than the tombstone.
func (r *PostgresRepository) DeleteByTitle(ctx context.Context, userID int64, title string, olderThan time.Time) error {
	query := `DELETE FROM reminders WHERE user_id = $1 AND title = $2 AND client_updated_at <= $3`

	if _, err := r.db.ExecContext(ctx, query, userID, title, olderThan); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteByID removes the user's reminder with the given id, reporting
// common.ErrNotFound when no such row belongs to the user.
func (r *PostgresRepository) DeleteByID(ctx context.Context, userID, id int64) error {
	query := `DELETE FROM reminders WHERE user_id = $1 AND id = $2`

	res, err := r.db.ExecContext(ctx, query, userID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
