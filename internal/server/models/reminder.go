package models

import "time"

// Reminder is a stored reminder row, scoped to one user.
type Reminder struct {
	ID              int64
	UserID          int64
	Title           string
	Content         string
	Latitude        float64
	Longitude       float64
	Radius          float64
	ClientUpdatedAt time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ReminderChange is the change record clients submit on create and sync. The
// timestamp is an ISO-8601 string as sent on the wire; parse failures fall
// back to the server clock.
type ReminderChange struct {
	Title           string  `json:"title"`
	Content         string  `json:"content"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Radius          float64 `json:"radius"`
	ClientUpdatedAt string  `json:"clientUpdatedAt"`
	IsDeleted       bool    `json:"isDeleted"`
}

// ClientTime parses the change's clientUpdatedAt, substituting now for absent
// or malformed values.
func (c ReminderChange) ClientTime(now time.Time) time.Time {
	if c.ClientUpdatedAt == "" {
		return now
	}
	t, err := time.Parse(time.RFC3339, c.ClientUpdatedAt)
	if err != nil {
		return now
	}
	return t
}

// ReminderJSON is the response shape clients consume.
type ReminderJSON struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// JSON converts the row into its response shape.
func (r Reminder) JSON() ReminderJSON {
	return ReminderJSON{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Radius:    r.Radius,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
