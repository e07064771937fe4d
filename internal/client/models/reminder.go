// Package models defines the reminder entity and the shapes it takes in
// local storage and on the wire.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalIDPrefix marks client-generated reminder identifiers.
const LocalIDPrefix = "local_"

// Reminder is a titled, geofenced note with a center point and trigger
// radius. The JSON tags match the shape persisted under the "reminder"
// storage key, which in turn matches what the backend returns, so one struct
// serves both.
//
// Identity: LocalID is assigned client-side at creation and never changes for
// the lifetime of the record on this device. ServerID (mirrored from the
// backend's ID after a confirmed round-trip) is zero until the record has been
// accepted server-side. ID carries the backend's own identifier on records
// received from the server.
type Reminder struct {
	LocalID   string  `json:"localId,omitempty"`
	ServerID  int64   `json:"serverId,omitempty"`
	ID        int64   `json:"id,omitempty"`
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Radius    float64 `json:"radius"`
	CreatedAt string  `json:"created_at,omitempty"`
	UpdatedAt string  `json:"updated_at,omitempty"`
	IsDeleted bool    `json:"isDeleted"`
	Synced    bool    `json:"synced"`
}

// BackendID returns the server-side identifier of the reminder, preferring
// the reconciled ServerID over a raw ID, or 0 when the record has never been
// seen by the backend.
func (r Reminder) BackendID() int64 {
	if r.ServerID != 0 {
		return r.ServerID
	}
	return r.ID
}

// Wire converts the reminder into the change record submitted to the backend
// sync and create endpoints.
func (r Reminder) Wire() WireReminder {
	updatedAt := r.UpdatedAt
	if updatedAt == "" {
		updatedAt = r.CreatedAt
	}
	return WireReminder{
		Title:           r.Title,
		Content:         r.Content,
		Latitude:        r.Latitude,
		Longitude:       r.Longitude,
		Radius:          r.Radius,
		ClientUpdatedAt: updatedAt,
		IsDeleted:       r.IsDeleted,
	}
}

// WireReminder is the backend's change-record format. Timestamps are ISO-8601
// strings; coordinates and radius are always floating point.
type WireReminder struct {
	Title           string  `json:"title"`
	Content         string  `json:"content"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Radius          float64 `json:"radius"`
	ClientUpdatedAt string  `json:"clientUpdatedAt"`
	IsDeleted       bool    `json:"isDeleted"`
}

// NewLocalID generates a client-side reminder identifier of the form
// local_<unix-ms>_<random>.
func NewLocalID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s%d_%s", LocalIDPrefix, time.Now().UnixMilli(), random)
}

// IsLocalID reports whether s looks like a client-generated identifier.
func IsLocalID(s string) bool {
	return strings.HasPrefix(s, LocalIDPrefix)
}

// Now returns the current time in the ISO-8601 form stamped onto reminders.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Patch is a partial reminder used by update operations. Nil fields are left
// untouched; the merge is shallow and last-write-wins.
type Patch struct {
	Title     *string
	Content   *string
	Latitude  *float64
	Longitude *float64
	Radius    *float64
}

// Apply merges the patch onto r.
func (p Patch) Apply(r *Reminder) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Content != nil {
		r.Content = *p.Content
	}
	if p.Latitude != nil {
		r.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		r.Longitude = *p.Longitude
	}
	if p.Radius != nil {
		r.Radius = *p.Radius
	}
}
