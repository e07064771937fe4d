// Package storage provides the durable key-value store backing the client.
// It knows nothing about reminders or sync; higher layers serialize their
// state to JSON strings under well-known keys.
package storage

import "context"

// Storage keys used by the client core.
const (
	KeyReminders   = "reminder"
	KeyLastSync    = "lastSync"
	KeyCurrentUser = "currentUser"
	KeyAuthToken   = "authToken"
)

// Store is the local persistence contract. Writes are all-or-nothing per
// key: a failed Set never leaves a partially written value behind.
type Store interface {
	// Get returns the value stored under key. The second return value is
	// false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set durably stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
