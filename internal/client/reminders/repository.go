// Package reminders implements the client's reminder collection: CRUD over
// the per-user collections persisted in local storage, and the identifier
// resolution used to address single records.
package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/georemind/georemind/internal/client/models"
	"github.com/georemind/georemind/internal/client/storage"
	"github.com/georemind/georemind/internal/logging"
)

// Repository owns the "reminder" storage key: a JSON mapping from user key to
// that user's ordered reminder list. All operations are read-modify-write of
// the whole mapping; a per-user lock keeps one mutation in flight per user.
//
// Local storage is the source of truth. Nothing here talks to the network;
// the sync engine reconciles against the backend through LoadCollection and
// SaveCollection.
type Repository struct {
	store storage.Store
	log   logging.Logger
	locks *keyedMutex

	// writeMu serializes read-modify-write cycles of the shared document
	// across users; without it two users' concurrent saves would overwrite
	// each other's sub-collections.
	writeMu sync.Mutex

	now        func() string
	newLocalID func() string
}

// NewRepository constructs a Repository over the given store.
func NewRepository(store storage.Store, log logging.Logger) *Repository {
	if log == nil {
		log = logging.Nop()
	}
	return &Repository{
		store:      store,
		log:        log,
		locks:      newKeyedMutex(),
		now:        models.Now,
		newLocalID: models.NewLocalID,
	}
}

// LockUser acquires the per-user mutation lock and returns its release
// function. The sync engine shares this lock so a sync pass and a CRUD call
// for the same user never interleave their read-modify-write cycles.
func (r *Repository) LockUser(userID string) func() {
	return r.locks.lock(userID)
}

// List returns the user's current local collection, or an empty slice when
// none exists. The one-time legacy-array migration happens transparently on
// first read.
func (r *Repository) List(ctx context.Context, userID string) ([]models.Reminder, error) {
	unlock := r.LockUser(userID)
	defer unlock()

	return r.LoadCollection(ctx, userID)
}

// Create assigns identity and lifecycle metadata to rem, appends it to the
// user's collection and persists. The stored record is returned.
func (r *Repository) Create(ctx context.Context, userID string, rem models.Reminder) (models.Reminder, error) {
	unlock := r.LockUser(userID)
	defer unlock()

	rs, err := r.LoadCollection(ctx, userID)
	if err != nil {
		return models.Reminder{}, err
	}

	if rem.LocalID == "" {
		rem.LocalID = r.newLocalID()
	}
	now := r.now()
	rem.CreatedAt = now
	rem.UpdatedAt = now
	rem.IsDeleted = false
	rem.Synced = false

	rs = append(rs, rem)
	if _, err := r.SaveCollection(ctx, userID, rs); err != nil {
		return models.Reminder{}, err
	}

	r.log.Info(ctx, "reminder created", "user", userID, "localId", rem.LocalID)
	return rem, nil
}

// Update resolves id, merges patch onto the record, bumps updated_at and
// clears the synced flag. Returns the merged record, or common.ErrNotFound
// without touching storage when the identifier does not resolve.
func (r *Repository) Update(ctx context.Context, userID string, id Identifier, patch models.Patch) (models.Reminder, error) {
	unlock := r.LockUser(userID)
	defer unlock()

	rs, err := r.LoadCollection(ctx, userID)
	if err != nil {
		return models.Reminder{}, err
	}

	i, err := id.Resolve(rs)
	if err != nil {
		return models.Reminder{}, err
	}

	patch.Apply(&rs[i])
	rs[i].UpdatedAt = r.now()
	rs[i].Synced = false

	if _, err := r.SaveCollection(ctx, userID, rs); err != nil {
		return models.Reminder{}, err
	}

	r.log.Info(ctx, "reminder updated", "user", userID, "localId", rs[i].LocalID)
	return rs[i], nil
}

// Delete resolves id, removes the record from the collection and persists.
// Local deletes are hard: the record is spliced out, not tombstoned. The
// remaining collection is returned.
func (r *Repository) Delete(ctx context.Context, userID string, id Identifier) ([]models.Reminder, error) {
	unlock := r.LockUser(userID)
	defer unlock()

	rs, err := r.LoadCollection(ctx, userID)
	if err != nil {
		return nil, err
	}

	i, err := id.Resolve(rs)
	if err != nil {
		return nil, err
	}

	removed := rs[i]
	rs = append(rs[:i], rs[i+1:]...)

	saved, err := r.SaveCollection(ctx, userID, rs)
	if err != nil {
		return nil, err
	}

	r.log.Info(ctx, "reminder deleted", "user", userID, "localId", removed.LocalID)
	return saved, nil
}

// Get returns the record an identifier resolves to without mutating
// anything. Used by the service layer to learn the backend id of a record
// it is about to delete.
func (r *Repository) Get(ctx context.Context, userID string, id Identifier) (models.Reminder, error) {
	unlock := r.LockUser(userID)
	defer unlock()

	rs, err := r.LoadCollection(ctx, userID)
	if err != nil {
		return models.Reminder{}, err
	}
	i, err := id.Resolve(rs)
	if err != nil {
		return models.Reminder{}, err
	}
	return rs[i], nil
}

// LoadCollection reads the user's collection from storage. Callers that are
// not already holding the user lock should go through List.
func (r *Repository) LoadCollection(ctx context.Context, userID string) ([]models.Reminder, error) {
	all, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	rs := all[userID]
	if rs == nil {
		rs = []models.Reminder{}
	}
	return rs, nil
}

// SaveCollection replaces the user's collection in storage. Records missing
// lifecycle metadata are completed first: absent timestamps get the current
// time, absent localIds are minted, absent synced flags default to false
// (the stored JSON shape never loses a localId this way, no matter which
// code path wrote the record).
func (r *Repository) SaveCollection(ctx context.Context, userID string, rs []models.Reminder) ([]models.Reminder, error) {
	for i := range rs {
		if rs[i].CreatedAt == "" {
			rs[i].CreatedAt = r.now()
		}
		if rs[i].UpdatedAt == "" {
			rs[i].UpdatedAt = rs[i].CreatedAt
		}
		if rs[i].LocalID == "" {
			rs[i].LocalID = r.newLocalID()
		}
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	all, err := r.loadAllLocked(ctx)
	if err != nil {
		return nil, err
	}
	all[userID] = rs

	encoded, err := json.Marshal(all)
	if err != nil {
		return nil, fmt.Errorf("encode reminder collections: %w", err)
	}
	if err := r.store.Set(ctx, storage.KeyReminders, string(encoded)); err != nil {
		return nil, err
	}
	return rs, nil
}

// loadAll reads the full user→collection mapping. It takes writeMu because
// the legacy migration inside loadAllLocked may write the shared document;
// two users' concurrent first reads must not race that write against a
// concurrent save.
func (r *Repository) loadAll(ctx context.Context) (map[string][]models.Reminder, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	return r.loadAllLocked(ctx)
}

// loadAllLocked reads the mapping, migrating the legacy bare array format
// (pre-multi-user installs stored one plain list) into {"unsigned": [...]}
// on first contact. Malformed JSON is a degraded read: logged, treated as
// empty, never fatal. Callers must hold writeMu.
func (r *Repository) loadAllLocked(ctx context.Context) (map[string][]models.Reminder, error) {
	value, ok, err := r.store.Get(ctx, storage.KeyReminders)
	if err != nil {
		return nil, err
	}
	if !ok || value == "" {
		return map[string][]models.Reminder{}, nil
	}

	var all map[string][]models.Reminder
	if err := json.Unmarshal([]byte(value), &all); err == nil {
		return all, nil
	}

	var legacy []models.Reminder
	if err := json.Unmarshal([]byte(value), &legacy); err == nil {
		migrated := map[string][]models.Reminder{models.UnsignedUser: legacy}
		encoded, err := json.Marshal(migrated)
		if err != nil {
			return nil, fmt.Errorf("encode migrated collections: %w", err)
		}
		if err := r.store.Set(ctx, storage.KeyReminders, string(encoded)); err != nil {
			return nil, err
		}
		r.log.Info(ctx, "migrated legacy reminder store", "count", len(legacy))
		return migrated, nil
	}

	r.log.Warn(ctx, "reminder store is malformed, treating as empty")
	return map[string][]models.Reminder{}, nil
}
