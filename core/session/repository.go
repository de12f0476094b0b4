package session

import (
	"context"
	"time"
)

// Record is the persisted form of an authenticated session.
type Record struct {
	// ID uniquely keys the row; at most one record exists per identifier.
	ID []byte

	// Key is the current session key.
	Key []byte

	// NextKey is the pending rotation key, nil when no rotation is in flight.
	NextKey []byte

	// UserID owns the session.
	UserID int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository defines the persistence contract for authenticated sessions.
//
// Implementations must make PromoteNextKey a single atomic compare-and-swap:
// concurrent rotation, confirmation, and fork-detection transitions for the
// same id are serialized by the backing store's row-level atomicity, not by
// application locks.
type Repository interface {
	// Insert stores a new session record. The id must not already exist.
	Insert(ctx context.Context, rec Record) error

	// Get returns the record for id, or ErrNotFound.
	Get(ctx context.Context, id []byte) (*Record, error)

	// SetNextKey stores nextKey as the pending rotation key, but only when no
	// pending key is currently set, leaving the current key untouched. The
	// guard must be atomic with the write: concurrent stale presentations may
	// issue at most one pending key between confirmations. Returns false when
	// the guard did not hold (a pending key already exists, or the row is
	// gone). Must not bump UpdatedAt: the staleness clock keeps running until
	// the client confirms the new key.
	SetNextKey(ctx context.Context, id, nextKey []byte) (bool, error)

	// PromoteNextKey atomically makes nextKey the current key and clears the
	// pending slot, but only if the stored pending key equals nextKey.
	// Returns false when the guard did not match (a concurrent transition won).
	PromoteNextKey(ctx context.Context, id, nextKey []byte) (bool, error)

	// Delete removes the record. Deleting an absent id is not an error.
	Delete(ctx context.Context, id []byte) error

	// DeleteExpired removes records created more than lifetime ago and
	// returns the number of rows removed.
	DeleteExpired(ctx context.Context, lifetime time.Duration) (int64, error)
}
