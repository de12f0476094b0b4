package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/dmitrymomot/sessionkit/core/registration"
)

// RegistrationRepository is an in-process registration.Repository.
// Activation state is tracked in a set so tests can assert on it.
type RegistrationRepository struct {
	mu     sync.Mutex
	hashes map[int64][]byte
	active map[int64]bool
}

// NewRegistrationRepository creates an empty in-memory registration repository.
func NewRegistrationRepository() *RegistrationRepository {
	return &RegistrationRepository{
		hashes: make(map[int64][]byte),
		active: make(map[int64]bool),
	}
}

func (r *RegistrationRepository) Upsert(ctx context.Context, userID int64, keyHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hashes[userID] = bytes.Clone(keyHash)
	return nil
}

func (r *RegistrationRepository) Consume(ctx context.Context, userID int64) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, ok := r.hashes[userID]
	if !ok {
		return nil, registration.ErrKeyNotFound
	}
	delete(r.hashes, userID)
	return hash, nil
}

func (r *RegistrationRepository) Activate(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.active[userID] = true
	return nil
}

// IsActive reports whether the user was activated. Test helper.
func (r *RegistrationRepository) IsActive(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[userID]
}

// HasKey reports whether a key row exists for the user. Test helper.
func (r *RegistrationRepository) HasKey(userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.hashes[userID]
	return ok
}
