package registration

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"github.com/dmitrymomot/sessionkit/pkg/timingsafe"
)

// KeySize is the byte length of a registration key.
const KeySize = 18

// Service issues and verifies one-time registration keys.
//
// Keys are random bytes handed to the user out of band (the verification
// link); the store only ever holds their SHA-256 hash. A key is consumed
// atomically on its first verification attempt — the row is deleted before
// the hashes are compared, so even a failed attempt burns it and closes the
// re-use window a compare-then-delete ordering would leave open. Issue is the
// recovery path for a burned key.
type Service struct {
	repo Repository
}

// Repository defines persistence for registration keys.
type Repository interface {
	// Upsert stores keyHash for userID, replacing any previous key.
	Upsert(ctx context.Context, userID int64, keyHash []byte) error

	// Consume atomically deletes and returns the stored hash for userID,
	// or ErrKeyNotFound when no key exists.
	Consume(ctx context.Context, userID int64) ([]byte, error)

	// Activate marks the user's account active.
	Activate(ctx context.Context, userID int64) error
}

// NewService creates a registration key service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("registration: repository is required")
	}
	return &Service{repo: repo}, nil
}

// Issue generates a fresh key for userID, stores its hash, and returns the
// plaintext key for delivery. Re-issuing replaces any outstanding key.
func (s *Service) Issue(ctx context.Context, userID int64) ([]byte, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrKeyGeneration, err)
	}

	if err := s.repo.Upsert(ctx, userID, hashKey(key)); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return key, nil
}

// Verify consumes the user's registration key and, when the presented key
// matches, activates the account.
//
// The stored hash is deleted before comparison; a mismatch therefore burns
// the key. A wrong-length key is rejected up front without touching the
// store, since it can only be a mangled link, not a typo inside a valid one.
func (s *Service) Verify(ctx context.Context, userID int64, key []byte) error {
	if len(key) != KeySize {
		return ErrKeyInvalid
	}

	expectedHash, err := s.repo.Consume(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return ErrKeyInvalid
		}
		return errors.Join(ErrStoreUnavailable, err)
	}

	if !timingsafe.Equal(expectedHash, hashKey(key)) {
		return ErrKeyInvalid
	}

	if err := s.repo.Activate(ctx, userID); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}

	return nil
}

func hashKey(key []byte) []byte {
	h := sha256.Sum256(key)
	return h[:]
}
