package session

import (
	"crypto/rand"
	"errors"

	"github.com/dmitrymomot/sessionkit/core/sessioncodec"
)

// Session is the request-scoped identity attached by the middleware.
// It comes in two variants distinguished by Key:
//
//   - guest: Key is nil, UserID is zero. The identifier exists purely for
//     client correlation (rate limiting, CSRF derivation) and is never
//     persisted server-side.
//   - user: Key is the client's current session secret and UserID owns the
//     session, backed by a persisted row validated by the Manager.
type Session struct {
	// ID is the opaque session identifier, sessioncodec.IDSize bytes.
	ID []byte

	// Key is the session secret for authenticated sessions, nil for guests.
	Key []byte

	// UserID is the owning user, zero for guests.
	UserID int64
}

// IsAuthenticated reports whether the session belongs to a user.
func (s Session) IsAuthenticated() bool {
	return s.UserID > 0 && s.Key != nil
}

// NewGuest creates a guest session with a fresh random identifier.
// Guest sessions are never persisted.
func NewGuest() (Session, error) {
	id, err := randomBytes(sessioncodec.IDSize)
	if err != nil {
		return Session{}, errors.Join(ErrKeyGeneration, err)
	}
	return Session{ID: id}, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
