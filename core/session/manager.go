package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/sessionkit/core/sessioncodec"
	"github.com/dmitrymomot/sessionkit/pkg/timingsafe"
)

// Result is the outcome of validating an inbound cookie.
// Session is nil when the cookie did not resolve to a session; Modified
// signals that the client must be handed a fresh cookie for this session.
type Result struct {
	Modified bool
	Session  *Session
}

// Manager is the authority for validating, rotating, and persisting user
// sessions. Guest sessions pass through it unverified since they carry no
// authority.
type Manager struct {
	repo       Repository
	codec      *sessioncodec.Codec
	lifetime   time.Duration
	rekeyAfter time.Duration
}

// NewManager creates a session manager.
//
// lifetime bounds the total age of a user session measured from creation;
// rekeyAfter is how long a session key stays fresh before a validated request
// triggers rotation. Both must be positive and rekeyAfter must not exceed
// lifetime.
func NewManager(repo Repository, codec *sessioncodec.Codec, lifetime, rekeyAfter time.Duration) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("session: repository is required")
	}
	if codec == nil {
		return nil, errors.New("session: codec is required")
	}
	if lifetime <= 0 || rekeyAfter <= 0 {
		return nil, errors.New("session: lifetime and rekey interval must be positive")
	}
	if rekeyAfter > lifetime {
		return nil, errors.New("session: rekey interval must not exceed lifetime")
	}

	return &Manager{
		repo:       repo,
		codec:      codec,
		lifetime:   lifetime,
		rekeyAfter: rekeyAfter,
	}, nil
}

// ReadCookie validates an inbound cookie value against persisted state.
//
// The possible outcomes per attempt are mutually exclusive:
//
//   - malformed cookie, unknown id, bad MAC, or expired row: no session
//   - guest-length cookie: guest session, always accepted
//   - key matches the pending next key: rotation confirmed, next promoted to
//     current
//   - key matches the current key: valid; a fresh next key is issued when the
//     row has gone stale and no rotation is already pending (Modified=true),
//     and the current key keeps working until the client demonstrates
//     possession of the new one
//   - key matches neither: the session is treated as forked or stolen, the
//     row is wiped
//
// Only store I/O failures surface as errors; every validation failure
// degrades to a nil session so the caller can mint a guest.
func (m *Manager) ReadCookie(ctx context.Context, value string) (Result, error) {
	dec, ok := m.codec.Decode(value)
	if !ok {
		return Result{}, nil
	}

	if dec.IsGuest() {
		return Result{Session: &Session{ID: dec.ID}}, nil
	}

	rec, err := m.repo.Get(ctx, dec.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Result{}, nil
		}
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}

	// Expired rows are never valid regardless of key material; the sweep
	// deletes them out of band.
	if time.Since(rec.CreatedAt) > m.lifetime {
		return Result{}, nil
	}

	if rec.NextKey != nil && timingsafe.Equal(rec.NextKey, dec.Key) {
		return m.confirmRotation(ctx, dec.ID, dec.Key, rec.UserID)
	}

	if timingsafe.Equal(rec.Key, dec.Key) {
		if rec.NextKey == nil && time.Since(rec.UpdatedAt) > m.rekeyAfter {
			return m.startRotation(ctx, dec.ID, dec.Key, rec.UserID)
		}
		return Result{Session: &Session{ID: dec.ID, Key: dec.Key, UserID: rec.UserID}}, nil
	}

	// Neither current nor next: a stale fork of this session is in the wild.
	// Wipe the row so the duplicated key cannot be replayed indefinitely.
	if err := m.repo.Delete(ctx, dec.ID); err != nil {
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}
	return Result{}, nil
}

// confirmRotation promotes the pending key the client just demonstrated.
// The conditional update may lose against a concurrent confirmation of the
// same key; either way the presented key is now the current one.
func (m *Manager) confirmRotation(ctx context.Context, id, key []byte, userID int64) (Result, error) {
	if _, err := m.repo.PromoteNextKey(ctx, id, key); err != nil {
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}
	return Result{Session: &Session{ID: id, Key: key, UserID: userID}}, nil
}

// startRotation issues a fresh next key while keeping the current key valid,
// so in-flight requests still holding the old cookie keep working until the
// client confirms. The store-side guard serializes concurrent rotations: when
// another request already issued a pending key, this one must not replace it,
// or the key that client was just handed would read as a fork.
func (m *Manager) startRotation(ctx context.Context, id, currentKey []byte, userID int64) (Result, error) {
	nextKey, err := randomBytes(sessioncodec.KeySize)
	if err != nil {
		return Result{}, errors.Join(ErrKeyGeneration, err)
	}

	set, err := m.repo.SetNextKey(ctx, id, nextKey)
	if err != nil {
		return Result{}, errors.Join(ErrStoreUnavailable, err)
	}
	if !set {
		return Result{Session: &Session{ID: id, Key: currentKey, UserID: userID}}, nil
	}

	return Result{
		Modified: true,
		Session:  &Session{ID: id, Key: nextKey, UserID: userID},
	}, nil
}

// CreateUserSession generates a fresh authenticated session for userID and
// persists it. Any previous session row the user held is left alone; the
// login flow deletes it explicitly.
func (m *Manager) CreateUserSession(ctx context.Context, userID int64) (Session, error) {
	if userID <= 0 {
		return Session{}, fmt.Errorf("session: user id must be positive, got %d", userID)
	}

	raw, err := randomBytes(sessioncodec.IDSize + sessioncodec.KeySize)
	if err != nil {
		return Session{}, errors.Join(ErrKeyGeneration, err)
	}
	id := raw[:sessioncodec.IDSize]
	key := raw[sessioncodec.IDSize:]

	now := time.Now()
	rec := Record{
		ID:        id,
		Key:       key,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.repo.Insert(ctx, rec); err != nil {
		return Session{}, errors.Join(ErrStoreUnavailable, err)
	}

	return Session{ID: id, Key: key, UserID: userID}, nil
}

// CreateGuestSession generates a fresh guest session. No persistence.
func (m *Manager) CreateGuestSession() (Session, error) {
	return NewGuest()
}

// DeleteSession removes the persisted row for id. Used on logout and by fork
// detection; deleting an already-absent session is a no-op.
func (m *Manager) DeleteSession(ctx context.Context, id []byte) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// DeleteExpiredSessions removes rows older than the configured lifetime.
// Intended to run on a periodic schedule outside the request path.
func (m *Manager) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.lifetime)
	if err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}
	return n, nil
}

// EncodeCookie produces the wire cookie value for sess.
func (m *Manager) EncodeCookie(sess Session) string {
	if sess.IsAuthenticated() {
		return m.codec.EncodeUser(sess.ID, sess.Key)
	}
	return m.codec.EncodeGuest(sess.ID)
}

// Lifetime returns the configured user session lifetime.
func (m *Manager) Lifetime() time.Duration {
	return m.lifetime
}
