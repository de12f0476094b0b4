package csrf

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"

	"github.com/dmitrymomot/sessionkit/pkg/timingsafe"
)

// KeySize is the required byte length of the binder key.
const KeySize = 32

// ErrInvalidKey is returned when the binder key is not exactly KeySize bytes.
var ErrInvalidKey = errors.New("csrf: key must be 32 bytes")

// Binder derives per-endpoint, per-session CSRF tokens.
//
// A token is HMAC-SHA256(key, sessionID ‖ endpoint). Nothing is stored;
// verification recomputes the token from the presenting session's identity.
// Because only the session identifier participates, tokens survive key
// rotation and die with the session.
type Binder struct {
	key []byte
}

// New creates a binder. Derive the key from the deployment secret under its
// own label; never share it with the cookie MAC key.
func New(key []byte) (*Binder, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}
	return &Binder{key: key}, nil
}

// Token derives the token bytes for a session and endpoint. The endpoint is a
// stable logical action name ("login", "register-verify"), not a URL path, so
// a token minted for one action cannot be replayed against another.
func (b *Binder) Token(sessionID []byte, endpoint string) []byte {
	mac := hmac.New(sha256.New, b.key)
	mac.Write(sessionID)
	mac.Write([]byte(endpoint))
	return mac.Sum(nil)
}

// TokenString returns the token in the form embedded in form fields.
func (b *Binder) TokenString(sessionID []byte, endpoint string) string {
	return base64.StdEncoding.EncodeToString(b.Token(sessionID, endpoint))
}

// Verify reports whether presented matches the token for (sessionID, endpoint).
// The comparison is timing-safe.
func (b *Binder) Verify(sessionID []byte, endpoint string, presented []byte) bool {
	return timingsafe.Equal(b.Token(sessionID, endpoint), presented)
}

// VerifyString verifies a base64 token as submitted in a form field.
func (b *Binder) VerifyString(sessionID []byte, endpoint, presented string) bool {
	raw, err := base64.StdEncoding.DecodeString(presented)
	if err != nil {
		return false
	}
	return b.Verify(sessionID, endpoint, raw)
}
