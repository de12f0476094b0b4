package sessioncodec

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/dmitrymomot/sessionkit/pkg/timingsafe"
)

const (
	// IDSize is the byte length of a session identifier.
	IDSize = 18
	// KeySize is the byte length of a session key.
	KeySize = 18
	// MACSize is the byte length of the truncated cookie MAC.
	MACSize = 18

	// MACKeySize is the required byte length of the signing key.
	MACKeySize = 32

	guestCookieSize = IDSize
	userCookieSize  = IDSize + KeySize + MACSize
)

// Decoded is the result of decoding a well-formed cookie value.
// Key is nil for guest cookies.
type Decoded struct {
	ID  []byte
	Key []byte
}

// IsGuest reports whether the cookie carried only a session identifier.
func (d Decoded) IsGuest() bool {
	return d.Key == nil
}

// Codec converts sessions to and from the fixed-layout binary cookie value.
//
// Layout for authenticated sessions is id ‖ key ‖ mac where
// mac = HMAC-SHA256(macKey, id ‖ key) truncated to MACSize bytes.
// Guest cookies carry the bare id. Both forms are std base64 on the wire.
type Codec struct {
	macKey []byte
}

// New creates a codec with the given signing key. The key must be exactly
// MACKeySize bytes; derive it from the deployment secret, never use it raw.
func New(macKey []byte) (*Codec, error) {
	if len(macKey) != MACKeySize {
		return nil, ErrInvalidMACKey
	}
	return &Codec{macKey: macKey}, nil
}

// EncodeUser produces the cookie value for an authenticated session.
// The MAC is recomputed on every call, never cached.
func (c *Codec) EncodeUser(id, key []byte) string {
	buf := make([]byte, 0, userCookieSize)
	buf = append(buf, id...)
	buf = append(buf, key...)
	buf = append(buf, c.sign(id, key)...)
	return base64.StdEncoding.EncodeToString(buf)
}

// EncodeGuest produces the cookie value for a guest session.
func (c *Codec) EncodeGuest(id []byte) string {
	return base64.StdEncoding.EncodeToString(id)
}

// Decode parses a cookie value. It returns ok=false for anything that is not
// a well-formed cookie: bad base64, unexpected length, or a MAC that does not
// verify. Malformed input is indistinguishable from an absent cookie on
// purpose; the caller should treat both as "no session".
func (c *Codec) Decode(value string) (Decoded, bool) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return Decoded{}, false
	}

	switch len(raw) {
	case guestCookieSize:
		return Decoded{ID: raw}, true
	case userCookieSize:
	default:
		return Decoded{}, false
	}

	id := raw[:IDSize]
	key := raw[IDSize : IDSize+KeySize]
	mac := raw[IDSize+KeySize:]

	if !timingsafe.Equal(c.sign(id, key), mac) {
		return Decoded{}, false
	}

	return Decoded{ID: id, Key: key}, true
}

func (c *Codec) sign(id, key []byte) []byte {
	mac := hmac.New(sha256.New, c.macKey)
	mac.Write(id)
	mac.Write(key)
	return mac.Sum(nil)[:MACSize]
}
