package sessiontransport

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/session"
)

// Cookie is the HTTP cookie transport for sessions. It owns the mapping
// between session state and Set-Cookie headers; the session.Manager stays
// pure with respect to HTTP objects it doesn't own.
type Cookie struct {
	manager  *session.Manager
	name     string
	secure   bool
	sameSite http.SameSite
}

// Option configures the cookie transport.
type Option func(*Cookie)

// WithSecure restricts the cookie to HTTPS.
func WithSecure(secure bool) Option {
	return func(c *Cookie) {
		c.secure = secure
	}
}

// WithSameSite overrides the SameSite policy (default Lax).
func WithSameSite(mode http.SameSite) Option {
	return func(c *Cookie) {
		c.sameSite = mode
	}
}

// NewCookie creates a cookie transport for the given manager and cookie name.
func NewCookie(manager *session.Manager, name string, opts ...Option) (*Cookie, error) {
	if manager == nil {
		return nil, errors.New("sessiontransport: manager is required")
	}
	if name == "" {
		return nil, errors.New("sessiontransport: cookie name is required")
	}

	c := &Cookie{
		manager:  manager,
		name:     name,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Load resolves the request's session.
//
// A missing, malformed, forked, or expired cookie degrades to a freshly
// minted guest session — the client is never errored for presenting garbage,
// and never told why its cookie stopped working. Whenever the client must
// adopt a new cookie (fresh guest, or a rotation in progress) the Set-Cookie
// header is added to w. Only store I/O failures return an error.
func (c *Cookie) Load(w http.ResponseWriter, r *http.Request) (session.Session, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return c.mintGuest(w)
	}

	res, err := c.manager.ReadCookie(r.Context(), cookie.Value)
	if err != nil {
		return session.Session{}, err
	}

	if res.Session == nil {
		return c.mintGuest(w)
	}

	if res.Modified {
		c.Write(w, *res.Session)
	}

	return *res.Session, nil
}

// Login replaces current with a fresh authenticated session for userID and
// instructs the client to adopt it. The previous user session's row, if any,
// is deleted before the Set-Cookie is written: once the client has been told
// to adopt the new cookie the response must not turn into an error. A new
// row orphaned by a failed delete simply expires.
func (c *Cookie) Login(ctx context.Context, w http.ResponseWriter, current session.Session, userID int64) (session.Session, error) {
	sess, err := c.manager.CreateUserSession(ctx, userID)
	if err != nil {
		return session.Session{}, err
	}

	if current.IsAuthenticated() {
		if err := c.manager.DeleteSession(ctx, current.ID); err != nil {
			return session.Session{}, err
		}
	}

	c.Write(w, sess)
	return sess, nil
}

// Logout downgrades an authenticated session to a fresh guest and deletes the
// persisted row. Logging out a guest is a no-op that returns it unchanged.
func (c *Cookie) Logout(ctx context.Context, w http.ResponseWriter, current session.Session) (session.Session, error) {
	if !current.IsAuthenticated() {
		return current, nil
	}

	guest, err := c.manager.CreateGuestSession()
	if err != nil {
		return session.Session{}, err
	}

	if err := c.manager.DeleteSession(ctx, current.ID); err != nil {
		return session.Session{}, err
	}

	c.Write(w, guest)
	return guest, nil
}

// Write sets the session cookie on the response.
func (c *Cookie) Write(w http.ResponseWriter, sess session.Session) {
	http.SetCookie(w, c.cookieFor(sess))
}

// CookieHeader returns the full Set-Cookie header value for sess.
func (c *Cookie) CookieHeader(sess session.Session) string {
	return c.cookieFor(sess).String()
}

// cookieFor builds the outgoing cookie. Guest cookies are session-scoped (no
// Max-Age), user cookies persist for the configured lifetime.
func (c *Cookie) cookieFor(sess session.Session) *http.Cookie {
	cookie := &http.Cookie{
		Name:     c.name,
		Value:    c.manager.EncodeCookie(sess),
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	}

	if sess.IsAuthenticated() {
		cookie.MaxAge = int(c.manager.Lifetime().Seconds())
	}

	return cookie
}

func (c *Cookie) mintGuest(w http.ResponseWriter) (session.Session, error) {
	sess, err := c.manager.CreateGuestSession()
	if err != nil {
		return session.Session{}, err
	}
	c.Write(w, sess)
	return sess, nil
}
