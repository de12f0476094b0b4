package sessiontransport

import (
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/session"
)

// CookieConfig provides environment-based configuration for the cookie transport.
type CookieConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"__session"`

	// Secure restricts the cookie to HTTPS. Enable everywhere TLS terminates.
	Secure bool `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

// DefaultCookieConfig returns a CookieConfig with sensible defaults.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		CookieName: "__session",
	}
}

// NewCookieFromConfig creates a cookie transport from configuration.
func NewCookieFromConfig(cfg CookieConfig, manager *session.Manager, opts ...Option) (*Cookie, error) {
	base := []Option{
		WithSecure(cfg.Secure),
		WithSameSite(http.SameSiteLaxMode),
	}
	return NewCookie(manager, cfg.CookieName, append(base, opts...)...)
}
