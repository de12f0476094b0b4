package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessiontransport"
)

type sessionContextKey struct{}

// SessionConfig configures the session middleware.
type SessionConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Transport resolves the inbound cookie into a session, minting and
	// writing a guest cookie when necessary
	Transport *sessiontransport.Cookie
	// Logger for structured logging (default: slog with io.Discard)
	Logger *slog.Logger
	// ErrorHandler runs when the session store is unreachable
	// (default: plain 500)
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)
}

// Session creates middleware that resolves the session cookie and stores the
// resulting session in the request context.
//
// A missing, malformed, or rejected cookie degrades to a fresh guest session;
// only a store outage reaches the ErrorHandler, so a client with a valid
// cookie is never silently downgraded to guest by a flaky backend.
func Session(transport *sessiontransport.Cookie) func(http.Handler) http.Handler {
	return SessionWithConfig(SessionConfig{Transport: transport})
}

// SessionWithConfig creates a session middleware with custom configuration.
func SessionWithConfig(cfg SessionConfig) func(http.Handler) http.Handler {
	if cfg.Transport == nil {
		panic("session middleware: transport is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := cfg.Transport.Load(w, r)
			if err != nil {
				cfg.Logger.ErrorContext(r.Context(), "failed to load session",
					slog.String("component", "middleware.session"),
					slog.String("path", r.URL.Path),
					slog.Any("error", err))
				cfg.ErrorHandler(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth guards a handler behind an authenticated session. Requests
// carrying a guest session receive onFail, or a plain 401 when onFail is nil.
// Must run below the Session middleware.
func RequireAuth(onFail http.Handler) func(http.Handler) http.Handler {
	if onFail == nil {
		onFail = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSession(r.Context())
			if !ok || !sess.IsAuthenticated() {
				onFail.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireGuest is the inverse guard: authenticated sessions receive onFail,
// or a plain 403 when onFail is nil. Useful for login and signup pages.
func RequireGuest(onFail http.Handler) func(http.Handler) http.Handler {
	if onFail == nil {
		onFail = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess, ok := GetSession(r.Context()); ok && sess.IsAuthenticated() {
				onFail.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession retrieves the session from the request context.
// Returns the session and true if found, an empty session and false otherwise.
func GetSession(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(session.Session)
	return sess, ok
}

// MustGetSession retrieves the session from the request context or panics.
// Use this below the Session middleware where presence is guaranteed.
func MustGetSession(ctx context.Context) session.Session {
	sess, ok := GetSession(ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}
