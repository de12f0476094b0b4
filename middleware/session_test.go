package middleware_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionkit/core/session"
	"github.com/dmitrymomot/sessionkit/core/sessioncodec"
	"github.com/dmitrymomot/sessionkit/core/sessiontransport"
	"github.com/dmitrymomot/sessionkit/middleware"
	"github.com/dmitrymomot/sessionkit/storage/memory"
)

func newStack(t *testing.T) (*sessiontransport.Cookie, *session.Manager) {
	t.Helper()

	codec, err := sessioncodec.New(bytes.Repeat([]byte{0x01}, sessioncodec.MACKeySize))
	require.NoError(t, err)
	mgr, err := session.NewManager(memory.NewSessionRepository(), codec, 24*time.Hour, time.Hour)
	require.NoError(t, err)
	transport, err := sessiontransport.NewCookie(mgr, "__session")
	require.NoError(t, err)

	return transport, mgr
}

func TestSession_AttachesGuestToContext(t *testing.T) {
	transport, _ := newStack(t)

	var got session.Session
	h := middleware.Session(transport)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.MustGetSession(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.False(t, got.IsAuthenticated())
	assert.NotEmpty(t, got.ID)
	assert.Len(t, w.Result().Cookies(), 1)
}

func TestSession_AttachesUserToContext(t *testing.T) {
	transport, mgr := newStack(t)

	user, err := mgr.CreateUserSession(context.Background(), 7)
	require.NoError(t, err)

	var got session.Session
	h := middleware.Session(transport)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.MustGetSession(r.Context())
	}))

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: "__session", Value: mgr.EncodeCookie(user)})
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.EqualValues(t, 7, got.UserID)
	assert.True(t, got.IsAuthenticated())
}

func TestSession_Skip(t *testing.T) {
	transport, _ := newStack(t)

	cfg := middleware.SessionConfig{
		Transport: transport,
		Skip:      func(r *http.Request) bool { return r.URL.Path == "/health" },
	}

	var found bool
	h := middleware.SessionWithConfig(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = middleware.GetSession(r.Context())
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.False(t, found)
	assert.Empty(t, w.Result().Cookies())
}

func TestRequireAuth(t *testing.T) {
	transport, mgr := newStack(t)

	handler := middleware.Session(transport)(
		middleware.RequireAuth(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})),
	)

	t.Run("guest rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("user passes", func(t *testing.T) {
		user, err := mgr.CreateUserSession(context.Background(), 7)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: "__session", Value: mgr.EncodeCookie(user)})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("custom failure handler", func(t *testing.T) {
		redirect := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		})
		h := middleware.Session(transport)(
			middleware.RequireAuth(redirect)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})),
		)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/login", w.Result().Header.Get("Location"))
	})
}

func TestRequireGuest(t *testing.T) {
	transport, mgr := newStack(t)

	handler := middleware.Session(transport)(
		middleware.RequireGuest(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})),
	)

	t.Run("guest passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("user rejected", func(t *testing.T) {
		user, err := mgr.CreateUserSession(context.Background(), 7)
		require.NoError(t, err)

		r := httptest.NewRequest("GET", "/", nil)
		r.AddCookie(&http.Cookie{Name: "__session", Value: mgr.EncodeCookie(user)})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSession_StoreErrorHitsErrorHandler(t *testing.T) {
	codec, err := sessioncodec.New(bytes.Repeat([]byte{0x01}, sessioncodec.MACKeySize))
	require.NoError(t, err)
	mgr, err := session.NewManager(failingRepo{}, codec, 24*time.Hour, time.Hour)
	require.NoError(t, err)
	transport, err := sessiontransport.NewCookie(mgr, "__session")
	require.NoError(t, err)

	var handled bool
	cfg := middleware.SessionConfig{
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			handled = true
			w.WriteHeader(http.StatusServiceUnavailable)
		},
	}
	h := middleware.SessionWithConfig(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when the store is down")
	}))

	cookie := codec.EncodeUser(
		bytes.Repeat([]byte{0x02}, sessioncodec.IDSize),
		bytes.Repeat([]byte{0x03}, sessioncodec.KeySize),
	)
	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: "__session", Value: cookie})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.True(t, handled)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type failingRepo struct{}

var errStoreDown = errors.New("store down")

func (failingRepo) Insert(context.Context, session.Record) error { return errStoreDown }
func (failingRepo) Get(context.Context, []byte) (*session.Record, error) {
	return nil, errStoreDown
}
func (failingRepo) SetNextKey(context.Context, []byte, []byte) (bool, error) {
	return false, errStoreDown
}
func (failingRepo) PromoteNextKey(context.Context, []byte, []byte) (bool, error) {
	return false, errStoreDown
}
func (failingRepo) Delete(context.Context, []byte) error { return errStoreDown }
func (failingRepo) DeleteExpired(context.Context, time.Duration) (int64, error) {
	return 0, errStoreDown
}

func TestGetSession_MissingContext(t *testing.T) {
	_, ok := middleware.GetSession(context.Background())
	assert.False(t, ok)
	assert.Panics(t, func() { middleware.MustGetSession(context.Background()) })
}
