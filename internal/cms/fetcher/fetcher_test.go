package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limkokwing/registry-sync/internal/cms/session"
	"github.com/limkokwing/registry-sync/pkg/config"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
)

const loginPage = `<html><body><form action="login.php" method="post"><input name="user"></form></body></html>`
const studentPage = `<html><body><a href="logout.php">Logout</a><table class="ewTable"><tr><td>Name</td><td>Thabo</td></tr></table></body></html>`

func newTestSession(t *testing.T, baseURL string) *session.Session {
	t.Helper()
	s, err := session.New(config.CMSConfig{
		BaseURL: baseURL,
		JarPath: filepath.Join(t.TempDir(), "session.pkl"),
	}, nil)
	require.NoError(t, err)
	return s
}

type fakeAuth struct {
	calls   atomic.Int32
	onLogin func()
	err     error
}

func (a *fakeAuth) Authenticate(context.Context) error {
	a.calls.Add(1)
	if a.onLogin != nil {
		a.onLogin()
	}
	return a.err
}

func TestLoggedIn(t *testing.T) {
	assert.False(t, LoggedIn(loginPage))
	assert.True(t, LoggedIn(studentPage))
	assert.True(t, LoggedIn("<html><body>no forms at all</body></html>"))
	assert.False(t, LoggedIn(`<form action="/campus/Login.php"></form>`))
}

func TestGetReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(studentPage))
	}))
	defer srv.Close()

	f := New(newTestSession(t, srv.URL), nil, 3, time.Millisecond, nil, nil)
	body, err := f.Get(context.Background(), srv.URL+"/r_studentview.php?StudentID=1")
	require.NoError(t, err)
	assert.Contains(t, body, "Thabo")
}

func TestGetRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(studentPage))
	}))
	defer srv.Close()

	f := New(newTestSession(t, srv.URL), nil, 5, time.Millisecond, nil, nil)
	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "Thabo")
	assert.Equal(t, int32(3), hits.Load())
}

func TestGetExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := New(newTestSession(t, srv.URL), nil, 2, time.Millisecond, nil, nil)
	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTransport))
}

func TestGetRecoversExpiredSession(t *testing.T) {
	var loggedIn atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if loggedIn.Load() {
			_, _ = w.Write([]byte(studentPage))
			return
		}
		_, _ = w.Write([]byte(loginPage))
	}))
	defer srv.Close()

	auth := &fakeAuth{onLogin: func() { loggedIn.Store(true) }}
	f := New(newTestSession(t, srv.URL), auth, 3, time.Millisecond, nil, nil)

	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "Thabo")
	assert.Equal(t, int32(1), auth.calls.Load(), "interactive login must run exactly once")
}

func TestGetPersistentExpiryFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(loginPage))
	}))
	defer srv.Close()

	auth := &fakeAuth{}
	f := New(newTestSession(t, srv.URL), auth, 3, time.Millisecond, nil, nil)

	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrSessionExpired))
	assert.Equal(t, int32(1), auth.calls.Load())
}

func TestPostFormDoesNotRetryNon200(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "U", r.PostForm.Get("a_edit"))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(studentPage))
	}))
	defer srv.Close()

	f := New(newTestSession(t, srv.URL), nil, 5, time.Millisecond, nil, nil)
	body, err := f.PostForm(context.Background(), srv.URL, url.Values{"a_edit": {"U"}})
	require.NoError(t, err)
	assert.Contains(t, body, "Thabo")
	assert.Equal(t, int32(1), hits.Load())
}

func TestPostFormReloginOnce(t *testing.T) {
	var loggedIn atomic.Bool
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		if loggedIn.Load() {
			_, _ = w.Write([]byte("Update Successful " + studentPage))
			return
		}
		_, _ = w.Write([]byte(loginPage))
	}))
	defer srv.Close()

	auth := &fakeAuth{onLogin: func() { loggedIn.Store(true) }}
	f := New(newTestSession(t, srv.URL), auth, 3, time.Millisecond, nil, nil)

	body, err := f.PostForm(context.Background(), srv.URL, url.Values{"x_StudentID": {"901007412"}})
	require.NoError(t, err)
	assert.Contains(t, body, "Successful")
	assert.Equal(t, int32(2), posts.Load())
	assert.Equal(t, int32(1), auth.calls.Load())
}
