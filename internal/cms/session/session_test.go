package session

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limkokwing/registry-sync/pkg/config"
)

func testConfig(t *testing.T) config.CMSConfig {
	t.Helper()
	return config.CMSConfig{
		BaseURL: "https://cms.test.local/campus/registry",
		JarPath: filepath.Join(t.TempDir(), "session.pkl"),
	}
}

func TestSessionRoundTripsJar(t *testing.T) {
	cfg := testConfig(t)

	s, err := New(cfg, nil)
	require.NoError(t, err)
	assert.False(t, s.HasCookies())

	s.SetCookies([]*http.Cookie{
		{Name: "PHPSESSID", Value: "abc123", Path: "/", Expires: time.Now().Add(24 * time.Hour)},
		{Name: "ewToken", Value: "xyz", Path: "/", Expires: time.Now().Add(24 * time.Hour)},
	})
	assert.True(t, s.HasCookies())

	// a new session over the same jar path sees the persisted cookies
	restored, err := New(cfg, nil)
	require.NoError(t, err)
	assert.True(t, restored.HasCookies())

	cookies := restored.jar.Cookies(restored.baseURL)
	names := make(map[string]string, len(cookies))
	for _, c := range cookies {
		names[c.Name] = c.Value
	}
	assert.Equal(t, "abc123", names["PHPSESSID"])
	assert.Equal(t, "xyz", names["ewToken"])
}

func TestSessionKeepsCookieAttributesAcrossRestarts(t *testing.T) {
	cfg := testConfig(t)
	expires := time.Now().Add(24 * time.Hour).Truncate(time.Second)

	s, err := New(cfg, nil)
	require.NoError(t, err)
	s.SetCookies([]*http.Cookie{
		{Name: "PHPSESSID", Value: "abc123", Path: "/", Expires: expires, HttpOnly: true},
	})

	// the jar itself strips everything but name and value, so the save
	// path must carry the attributes on its own, and a save from a
	// restored process must not shed them either
	restored, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, restored.Save())

	again, err := New(cfg, nil)
	require.NoError(t, err)
	attrs := again.attrs["PHPSESSID"]
	assert.True(t, attrs.Expires.Equal(expires), "expiry survives the round trip")
	assert.True(t, attrs.HTTPOnly)
	assert.Equal(t, "/", attrs.Path)
}

func TestSessionCorruptJarStartsFresh(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.JarPath, []byte("not a gob blob"), 0o644))

	s, err := New(cfg, nil)
	require.NoError(t, err)
	assert.False(t, s.HasCookies())
}

func TestSessionMissingJarIsFine(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, nil)
	require.NoError(t, err)
	assert.False(t, s.HasCookies())
	assert.NotNil(t, s.Client())
}
