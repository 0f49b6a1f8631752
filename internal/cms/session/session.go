package session

import (
	"crypto/tls"
	"encoding/gob"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/pkg/config"
)

// Session is the process-wide authenticated HTTP session against the
// CMS. It owns the cookie jar, persists it between runs, and hands out
// the shared client. The jar itself is safe for concurrent use; Save is
// the only operation that needs extra locking.
type Session struct {
	client  *http.Client
	jar     *cookiejar.Jar
	baseURL *url.URL
	jarPath string
	logger  *zap.Logger

	mu sync.Mutex
	// attrs keeps the full attributes per cookie name. The jar only
	// yields Name and Value back, so expiry and flags would be lost on
	// save without this side record.
	attrs map[string]savedCookie
}

// savedCookie is the on-disk shape of one cookie. The jar file is a
// cache: any decode failure just means a fresh interactive login.
type savedCookie struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  time.Time
	Secure   bool
	HTTPOnly bool
}

// New builds the session, loading any persisted jar from cfg.JarPath.
func New(cfg config.CMSConfig, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse CMS base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 80
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 20
	}

	transport := &http.Transport{
		// the CMS serves a self-signed certificate
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true},
		MaxConnsPerHost:     maxConns,
		MaxIdleConnsPerHost: maxIdle,
		MaxIdleConns:        maxConns,
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	s := &Session{
		client: &http.Client{
			Jar:       jar,
			Transport: transport,
			Timeout:   timeout,
		},
		jar:     jar,
		baseURL: base,
		jarPath: cfg.JarPath,
		logger:  logger,
		attrs:   make(map[string]savedCookie),
	}

	s.load()
	return s, nil
}

// Client returns the shared HTTP client.
func (s *Session) Client() *http.Client {
	return s.client
}

// BaseURL returns the CMS base URL.
func (s *Session) BaseURL() *url.URL {
	return s.baseURL
}

// HasCookies reports whether the jar holds any cookie for the CMS host.
func (s *Session) HasCookies() bool {
	return len(s.jar.Cookies(s.baseURL)) > 0
}

// SetCookies imports cookies captured by the browser login and persists
// the jar.
func (s *Session) SetCookies(cookies []*http.Cookie) {
	s.mu.Lock()
	for _, c := range cookies {
		s.attrs[c.Name] = savedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HTTPOnly: c.HttpOnly,
		}
	}
	s.mu.Unlock()

	s.jar.SetCookies(s.baseURL, cookies)
	if err := s.Save(); err != nil {
		s.logger.Warn("persist cookie jar", zap.Error(err))
	}
}

// Save writes the jar's CMS cookies to disk.
func (s *Session) Save() error {
	if s.jarPath == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// the jar hands back only Name and Value; merge in the attributes
	// recorded when the cookie was imported
	cookies := s.jar.Cookies(s.baseURL)
	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		entry, ok := s.attrs[c.Name]
		if !ok {
			entry = savedCookie{Name: c.Name}
		}
		entry.Value = c.Value
		saved = append(saved, entry)
	}

	f, err := os.Create(s.jarPath)
	if err != nil {
		return fmt.Errorf("create jar file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(saved); err != nil {
		return fmt.Errorf("encode jar: %w", err)
	}
	return nil
}

// load restores persisted cookies. Failures leave the jar empty; the
// first fetch then triggers an interactive login.
func (s *Session) load() {
	if s.jarPath == "" {
		return
	}

	f, err := os.Open(s.jarPath)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("open cookie jar", zap.Error(err))
		}
		return
	}
	defer f.Close()

	var saved []savedCookie
	if err := gob.NewDecoder(f).Decode(&saved); err != nil {
		s.logger.Warn("decode cookie jar, starting fresh", zap.Error(err))
		return
	}

	cookies := make([]*http.Cookie, 0, len(saved))
	for _, c := range saved {
		s.attrs[c.Name] = c
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     c.Path,
			Domain:   c.Domain,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	s.jar.SetCookies(s.baseURL, cookies)
	s.logger.Debug("cookie jar restored", zap.Int("cookies", len(cookies)))
}
