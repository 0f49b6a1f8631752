package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/cms/session"
	appErrors "github.com/limkokwing/registry-sync/pkg/errors"
	"github.com/limkokwing/registry-sync/pkg/metrics"
)

// Authenticator re-establishes the CMS session. In production this is
// the interactive browser login.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// Fetcher issues logged-in GETs and POSTs against the CMS. It is
// stateless; the Session carries the cookies.
type Fetcher struct {
	session *session.Session
	auth    Authenticator
	logger  *zap.Logger
	metrics *metrics.Metrics

	maxRetries uint64
	baseDelay  time.Duration
}

// New builds a Fetcher. maxRetries bounds GET attempts; baseDelay seeds
// the exponential backoff (doubled each attempt).
func New(sess *session.Session, auth Authenticator, maxRetries int, baseDelay time.Duration, logger *zap.Logger, m *metrics.Metrics) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 60
	}
	if baseDelay <= 0 {
		baseDelay = 3 * time.Second
	}
	return &Fetcher{
		session:    sess,
		auth:       auth,
		logger:     logger,
		metrics:    m,
		maxRetries: uint64(maxRetries),
		baseDelay:  baseDelay,
	}
}

// LoggedIn reports whether body belongs to an authenticated page. It is
// false iff the page carries a form posting to the login page, which is
// how the CMS renders an expired session.
func LoggedIn(body string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		// unparseable bodies are not login pages
		return true
	}

	loggedOut := false
	doc.Find("form").EachWithBreak(func(_ int, f *goquery.Selection) bool {
		action, _ := f.Attr("action")
		if strings.Contains(strings.ToLower(action), "login") {
			loggedOut = true
			return false
		}
		return true
	})
	return !loggedOut
}

// Get fetches a page, retrying transport failures and non-200 responses
// with exponential backoff, and recovering an expired session with one
// interactive login.
func (f *Fetcher) Get(ctx context.Context, pageURL string) (string, error) {
	start := time.Now()
	body, err := f.fetchWithRetry(ctx, pageURL)
	if err != nil {
		f.metrics.ObserveFetch(http.MethodGet, "error", time.Since(start))
		return "", err
	}

	if !LoggedIn(body) {
		body, err = f.relogin(ctx, func(ctx context.Context) (string, error) {
			return f.fetchWithRetry(ctx, pageURL)
		})
		if err != nil {
			f.metrics.ObserveFetch(http.MethodGet, "expired", time.Since(start))
			return "", err
		}
	}

	f.metrics.ObserveFetch(http.MethodGet, "ok", time.Since(start))
	return body, nil
}

// PostForm submits a urlencoded form. The CMS returns 200 for both
// success and application failure, so a non-200 is logged but not
// retried; status alone proves nothing. Session expiry still gets the
// single re-login treatment.
func (f *Fetcher) PostForm(ctx context.Context, pageURL string, payload url.Values) (string, error) {
	start := time.Now()

	body, status, err := f.doPost(ctx, pageURL, payload)
	if err != nil {
		f.metrics.ObserveFetch(http.MethodPost, "error", time.Since(start))
		return "", appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "post form")
	}
	if status != http.StatusOK {
		f.logger.Warn("form POST returned non-200",
			zap.String("url", pageURL), zap.Int("status", status), zap.Int("body_len", len(body)))
	}

	if !LoggedIn(body) {
		body, err = f.relogin(ctx, func(ctx context.Context) (string, error) {
			b, _, err := f.doPost(ctx, pageURL, payload)
			return b, err
		})
		if err != nil {
			f.metrics.ObserveFetch(http.MethodPost, "expired", time.Since(start))
			return "", err
		}
	}

	f.metrics.ObserveFetch(http.MethodPost, "ok", time.Since(start))
	return body, nil
}

// Document fetches a page and parses it.
func (f *Fetcher) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := f.Get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "parse page")
	}
	return doc, nil
}

// relogin performs the single re-authentication allowed per request and
// reissues it. A still-logged-out response is a hard failure.
func (f *Fetcher) relogin(ctx context.Context, reissue func(context.Context) (string, error)) (string, error) {
	if f.auth == nil {
		return "", appErrors.ErrSessionExpired
	}

	f.metrics.ReloginTriggered()
	f.logger.Info("session expired, starting interactive login")
	if err := f.auth.Authenticate(ctx); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrSessionExpired.Code, appErrors.ErrSessionExpired.Status, "re-login failed")
	}

	body, err := reissue(ctx)
	if err != nil {
		return "", err
	}
	if !LoggedIn(body) {
		return "", appErrors.ErrSessionExpired
	}
	return body, nil
}

func (f *Fetcher) fetchWithRetry(ctx context.Context, pageURL string) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.baseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxElapsedTime = 0

	attempt := 0
	operation := func() (string, error) {
		if attempt > 0 {
			f.metrics.FetchRetried()
		}
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return "", backoff.Permanent(err)
		}

		resp, err := f.session.Client().Do(req)
		if err != nil {
			f.logger.Debug("fetch attempt failed", zap.String("url", pageURL), zap.Int("attempt", attempt), zap.Error(err))
			return "", err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		if resp.StatusCode != http.StatusOK {
			f.logger.Debug("fetch attempt non-200", zap.String("url", pageURL), zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt))
			return "", fmt.Errorf("status %d", resp.StatusCode)
		}
		return string(raw), nil
	}

	body, err := backoff.RetryWithData(operation, backoff.WithContext(backoff.WithMaxRetries(bo, f.maxRetries), ctx))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
			fmt.Sprintf("GET %s exhausted %d attempts", pageURL, attempt))
	}
	return body, nil
}

func (f *Fetcher) doPost(ctx context.Context, pageURL string, payload url.Values) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, pageURL, strings.NewReader(payload.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.session.Client().Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, err
	}
	return string(raw), resp.StatusCode, nil
}
