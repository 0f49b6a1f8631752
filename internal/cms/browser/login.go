package browser

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/limkokwing/registry-sync/internal/cms/session"
	"github.com/limkokwing/registry-sync/pkg/config"
)

// logoutLink appears on every CMS page once a user is signed in; its
// presence is the signal that the manual login completed.
const logoutLink = `a[href*="logout"]`

// Login drives a real browser through the CMS sign-in. The operator
// authenticates by hand; we only wait for the logout link and then lift
// the browser's cookies into the session jar. This is the engine's one
// human-interaction point.
type Login struct {
	cfg     config.BrowserConfig
	session *session.Session
	logger  *zap.Logger
}

// New builds the interactive login flow.
func New(cfg config.BrowserConfig, sess *session.Session, logger *zap.Logger) *Login {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Login{cfg: cfg, session: sess, logger: logger}
}

// Authenticate opens the browser, blocks until the operator signs in or
// the wait timeout elapses, then imports and persists the cookies.
func (l *Login) Authenticate(ctx context.Context) error {
	wait := l.cfg.WaitTimeout
	if wait <= 0 {
		wait = 3 * time.Minute
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.cfg.Headless),
		chromedp.Flag("ignore-certificate-errors", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, wait)
	defer cancelRun()

	l.logger.Info("waiting for interactive CMS login", zap.String("url", l.cfg.LoginURL))

	var captured []*http.Cookie
	err := chromedp.Run(runCtx,
		chromedp.Navigate(l.cfg.LoginURL),
		chromedp.WaitVisible(logoutLink, chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := network.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			for _, c := range cookies {
				cookie := &http.Cookie{
					Name:     c.Name,
					Value:    c.Value,
					Path:     c.Path,
					Domain:   c.Domain,
					Secure:   c.Secure,
					HttpOnly: c.HTTPOnly,
				}
				if c.Expires > 0 {
					cookie.Expires = time.Unix(int64(c.Expires), 0)
				}
				captured = append(captured, cookie)
			}
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("interactive login: %w", err)
	}

	l.session.SetCookies(captured)
	l.logger.Info("interactive login complete", zap.Int("cookies", len(captured)))
	return nil
}
