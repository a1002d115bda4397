package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	appLog "roomcal/internal/log"
)

// Form selectors cover both the portal's own login form (#username) and
// the CAS variant (input[name="username"]).
const (
	userSelector   = `#username, input[name="username"]`
	passSelector   = `#password, input[name="password"]`
	submitSelector = `button[type="submit"], input[type="submit"]`
)

// Login submits credentials and waits for the redirect-driven flow to
// complete. Success is detected by the page URL leaving the login path,
// not by a status code: the SSO gateway answers with redirects whatever
// the outcome. The wait is bounded by Options.LoginTimeout; on expiry the
// call fails with ErrLoginTimeout.
func (s *Session) Login(ctx context.Context, creds Credentials) error {
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("browser: credentials are empty")
	}

	appLog.Info("logging in", "login_url", s.opts.LoginURL, "username", appLog.Redact(creds.Username))

	err := chromedp.Run(s.ctx,
		chromedp.Navigate(s.opts.LoginURL),
		chromedp.WaitVisible(userSelector, chromedp.ByQuery),
		chromedp.SendKeys(userSelector, creds.Username, chromedp.ByQuery),
		chromedp.SendKeys(passSelector, creds.Password, chromedp.ByQuery),
		chromedp.Click(submitSelector, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("browser: submit login form: %w", err)
	}

	if err := s.waitForLoginTransition(ctx); err != nil {
		return err
	}

	// Let the post-login redirects settle before anything else drives
	// the page.
	_ = chromedp.Run(s.ctx, chromedp.Sleep(time.Second))

	appLog.Info("login succeeded")
	return nil
}

// waitForLoginTransition polls the current location until its path no
// longer ends with the login path.
func (s *Session) waitForLoginTransition(ctx context.Context) error {
	deadline := time.Now().Add(s.opts.LoginTimeout)

	for {
		var loc string
		if err := chromedp.Run(s.ctx, chromedp.Location(&loc)); err != nil {
			return fmt.Errorf("browser: read location: %w", err)
		}

		if u, err := url.Parse(loc); err == nil && !strings.HasSuffix(u.Path, s.loginPath) {
			appLog.Debug("left login page", "path", u.Path)
			return nil
		}

		if time.Now().After(deadline) {
			return ErrLoginTimeout
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}
