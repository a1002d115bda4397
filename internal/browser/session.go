package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"

	appLog "roomcal/internal/log"
)

var (
	// ErrLoginTimeout means the page never left the login path within the
	// configured bound after submitting credentials.
	ErrLoginTimeout = errors.New("browser: login timed out waiting to leave the login page")

	// ErrTokenNotObserved means no outbound request carrying a bearer
	// token was seen within the retry budget.
	ErrTokenNotObserved = errors.New("browser: no authorized request observed")
)

// Credentials are the portal credentials. Never log either field.
type Credentials struct {
	Username string
	Password string
}

// Options configures a browser session.
type Options struct {
	// LoginURL is the portal login entry point. Its path component is
	// what the post-login URL transition is checked against.
	LoginURL string
	// AppURL is the application root whose page load emits the
	// authorized requests token capture observes.
	AppURL string

	Headless bool

	// LoginTimeout bounds the wait for the post-submit URL transition.
	LoginTimeout time.Duration
}

// Session owns the single headless Chromium instance for a run. It is
// created once, shared by login and token capture, and must be closed on
// every exit path.
type Session struct {
	opts      Options
	loginPath string

	ctx     context.Context
	cancels []context.CancelFunc
}

// NewSession launches a Chromium instance bound to parent. Cancelling
// parent (e.g. on SIGINT) tears the browser down even if Close is never
// reached.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	if opts.LoginURL == "" || opts.AppURL == "" {
		return nil, errors.New("browser: LoginURL and AppURL are required")
	}
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = 2 * time.Minute
	}

	u, err := url.Parse(opts.LoginURL)
	if err != nil {
		return nil, fmt.Errorf("browser: parse login URL: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		opts:      opts,
		loginPath: u.Path,
		ctx:       ctx,
		cancels:   []context.CancelFunc{ctxCancel, allocCancel},
	}

	// Start the browser now so launch failures surface here rather than
	// midway through login.
	if err := chromedp.Run(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser: start chromium: %w", err)
	}

	appLog.Debug("browser session started", "headless", opts.Headless)
	return s, nil
}

// Close releases the browser and its allocator, in that order. Safe to
// call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}
