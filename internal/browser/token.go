package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	appLog "roomcal/internal/log"
)

// RetryPolicy bounds the reload-and-observe token capture loop. It is an
// explicit value so the retry behavior can be tested apart from Chromium.
type RetryPolicy struct {
	// MaxAttempts is the number of observation attempts. Values below 1
	// are treated as 1.
	MaxAttempts int
	// AttemptTimeout bounds a single attempt.
	AttemptTimeout time.Duration
}

// CaptureToken observes outbound requests from the application root for
// an "Authorization: Bearer <token>" header and returns the token. The
// single-page app exposes no token endpoint, so capture works by
// watching what the app itself sends; the page is reloaded between
// attempts because the token-bearing request is not guaranteed on first
// load. Exhausting the policy fails with ErrTokenNotObserved.
func (s *Session) CaptureToken(ctx context.Context, policy RetryPolicy) (string, error) {
	tokenCh := make(chan string, 1)

	listenCtx, stopListening := context.WithCancel(s.ctx)
	defer stopListening()

	chromedp.ListenTarget(listenCtx, func(ev interface{}) {
		req, ok := ev.(*network.EventRequestWillBeSent)
		if !ok {
			return
		}
		if tok := bearerFromHeaders(req.Request.Headers); tok != "" {
			select {
			case tokenCh <- tok:
			default:
			}
		}
	})

	if err := chromedp.Run(s.ctx, network.Enable(), chromedp.Navigate(s.opts.AppURL)); err != nil {
		return "", fmt.Errorf("browser: open app root: %w", err)
	}

	attempt := func(attemptCtx context.Context) (string, error) {
		select {
		case tok := <-tokenCh:
			return tok, nil
		case <-attemptCtx.Done():
			// No authorized request this time around; reload so the next
			// attempt gets a fresh page load to observe.
			if err := chromedp.Run(s.ctx, chromedp.Reload()); err != nil {
				return "", fmt.Errorf("browser: reload app root: %w", err)
			}
			return "", attemptCtx.Err()
		}
	}

	token, err := captureWithRetry(ctx, policy, attempt)
	if err != nil {
		return "", err
	}

	appLog.Info("bearer token captured", "token", appLog.Redact(token))
	return token, nil
}

// captureWithRetry drives attempt up to policy.MaxAttempts times, each
// under its own AttemptTimeout. A timed-out attempt moves on to the next
// one; any other attempt error is returned as-is. Exhaustion yields
// ErrTokenNotObserved.
func captureWithRetry(ctx context.Context, policy RetryPolicy, attempt func(context.Context) (string, error)) (string, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, policy.AttemptTimeout)
		tok, err := attempt(attemptCtx)
		cancel()

		if err == nil && tok != "" {
			return tok, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		appLog.Debug("token not observed, retrying", "attempt", i+1, "max_attempts", attempts)
	}

	return "", ErrTokenNotObserved
}

// bearerFromHeaders extracts the token from a request header map. Header
// casing is not stable across Chromium versions.
func bearerFromHeaders(h network.Headers) string {
	for k, v := range h {
		if !strings.EqualFold(k, "authorization") {
			continue
		}
		val, ok := v.(string)
		if !ok {
			continue
		}
		if strings.HasPrefix(val, "Bearer ") {
			return strings.TrimPrefix(val, "Bearer ")
		}
	}
	return ""
}
