package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	appLog "roomcal/internal/log"
)

// DumpLoginDebug navigates to the login entry point without submitting
// anything and writes a full-page screenshot plus the page HTML into dir.
// Meant for diagnosing SSO form changes when Login stops finding its
// selectors.
func (s *Session) DumpLoginDebug(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("browser: create debug dir: %w", err)
	}

	var loc, html string
	var png []byte

	err := chromedp.Run(s.ctx,
		chromedp.Navigate(s.opts.LoginURL),
		// Give the SSO redirect chain time to land somewhere.
		chromedp.Sleep(2*time.Second),
		chromedp.Location(&loc),
		chromedp.FullScreenshot(&png, 100),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("browser: capture login debug: %w", err)
	}

	appLog.Info("login debug captured", "final_url", loc)

	if err := os.WriteFile(filepath.Join(dir, "screenshot.png"), png, 0o644); err != nil {
		return fmt.Errorf("browser: write screenshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "page.html"), []byte(html), 0o644); err != nil {
		return fmt.Errorf("browser: write page HTML: %w", err)
	}

	return nil
}
