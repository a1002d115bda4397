package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"roomcal/internal/browser"
	"roomcal/internal/config"
	"roomcal/internal/ics"
	appLog "roomcal/internal/log"
	"roomcal/internal/model"
	"roomcal/internal/myschool"
	"roomcal/internal/window"
)

// aggregateFilename is the merged calendar file next to the per-room ones.
const aggregateFilename = "ALL.ics"

// Fetcher retrieves a raw booking payload for one room.
type Fetcher interface {
	FetchRoomEvents(ctx context.Context, roomID int, w model.TimeWindow, token string) (*myschool.Payload, error)
}

// Authenticator performs the browser-driven login and token capture.
type Authenticator interface {
	Login(ctx context.Context, creds browser.Credentials) error
	CaptureToken(ctx context.Context, policy browser.RetryPolicy) (string, error)
}

// Pipeline is one run of the export: compute the window, log in, capture
// the token, fetch and normalize every room, then write all files.
type Pipeline struct {
	cfg        *config.Config
	normalizer *myschool.Normalizer

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

// New builds a pipeline for the given validated config.
func New(cfg *config.Config) *Pipeline {
	var uidStrategy myschool.UIDStrategy
	switch cfg.UIDStrategy {
	case config.UIDStrategyConcat:
		uidStrategy = myschool.ConcatUID{}
	default:
		uidStrategy = myschool.HashUID{Prefix: "myschool-"}
	}

	return &Pipeline{
		cfg:        cfg,
		normalizer: myschool.NewNormalizer(uidStrategy),
		Now:        time.Now,
	}
}

// Run executes the full export against live collaborators. The browser
// session is released on every exit path.
func (p *Pipeline) Run(ctx context.Context, creds browser.Credentials) error {
	sess, err := browser.NewSession(ctx, browser.Options{
		LoginURL:     p.cfg.LoginURL,
		AppURL:       p.cfg.AppURL,
		Headless:     p.cfg.HeadlessEnabled(),
		LoginTimeout: time.Duration(p.cfg.LoginTimeoutSec) * time.Second,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	client := myschool.NewClient(p.cfg.APIURL, time.Duration(p.cfg.FetchTimeoutSec)*time.Second)

	return p.run(ctx, sess, client, creds)
}

// run is the collaborator-injected core, used by Run and by tests.
func (p *Pipeline) run(ctx context.Context, auth Authenticator, fetcher Fetcher, creds browser.Credentials) error {
	runID := uuid.NewString()
	appLog.Info("run starting", "run_id", runID, "rooms", len(p.cfg.Rooms))

	w := window.Compute(p.Now(), p.cfg.Location(), p.cfg.Window)
	appLog.Info("query window computed",
		"run_id", runID,
		"date_start", window.EncodeStart(w.Start),
		"date_end", window.EncodeEnd(w.End),
	)

	if err := auth.Login(ctx, creds); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	token, err := auth.CaptureToken(ctx, browser.RetryPolicy{
		MaxAttempts:    p.cfg.TokenAttempts,
		AttemptTimeout: time.Duration(p.cfg.TokenAttemptTimeoutSec) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("token capture: %w", err)
	}

	aggregate := ics.NewCalendar(p.cfg.AggregateName)
	perRoom := make([]roomOutput, 0, len(p.cfg.Rooms))

	for _, room := range p.cfg.Rooms {
		payload, err := fetcher.FetchRoomEvents(ctx, room.ID, w, token)
		if err != nil {
			if p.cfg.OnRoomError == config.RoomErrorSkip {
				appLog.Warn("room fetch failed, skipping", "run_id", runID, "room", room.Slug, "err", err)
				continue
			}
			return fmt.Errorf("fetch for room %s: %w", room.Slug, err)
		}

		// Default event location: the configured room name, falling back
		// to the resource title the API returns with withTitle=true.
		defaultLocation := room.Name
		if defaultLocation == "" {
			defaultLocation = payload.Meta.Title
		}
		events := p.normalizer.Normalize(payload, defaultLocation)

		cal := ics.NewCalendar(p.cfg.CalendarPrefix + room.Name)
		cal.AddAll(events)
		aggregate.AddAll(events)

		appLog.Info("room processed", "run_id", runID, "room", room.Slug, "events", cal.Len())
		perRoom = append(perRoom, roomOutput{filename: room.Slug + ".ics", cal: cal})
	}

	// All rooms fetched and normalized; only now touch the output
	// directory, so an aborted run never publishes a partial set.
	for _, out := range perRoom {
		if err := ics.WriteFile(p.cfg.OutputDir, out.filename, out.cal.Serialize()); err != nil {
			return err
		}
	}
	if err := ics.WriteFile(p.cfg.OutputDir, aggregateFilename, aggregate.Serialize()); err != nil {
		return err
	}

	appLog.Info("run finished", "run_id", runID, "files", len(perRoom)+1, "aggregate_events", aggregate.Len())
	return nil
}

type roomOutput struct {
	filename string
	cal      *ics.Calendar
}
