package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"roomcal/internal/model"
)

// Window policies. "lookback" queries from N days back through M days
// ahead; "week" queries whole Monday-aligned weeks.
const (
	WindowPolicyLookback = "lookback"
	WindowPolicyWeek     = "week"
)

// UID strategies (see internal/myschool).
const (
	UIDStrategyHash   = "hash"
	UIDStrategyConcat = "concat"
)

// Room-failure policies for the run.
const (
	RoomErrorAbort = "abort"
	RoomErrorSkip  = "skip"
)

// WindowConfig selects and parameterizes the query window policy.
type WindowConfig struct {
	Policy       string `yaml:"policy" json:"policy"`
	LookbackDays int    `yaml:"lookback_days" json:"lookback_days"`
	HorizonDays  int    `yaml:"horizon_days" json:"horizon_days"`
	// Weeks is the number of Monday-aligned weeks covered by the "week"
	// policy, starting from the current week.
	Weeks int `yaml:"weeks" json:"weeks"`
}

// Config is the top-level application configuration.
type Config struct {
	// LoginURL is the portal login entry point (CAS redirects from here).
	LoginURL string `yaml:"login_url" json:"login_url"`
	// AppURL is the planning application root; loading it triggers the
	// authorized requests the token capture observes.
	AppURL string `yaml:"app_url" json:"app_url"`
	// APIURL is the planning API base, e.g.
	// "https://myschool.centralesupelec.fr/plannings/api".
	APIURL string `yaml:"api_url" json:"api_url"`

	// Timezone is the IANA reference timezone for window computation.
	Timezone string `yaml:"timezone" json:"timezone"`

	Window WindowConfig `yaml:"window" json:"window"`

	// Rooms is the ordered list of rooms to export. Must be non-empty.
	Rooms []model.Room `yaml:"rooms" json:"rooms"`

	// OutputDir receives <slug>.ics per room plus the aggregate file.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// CalendarPrefix prefixes each per-room calendar display name.
	CalendarPrefix string `yaml:"calendar_prefix" json:"calendar_prefix"`
	// AggregateName is the display name of the merged calendar.
	AggregateName string `yaml:"aggregate_name" json:"aggregate_name"`

	// OnRoomError selects what a failed room fetch does to the run:
	// "abort" (default) or "skip".
	OnRoomError string `yaml:"on_room_error" json:"on_room_error"`

	// UIDStrategy selects event identity generation: "hash" or "concat".
	UIDStrategy string `yaml:"uid_strategy" json:"uid_strategy"`

	// LoginTimeoutSec bounds the wait for the post-login URL transition.
	LoginTimeoutSec int `yaml:"login_timeout_sec" json:"login_timeout_sec"`
	// TokenAttempts bounds the reload-and-observe token capture loop.
	TokenAttempts int `yaml:"token_attempts" json:"token_attempts"`
	// TokenAttemptTimeoutSec bounds each single observation attempt.
	TokenAttemptTimeoutSec int `yaml:"token_attempt_timeout_sec" json:"token_attempt_timeout_sec"`
	// FetchTimeoutSec bounds each per-room API request.
	FetchTimeoutSec int `yaml:"fetch_timeout_sec" json:"fetch_timeout_sec"`

	// Headless controls the Chromium instance; defaults to true when
	// omitted. Non-headless is only useful together with -debug-login.
	Headless *bool `yaml:"headless,omitempty" json:"headless,omitempty"`
}

// HeadlessEnabled reports the effective headless setting.
func (c *Config) HeadlessEnabled() bool {
	return c.Headless == nil || *c.Headless
}

// ValidationError reports a configuration value that makes the run
// impossible. It is always detected before any network activity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "config: " + e.Field + ": " + e.Reason
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		LoginURL: "https://myschool.centralesupelec.fr/plannings/login",
		AppURL:   "https://myschool.centralesupelec.fr/plannings/",
		APIURL:   "https://myschool.centralesupelec.fr/plannings/api",
		Timezone: "Europe/Paris",
		Window: WindowConfig{
			Policy:       WindowPolicyLookback,
			LookbackDays: 2,
			HorizonDays:  45,
			Weeks:        2,
		},
		Rooms:                  []model.Room{},
		OutputDir:              "calendars",
		CalendarPrefix:         "MySchool – ",
		AggregateName:          "MySchool – Music Rooms (ALL)",
		OnRoomError:            RoomErrorAbort,
		UIDStrategy:            UIDStrategyHash,
		LoginTimeoutSec:        120,
		TokenAttempts:          2,
		TokenAttemptTimeoutSec: 60,
		FetchTimeoutSec:        30,
		Headless:               boolPtr(true),
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave correctly. Values that are present but
// invalid are left alone for Validate to reject.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.LoginURL == "" {
		c.LoginURL = def.LoginURL
	}
	if c.AppURL == "" {
		c.AppURL = def.AppURL
	}
	if c.APIURL == "" {
		c.APIURL = def.APIURL
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Window.Policy == "" {
		c.Window.Policy = def.Window.Policy
	}
	if c.Window.LookbackDays == 0 {
		c.Window.LookbackDays = def.Window.LookbackDays
	}
	if c.Window.HorizonDays == 0 {
		c.Window.HorizonDays = def.Window.HorizonDays
	}
	if c.Window.Weeks == 0 {
		c.Window.Weeks = def.Window.Weeks
	}
	if c.Rooms == nil {
		c.Rooms = []model.Room{}
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.CalendarPrefix == "" {
		c.CalendarPrefix = def.CalendarPrefix
	}
	if c.AggregateName == "" {
		c.AggregateName = def.AggregateName
	}
	if c.OnRoomError == "" {
		c.OnRoomError = def.OnRoomError
	}
	if c.UIDStrategy == "" {
		c.UIDStrategy = def.UIDStrategy
	}
	if c.LoginTimeoutSec == 0 {
		c.LoginTimeoutSec = def.LoginTimeoutSec
	}
	if c.TokenAttempts == 0 {
		c.TokenAttempts = def.TokenAttempts
	}
	if c.TokenAttemptTimeoutSec == 0 {
		c.TokenAttemptTimeoutSec = def.TokenAttemptTimeoutSec
	}
	if c.FetchTimeoutSec == 0 {
		c.FetchTimeoutSec = def.FetchTimeoutSec
	}
	if c.Headless == nil {
		c.Headless = def.Headless
	}
}

func boolPtr(b bool) *bool { return &b }

// Validate rejects configs that cannot produce a correct run. It must be
// called (and pass) before any network or browser activity.
func (c *Config) Validate() error {
	if len(c.Rooms) == 0 {
		return &ValidationError{Field: "rooms", Reason: "no rooms configured"}
	}
	seen := make(map[string]bool, len(c.Rooms))
	for i, r := range c.Rooms {
		if r.ID <= 0 {
			return &ValidationError{Field: fmt.Sprintf("rooms[%d].id", i), Reason: "must be a positive resource id"}
		}
		if r.Slug == "" {
			return &ValidationError{Field: fmt.Sprintf("rooms[%d].slug", i), Reason: "must be set (names the output file)"}
		}
		if seen[r.Slug] {
			return &ValidationError{Field: fmt.Sprintf("rooms[%d].slug", i), Reason: "duplicate slug " + r.Slug}
		}
		seen[r.Slug] = true
	}

	switch c.Window.Policy {
	case WindowPolicyLookback:
		if c.Window.LookbackDays < 0 {
			return &ValidationError{Field: "window.lookback_days", Reason: "must not be negative"}
		}
		if c.Window.HorizonDays < 0 {
			return &ValidationError{Field: "window.horizon_days", Reason: "must not be negative"}
		}
	case WindowPolicyWeek:
		if c.Window.Weeks < 1 {
			return &ValidationError{Field: "window.weeks", Reason: "must be at least 1"}
		}
	default:
		return &ValidationError{Field: "window.policy", Reason: "unknown policy " + c.Window.Policy}
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return &ValidationError{Field: "timezone", Reason: "unknown timezone " + c.Timezone}
	}

	switch c.OnRoomError {
	case RoomErrorAbort, RoomErrorSkip:
	default:
		return &ValidationError{Field: "on_room_error", Reason: "must be abort or skip"}
	}

	switch c.UIDStrategy {
	case UIDStrategyHash, UIDStrategyConcat:
	default:
		return &ValidationError{Field: "uid_strategy", Reason: "must be hash or concat"}
	}

	if c.LoginTimeoutSec <= 0 || c.TokenAttempts <= 0 || c.TokenAttemptTimeoutSec <= 0 || c.FetchTimeoutSec <= 0 {
		return &ValidationError{Field: "timeouts", Reason: "all timeouts and attempt counts must be positive"}
	}

	return nil
}

// Location returns the parsed reference timezone. Validate must have
// passed first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		// Validate guarantees this cannot happen; fall back anyway.
		return time.UTC
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there (0600)
//     and returned. The default carries no rooms, so Validate will still
//     refuse to run until the operator fills it in.
//   - If the file exists, it is unmarshalled and normalized.
//
// Load does not call Validate; callers decide when to.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Writes go through a temp file + rename in the target directory so a
// crash never leaves a half-written config, and the final file is 0600
// (the config names the portal, not credentials, but slugs and room ids
// are still institution-internal).
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".roomcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
