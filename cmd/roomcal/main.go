package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roomcal/internal/browser"
	"roomcal/internal/config"
	appLog "roomcal/internal/log"
	"roomcal/internal/pipeline"
)

// Credential environment variables. Kept out of the config file and out
// of the logs.
const (
	envUsername = "MYSCHOOL_USERNAME"
	envPassword = "MYSCHOOL_PASSWORD"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	outDir     string
	debug      bool
	debugLogin bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()

	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("roomcal starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		return 1
	}

	// CLI -out overrides the configured output directory if provided.
	if flags.outDir != "" {
		conf.OutputDir = flags.outDir
	}

	// Root context with cancellation on SIGINT/SIGTERM. The browser
	// session derives from this context, so an interrupt tears down
	// Chromium even mid-login.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.debugLogin {
		return runDebugLogin(ctx, conf)
	}

	if err := conf.Validate(); err != nil {
		appLog.Error("invalid config", err, "config_path", flags.configPath)
		return 1
	}

	creds := browser.Credentials{
		Username: os.Getenv(envUsername),
		Password: os.Getenv(envPassword),
	}
	if creds.Username == "" || creds.Password == "" {
		appLog.Error("missing credentials", errors.New("environment not set"),
			"hint", envUsername+" and "+envPassword+" must be set")
		return 1
	}

	appLog.Info("effective config",
		"timezone", conf.Timezone,
		"window_policy", conf.Window.Policy,
		"room_count", len(conf.Rooms),
		"output_dir", conf.OutputDir,
		"on_room_error", conf.OnRoomError,
		"uid_strategy", conf.UIDStrategy,
	)

	if err := pipeline.New(conf).Run(ctx, creds); err != nil {
		appLog.Error("run failed", err)
		return 1
	}

	appLog.Info("roomcal exiting")
	return 0
}

// runDebugLogin opens the login flow and dumps a screenshot + page HTML
// into ./debug, then exits. Credentials are not needed and not used.
func runDebugLogin(ctx context.Context, conf *config.Config) int {
	sess, err := browser.NewSession(ctx, browser.Options{
		LoginURL:     conf.LoginURL,
		AppURL:       conf.AppURL,
		Headless:     conf.HeadlessEnabled(),
		LoginTimeout: time.Duration(conf.LoginTimeoutSec) * time.Second,
	})
	if err != nil {
		appLog.Error("failed to start browser", err)
		return 1
	}
	defer sess.Close()

	if err := sess.DumpLoginDebug(ctx, "debug"); err != nil {
		appLog.Error("login debug dump failed", err)
		return 1
	}

	appLog.Info("login debug artifacts written", "dir", "debug")
	return 0
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "rooms.yaml", "Path to config file")
	flag.StringVar(&cfg.outDir, "out", "", "Output directory (overrides config if set)")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&cfg.debugLogin, "debug-login", false, "Dump login page screenshot + HTML and exit")

	flag.Parse()

	return cfg
}
