package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/schoolwatch/vtrack/internal/auth"
	"github.com/schoolwatch/vtrack/internal/bus"
	"github.com/schoolwatch/vtrack/internal/daemon"
	"github.com/schoolwatch/vtrack/internal/logging"
	"github.com/schoolwatch/vtrack/internal/profile"
	"github.com/schoolwatch/vtrack/internal/search"
	"github.com/schoolwatch/vtrack/internal/tui"
	"github.com/schoolwatch/vtrack/internal/tui/client"
	"github.com/schoolwatch/vtrack/internal/tui/model"
	"go.uber.org/zap"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	flag.Parse()

	profileName := profile.Resolve(*profileFlag)
	if err := profile.ValidateName(profileName); err != nil {
		fatal(err)
	}
	cfg, err := profile.LoadConfig()
	if err != nil {
		fatal(err)
	}

	logger, err := logging.NewFile(profile.ClientLogPath(profileName), profileName)
	if err != nil {
		fatal(fmt.Errorf("open log: %w", err))
	}
	defer func() { _ = logger.Sync() }()

	socketPath := profile.ControlSocketPath(profileName)
	if cfg.AutostartDaemon && !daemon.Running(socketPath) {
		fmt.Fprintf(os.Stderr, "daemon not running for profile %q, starting...\n", profileName)
		if err := daemon.Spawn(profileName); err != nil {
			fatal(fmt.Errorf("start daemon: %w", err))
		}
		if !daemon.WaitReady(socketPath, 10*time.Second) {
			fatal(fmt.Errorf("daemon did not become ready"))
		}
	}

	typ, err := search.ParseType(cfg.DefaultSearchType)
	if err != nil {
		fatal(err)
	}

	c, err := client.New(cfg.BaseURL, client.WithLogger(logger.Named("client")))
	if err != nil {
		fatal(err)
	}

	b := bus.New()
	a := auth.New(c, profile.AuthPath(profileName), cfg.RequestTimeout.Duration, b, logger.Named("auth"))
	if err := a.Bootstrap(); err != nil {
		logger.Warn("ignoring saved login", zap.Error(err))
	}

	newSession := func() *search.Session {
		return search.NewSession(c,
			search.WithDebounce(cfg.Debounce()),
			search.WithTimeout(cfg.RequestTimeout.Duration),
			search.WithType(typ),
			search.WithDiscardStale(cfg.DiscardStaleSuggestions),
			search.WithBus(b),
			search.WithLogger(logger.Named("search")),
		)
	}
	vm := model.NewViewModel(a, newSession, logger.Named("tui"))

	app := tui.NewApp(vm, tui.Options{Profile: profileName, Bus: b, Logger: logger.Named("tui")})
	if err := app.Run(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
