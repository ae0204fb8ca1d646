// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/garageisep/hangar/internal/clock"
	"github.com/garageisep/hangar/internal/config"
	"github.com/garageisep/hangar/internal/cookiestore"
	"github.com/garageisep/hangar/internal/events"
	"github.com/garageisep/hangar/internal/i18n"
	"github.com/garageisep/hangar/internal/live"
	"github.com/garageisep/hangar/internal/route"
	"github.com/garageisep/hangar/internal/session"
	"github.com/garageisep/hangar/pkg/client"
)

// environment holds what every command shares.
type environment struct {
	cfg     *config.Config
	log     *slog.Logger
	logFile *os.File
	loc     *i18n.Localizer
	jar     *cookiestore.Jar
	api     *client.Client
	bus     *events.MemoryBus
	session *session.Controller
	nav     route.Navigator
}

func setup() (*environment, error) {
	cfg, _, err := config.NewLoader().Resolve(context.Background(), configPath)
	if err != nil {
		return nil, err
	}

	e := &environment{cfg: cfg}
	if err := e.openLog(); err != nil {
		return nil, err
	}

	loc := locale
	if loc == "" {
		loc = cfg.I18n.Locale
	}
	if loc == "" {
		loc = i18n.DetectLocale(os.Getenv)
	}
	if e.loc, err = i18n.New(loc, cfg.I18n.CatalogDir); err != nil {
		e.Close()
		return nil, err
	}

	if e.jar, err = cookiestore.Open(cfg.Session.StorePath, clock.Real(), e.log); err != nil {
		e.Close()
		return nil, err
	}

	e.api = client.New(cfg.API.BaseURL,
		client.WithCookieJar(e.jar),
		client.WithTimeout(cfg.API.TimeoutDuration()),
		client.WithUserAgent("hangar-ctl/"+version),
	)
	e.bus = events.NewMemoryBus(events.MemoryBusConfig{Logger: e.log})
	e.nav = route.NavigatorFunc(func(r route.Route) {
		e.log.Debug("navigate", "route", r.String())
	})
	e.session = session.NewController(session.NewStore(), e.api.Auth, session.Options{
		Navigator: e.nav,
		Bus:       e.bus,
		Logger:    e.log,
	})
	return e, nil
}

// openLog configures logging from the logging section. Records go to
// logging.file when set, stderr otherwise.
func (e *environment) openLog() error {
	var w io.Writer = stderr
	if path := e.cfg.Logging.File; path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		e.logFile = f
		w = f
	}
	e.log = newLogger(w, e.cfg.Logging)
	slog.SetDefault(e.log)
	return nil
}

// screenLogger is the logger for components running under the terminal
// dashboard, which owns stderr. Without a log file records are dropped.
func (e *environment) screenLogger() *slog.Logger {
	if e.logFile != nil {
		return e.log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Close releases the cookie store and log file.
func (e *environment) Close() {
	if e.bus != nil {
		e.bus.Close()
	}
	if e.jar != nil {
		if err := e.jar.Close(); err != nil {
			e.log.Warn("failed to close cookie store", "error", err)
		}
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}

// explain turns command errors into user-facing messages. API errors are
// prefixed with their localized text.
func (e *environment) explain(err error) error {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	var ctrlErr *live.ControlError
	if errors.As(err, &ctrlErr) {
		return fmt.Errorf("%s (%s)", ctrlErr.Message, ctrlErr.Code)
	}
	if errors.Is(err, live.ErrControlInFlight) {
		return errors.New(e.loc.T("project_dashboard.action_busy"))
	}
	if errors.Is(err, live.ErrCancelled) {
		return errors.New(e.loc.T("common.cancelled"))
	}
	var loginErr *session.LoginError
	if errors.As(err, &loginErr) {
		return fmt.Errorf("%s (%w)", e.loc.T(loginErr.Key), err)
	}
	if apiErr := client.AsAPIError(err); apiErr != nil {
		return fmt.Errorf("%s (%w)", e.loc.Error(apiErr.ErrorCode), err)
	}
	return err
}

// requireUser resolves the session and fails when nobody is signed in.
func (e *environment) requireUser(ctx context.Context) (*client.User, error) {
	e.session.Initialize(ctx)
	if e.session.RequireAuthenticated() != session.GateAllowed {
		return nil, errors.New(e.loc.T("auth.not_logged_in"))
	}
	return e.session.Store().Snapshot().User, nil
}

// synchronizer builds a live.Synchronizer from the poll configuration.
func (e *environment) synchronizer(confirm live.Confirmer, logger *slog.Logger) *live.Synchronizer {
	return live.New(e.api.Projects, live.Options{
		StatusInterval:  e.cfg.Poll.StatusEvery(),
		MetricsInterval: e.cfg.Poll.MetricsEvery(),
		RefreshDelay:    e.cfg.Poll.RefreshAfter(),
		Confirmer:       confirm,
		Navigator:       e.nav,
		Bus:             e.bus,
		Localizer:       e.loc,
		Logger:          logger,
	})
}

// promptConfirmer asks on stdin. Anything but y or yes declines.
func (e *environment) promptConfirmer() live.Confirmer {
	reader := bufio.NewReader(stdin)
	return live.ConfirmFunc(func(ctx context.Context, prompt string) bool {
		fmt.Fprintf(stdout, "%s %s ", prompt, e.loc.T("common.yes_no"))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "o", "oui":
			return true
		}
		return false
	})
}

func (e *environment) confirmer(yes bool) live.Confirmer {
	if yes {
		return live.AlwaysConfirm
	}
	return e.promptConfirmer()
}

// parseID parses a project or database identifier argument.
func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
