// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/garageisep/hangar/internal/api"
	"github.com/garageisep/hangar/internal/live"
	"github.com/garageisep/hangar/internal/tui"
	"github.com/garageisep/hangar/internal/watcher"
)

var errNoTerminal = errors.New("dash needs an interactive terminal; use watch or status instead")

func cmdDash(args []string) error {
	id, err := projectArg("dash", args)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNoTerminal
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := env.requireUser(ctx); err != nil {
		return err
	}

	logger := env.screenLogger()
	if cw := env.watchCatalogs(); cw != nil {
		defer cw.Close()
	}

	// The dashboard asks for confirmation itself before calling the view.
	v, err := env.synchronizer(live.AlwaysConfirm, logger).Mount(ctx, id)
	if err != nil {
		return err
	}

	canControl := env.session.CanControl(v.Snapshot().Project.Owner)
	deleted, err := tui.Run(ctx, v, env.loc, canControl)
	if err != nil {
		return err
	}
	if deleted {
		done()
	}
	return nil
}

func cmdWatch(args []string) error {
	flags := newFlags("watch")
	addr := flags.String("addr", env.cfg.Relay.Addr, "relay listen address")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	id, err := projectArg("watch", flags.Args())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := env.requireUser(ctx); err != nil {
		return err
	}
	if cw := env.watchCatalogs(); cw != nil {
		defer cw.Close()
	}

	v, err := env.synchronizer(nil, env.log).Mount(ctx, id)
	if err != nil {
		return err
	}
	defer v.Close()

	server := api.NewServer(api.ServerConfig{Addr: *addr}, api.Dependencies{
		Bus:    env.bus,
		View:   func() *live.View { return v },
		Logger: env.log,
	})
	if err := server.Listen(); err != nil {
		return fmt.Errorf("relay: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Serve() }()

	base := "http://" + server.Addr()
	if jsonOutput {
		printJSON(map[string]string{
			"websocket": "ws://" + server.Addr() + "/ws?pattern=project.*",
			"view":      base + "/api/view",
		})
	} else {
		fmt.Fprintf(stdout, "Streaming project %d\n", id)
		fmt.Fprintf(stdout, "  %-10s ws://%s/ws?pattern=project.*\n", "WebSocket", server.Addr())
		fmt.Fprintf(stdout, "  %-10s %s/api/view\n", "Snapshot", base)
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// watchCatalogs reloads override catalogs on change when i18n.watch is
// set. It returns nil when watching is off or cannot start.
func (e *environment) watchCatalogs() *watcher.CatalogWatcher {
	if !e.cfg.I18n.Watch || e.cfg.I18n.CatalogDir == "" {
		return nil
	}
	cw, err := watcher.NewCatalogWatcher(e.cfg.I18n.CatalogDir, e.loc, watcher.Options{
		Bus:    e.bus,
		Logger: e.log,
	})
	if err != nil {
		e.log.Warn("catalog watch disabled", "dir", e.cfg.I18n.CatalogDir, "error", err)
		return nil
	}
	return cw
}
