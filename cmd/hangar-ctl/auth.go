// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/garageisep/hangar/internal/login"
)

func cmdLogin(args []string) error {
	flags := newFlags("login")
	noBrowser := flags.Bool("no-browser", false, "print the sign-in URL instead of opening a browser")
	if err := parseFlags(flags, args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	listener := login.NewListener(login.Config{
		Addr:    env.cfg.Login.CallbackAddr,
		CASURL:  env.cfg.Login.CASURL,
		Timeout: env.cfg.Login.TimeoutDuration(),
	}, env.session, env.loc, env.log)
	if err := listener.Start(); err != nil {
		return err
	}
	defer listener.Close()

	target := listener.LoginURL()
	fmt.Fprintln(stdout, env.loc.T("auth.open_browser", "url", target))
	if !*noBrowser {
		if err := login.OpenBrowser(target); err != nil {
			env.log.Warn("failed to open browser", "error", err)
		}
	}

	fmt.Fprintln(stdout, env.loc.T("auth.logging_in"))
	user, err := listener.Wait(ctx)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(user)
		return nil
	}
	fmt.Fprintln(stdout, env.loc.T("auth.logged_in_as", "name", user.Name, "login", user.Login))
	return nil
}

func cmdLogout(args []string) error {
	ctx := context.Background()
	if _, err := env.requireUser(ctx); err != nil {
		return err
	}
	if err := env.session.Logout(ctx); err != nil {
		return err
	}
	if err := env.jar.Clear(); err != nil {
		env.log.Warn("failed to clear cookie store", "error", err)
	}
	fmt.Fprintln(stdout, env.loc.T("auth.logged_out"))
	return nil
}

func cmdWhoami(args []string) error {
	user, err := env.requireUser(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(user)
		return nil
	}
	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(stdout, "%-8s %s\n", "LOGIN", user.Login)
	fmt.Fprintf(stdout, "%-8s %s\n", "NAME", user.Name)
	fmt.Fprintf(stdout, "%-8s %s\n", "EMAIL", user.Email)
	fmt.Fprintf(stdout, "%-8s %s\n", "ROLE", role)
	return nil
}

