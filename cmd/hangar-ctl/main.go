// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// hangar-ctl is a command-line client for the Hangar container-hosting
// platform.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

var (
	version    = "0.3.0"
	configPath = ""
	jsonOutput = false
	locale     = ""

	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	// Set up by setup() before a command runs.
	env *environment
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses the global flags and dispatches to the command.
func run(argv []string) error {
	flags := pflag.NewFlagSet("hangar-ctl", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.SetOutput(io.Discard)
	flags.StringVar(&configPath, "config", "", "path to hangar.hjson")
	flags.BoolVar(&jsonOutput, "json", false, "output in JSON format")
	flags.StringVar(&locale, "locale", "", "message locale (en, fr)")
	if err := flags.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage()
			return nil
		}
		return err
	}

	args := flags.Args()
	if len(args) < 1 {
		printUsage()
		return errUsage
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case "version", "-v", "--version":
		fmt.Fprintf(stdout, "hangar-ctl %s\n", version)
		return nil
	case "help", "-h", "--help":
		printUsage()
		return nil
	}

	handler, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		printUsage()
		return errUsage
	}

	var err error
	if env, err = setup(); err != nil {
		return err
	}
	defer env.Close()

	return env.explain(handler(args))
}

var errUsage = errors.New("invalid usage")

var commands = map[string]func(args []string) error{
	"login":        cmdLogin,
	"logout":       cmdLogout,
	"whoami":       cmdWhoami,
	"projects":     cmdProjects,
	"deploy":       cmdDeploy,
	"show":         cmdShow,
	"status":       cmdStatus,
	"metrics":      cmdMetrics,
	"logs":         cmdLogs,
	"start":        cmdStart,
	"stop":         cmdStop,
	"restart":      cmdRestart,
	"delete":       cmdDelete,
	"update-image": cmdUpdateImage,
	"env":          cmdEnv,
	"participants": cmdParticipants,
	"admin":        cmdAdmin,
	"db":           cmdDB,
	"dash":         cmdDash,
	"watch":        cmdWatch,
}

func printUsage() {
	fmt.Fprintln(stdout, `hangar-ctl - Manage projects on the Hangar platform

Usage:
  hangar-ctl [--config F] [--json] [--locale L] <command> [arguments]

Global Flags:
  --config F     Configuration file (default: ./hangar.hjson, then ~/.config/hangar/hangar.hjson)
  --json         Output in JSON format
  --locale L     Message locale: en or fr

Environment:
  HANGAR_API     Base URL of the Hangar server
  HANGAR_CONFIG  Configuration file
  HANGAR_LOCALE  Message locale

Session:
  login [--no-browser]     Sign in through CAS
  logout                   Sign out
  whoami                   Show the signed-in user

Projects:
  projects [--owned|--participating]
                           List your projects
  deploy --name N (--image U | --github R [--branch B] [--root-dir D])
         [--participants a,b] [--env K=V]... [--volume P] [--create-db]
                           Deploy a new project
  show <id>                Show a project with its participants
  status <id>              Show the container state
  metrics <id>             Show CPU and memory usage
  logs <id> [options]      Show container logs
    --level <level>        Minimum level (info, warn, error)
    --grep <pattern>       Filter by regex pattern

Controls:
  start <id>               Start a project
  stop <id>                Stop a project
  restart <id>             Restart a project
  delete <id> [--yes]      Delete a project permanently
  update-image <id> <image> [--yes]
                           Redeploy from a new image
  env <id> [--file F | --set K=V ...]
                           Show or replace environment variables
  participants add|remove <id> <login> [--yes]
                           Manage read-only participants

Admin:
  admin [--down|--metrics|--projects]
                           Fleet overview (admins only)

Databases:
  db mine                  Show your database
  db create                Create your database
  db delete <id>           Drop a database
  db link <project> <db>   Link a database to a project
  db unlink <project>      Unlink the project's database
  db delete-linked <project>
                           Drop the project's linked database

Live:
  dash <id>                Terminal dashboard with live status and metrics
  watch <id> [--addr A]    Stream live updates over WebSocket

Other:
  version                  Show version
  help                     Show this help`)
}

func printJSON(v interface{}) {
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(stdout, string(out))
}

// parseFlags parses a command's flags. It returns pflag.ErrHelp
// unchanged so callers can stop quietly.
func parseFlags(flags *pflag.FlagSet, args []string) error {
	flags.SetOutput(stderr)
	return flags.Parse(args)
}

func newFlags(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}
