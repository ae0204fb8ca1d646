// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/garageisep/hangar/internal/live"
	"github.com/garageisep/hangar/internal/present"
)

var errNotOwner = errors.New("only the project owner or an admin can do this")

// withView mounts the project, checks the caller may control it and runs
// fn. The view is closed on return.
func withView(id int, confirm live.Confirmer, fn func(ctx context.Context, v *live.View) error) error {
	ctx := context.Background()
	if _, err := env.requireUser(ctx); err != nil {
		return err
	}

	v, err := env.synchronizer(confirm, env.log).Mount(ctx, id)
	if err != nil {
		return err
	}
	defer v.Close()

	if !env.session.CanControl(v.Snapshot().Project.Owner) {
		return errNotOwner
	}
	return fn(ctx, v)
}

func done() {
	if !jsonOutput {
		fmt.Fprintln(stdout, env.loc.T("project_dashboard.action_done"))
	}
}

func lifecycle(cmd string, args []string, action func(*live.View, context.Context) error) error {
	id, err := projectArg(cmd, args)
	if err != nil {
		return err
	}
	return withView(id, nil, func(ctx context.Context, v *live.View) error {
		if err := action(v, ctx); err != nil {
			return err
		}
		if jsonOutput {
			printJSON(map[string]interface{}{"id": id, "action": cmd, "ok": true})
		}
		done()
		return nil
	})
}

func cmdStart(args []string) error {
	return lifecycle("start", args, (*live.View).Start)
}

func cmdStop(args []string) error {
	return lifecycle("stop", args, (*live.View).Stop)
}

func cmdRestart(args []string) error {
	return lifecycle("restart", args, (*live.View).Restart)
}

func cmdDelete(args []string) error {
	flags := newFlags("delete")
	yes := flags.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	id, err := projectArg("delete", flags.Args())
	if err != nil {
		return err
	}

	return withView(id, env.confirmer(*yes), func(ctx context.Context, v *live.View) error {
		if err := v.Delete(ctx); err != nil {
			return err
		}
		done()
		return nil
	})
}

func cmdUpdateImage(args []string) error {
	flags := newFlags("update-image")
	yes := flags.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) < 2 {
		return errors.New("usage: hangar-ctl update-image <id> <image> [--yes]")
	}
	id, err := parseID(rest[0])
	if err != nil {
		return err
	}

	return withView(id, env.confirmer(*yes), func(ctx context.Context, v *live.View) error {
		if err := v.UpdateImage(ctx, rest[1]); err != nil {
			return err
		}
		done()
		return nil
	})
}

func cmdEnv(args []string) error {
	flags := newFlags("env")
	file := flags.String("file", "", "read KEY=VALUE lines from this file (- for stdin)")
	set := flags.StringArray("set", nil, "set K=V (repeatable); replaces the whole environment")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	id, err := projectArg("env", flags.Args())
	if err != nil {
		return err
	}
	if *file != "" && len(*set) > 0 {
		return errors.New("--file and --set are mutually exclusive")
	}

	// Without --file or --set, print the current environment.
	if *file == "" && len(*set) == 0 {
		ctx := context.Background()
		if _, err := env.requireUser(ctx); err != nil {
			return err
		}
		project, err := env.api.Projects.Get(ctx, id)
		if err != nil {
			return err
		}
		if jsonOutput {
			printJSON(project.EnvVars)
			return nil
		}
		fmt.Fprint(stdout, present.FormatEnvVars(project.EnvVars))
		return nil
	}

	text := strings.Join(*set, "\n")
	if *file != "" {
		data, err := readInput(*file)
		if err != nil {
			return err
		}
		text = data
	}
	vars := present.ParseEnvVars(text)

	return withView(id, nil, func(ctx context.Context, v *live.View) error {
		if err := v.UpdateEnv(ctx, vars); err != nil {
			return err
		}
		done()
		return nil
	})
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read env from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read env file: %w", err)
	}
	return string(data), nil
}

func cmdParticipants(args []string) error {
	flags := newFlags("participants")
	yes := flags.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	rest := flags.Args()
	if len(rest) < 3 {
		return errors.New("usage: hangar-ctl participants add|remove <id> <login> [--yes]")
	}
	id, err := parseID(rest[1])
	if err != nil {
		return err
	}
	login := rest[2]

	switch rest[0] {
	case "add":
		return withView(id, nil, func(ctx context.Context, v *live.View) error {
			if err := v.AddParticipant(ctx, login); err != nil {
				return err
			}
			done()
			return nil
		})
	case "remove":
		return withView(id, env.confirmer(*yes), func(ctx context.Context, v *live.View) error {
			if err := v.RemoveParticipant(ctx, login); err != nil {
				return err
			}
			done()
			return nil
		})
	default:
		return fmt.Errorf("unknown participants subcommand: %s", rest[0])
	}
}
