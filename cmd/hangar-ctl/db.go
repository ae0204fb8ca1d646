// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/garageisep/hangar/pkg/client"
)

func cmdDB(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: hangar-ctl db mine|create|delete|link|unlink|delete-linked")
	}

	ctx := context.Background()
	if _, err := env.requireUser(ctx); err != nil {
		return err
	}

	switch args[0] {
	case "mine":
		return cmdDBMine(ctx)
	case "create":
		return cmdDBCreate(ctx)
	case "delete":
		ids, err := dbArgs("delete <id>", args[1:], 1)
		if err != nil {
			return err
		}
		return dbDone(env.api.Databases.Delete(ctx, ids[0]))
	case "link":
		ids, err := dbArgs("link <project> <db>", args[1:], 2)
		if err != nil {
			return err
		}
		return dbDone(env.api.Databases.Link(ctx, ids[0], ids[1]))
	case "unlink":
		ids, err := dbArgs("unlink <project>", args[1:], 1)
		if err != nil {
			return err
		}
		return dbDone(env.api.Databases.Unlink(ctx, ids[0]))
	case "delete-linked":
		ids, err := dbArgs("delete-linked <project>", args[1:], 1)
		if err != nil {
			return err
		}
		return dbDone(env.api.Databases.DeleteLinked(ctx, ids[0]))
	default:
		return fmt.Errorf("unknown db subcommand: %s", args[0])
	}
}

func dbArgs(usage string, args []string, n int) ([]int, error) {
	if len(args) < n {
		return nil, fmt.Errorf("usage: hangar-ctl db %s", usage)
	}
	ids := make([]int, n)
	for i := range ids {
		id, err := parseID(args[i])
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func dbDone(err error) error {
	if err != nil {
		return err
	}
	done()
	return nil
}

func cmdDBMine(ctx context.Context) error {
	db, err := env.api.Databases.Mine(ctx)
	if client.ErrorCode(err) == client.ErrCodeNotFound {
		if jsonOutput {
			printJSON(nil)
			return nil
		}
		fmt.Fprintln(stdout, env.loc.T("database.none"))
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(db)
		return nil
	}
	printDatabase(db)
	return nil
}

func cmdDBCreate(ctx context.Context) error {
	db, err := env.api.Databases.Create(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		printJSON(db)
		return nil
	}
	fmt.Fprintln(stdout, env.loc.T("database.created", "name", db.DatabaseName))
	printDatabase(db)
	return nil
}

func printDatabase(db *client.DatabaseDetails) {
	fmt.Fprintln(stdout, env.loc.T("database.title"))
	fmt.Fprintf(stdout, "  %-10s %d\n", "ID", db.ID)
	fmt.Fprintf(stdout, "  %-10s %s\n", "NAME", db.DatabaseName)
	fmt.Fprintf(stdout, "  %-10s %s\n", "USER", db.Username)
	fmt.Fprintf(stdout, "  %-10s %s\n", "PASSWORD", db.Password)
	fmt.Fprintf(stdout, "  %-10s %s:%d\n", "HOST", db.Host, db.Port)
	if db.ProjectID != nil {
		fmt.Fprintln(stdout, "  "+env.loc.T("database.linked_to", "id", strconv.Itoa(*db.ProjectID)))
	}
}
