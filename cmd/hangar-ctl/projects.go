// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/garageisep/hangar/internal/logs"
	"github.com/garageisep/hangar/internal/present"
	"github.com/garageisep/hangar/pkg/client"
)

func cmdProjects(args []string) error {
	flags := newFlags("projects")
	ownedOnly := flags.Bool("owned", false, "only projects you own")
	participatingOnly := flags.Bool("participating", false, "only projects you participate in")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	if *ownedOnly && *participatingOnly {
		return errors.New("--owned and --participating are mutually exclusive")
	}

	ctx := context.Background()
	if _, err := env.requireUser(ctx); err != nil {
		return err
	}

	var owned, participating []client.Project
	g, gctx := errgroup.WithContext(ctx)
	if !*participatingOnly {
		g.Go(func() error {
			var err error
			owned, err = env.api.Projects.Owned(gctx)
			return err
		})
	}
	if !*ownedOnly {
		g.Go(func() error {
			var err error
			participating, err = env.api.Projects.Participations(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if jsonOutput {
		out := map[string][]client.Project{}
		if !*participatingOnly {
			out["owned"] = nonNil(owned)
		}
		if !*ownedOnly {
			out["participating"] = nonNil(participating)
		}
		printJSON(out)
		return nil
	}

	if !*participatingOnly {
		printProjectSection(env.loc.T("dashboard.owned_projects_title"), owned, env.loc.T("dashboard.empty_state_owned"))
	}
	if !*participatingOnly && !*ownedOnly {
		fmt.Fprintln(stdout)
	}
	if !*ownedOnly {
		printProjectSection(env.loc.T("dashboard.participating_projects_title"), participating, env.loc.T("dashboard.empty_state_participating"))
	}
	return nil
}

func nonNil(p []client.Project) []client.Project {
	if p == nil {
		return []client.Project{}
	}
	return p
}

func printProjectSection(title string, projects []client.Project, empty string) {
	fmt.Fprintln(stdout, title)
	if len(projects) == 0 {
		fmt.Fprintln(stdout, "  "+empty)
		return
	}
	printProjectTable(projects)
}

func printProjectTable(projects []client.Project) {
	fmt.Fprintf(stdout, "%-6s %-24s %-14s %-8s %-12s %s\n", "ID", "NAME", "OWNER", "SOURCE", "CREATED", "IMAGE")
	fmt.Fprintln(stdout, strings.Repeat("-", 90))
	for _, p := range projects {
		fmt.Fprintf(stdout, "%-6d %-24s %-14s %-8s %-12s %s\n", p.ID, p.Name, p.Owner, p.Source, p.CreatedDate(), p.SourceURL)
	}
}

func cmdDeploy(args []string) error {
	flags := newFlags("deploy")
	name := flags.String("name", "", "project name (letters, digits and hyphens)")
	image := flags.String("image", "", "Docker image URL")
	github := flags.String("github", "", "GitHub repository URL")
	branch := flags.String("branch", "", "GitHub branch")
	rootDir := flags.String("root-dir", "", "directory of the Dockerfile in the repository")
	participants := flags.String("participants", "", "comma separated participant logins")
	envVars := flags.StringArray("env", nil, "environment variable K=V (repeatable)")
	volume := flags.String("volume", "", "persistent volume mount path")
	createDB := flags.Bool("create-db", false, "create and link a database")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return errors.New("--name is required")
	}

	ctx := context.Background()
	user, err := env.requireUser(ctx)
	if err != nil {
		return err
	}

	logins, err := present.ParseParticipants(*participants, user.Login)
	if err != nil {
		return err
	}

	req := client.DeployRequest{
		ProjectName:          strings.TrimSpace(*name),
		ImageURL:             strings.TrimSpace(*image),
		GithubRepoURL:        strings.TrimSpace(*github),
		GithubBranch:         *branch,
		GithubRootDir:        *rootDir,
		Participants:         logins,
		PersistentVolumePath: *volume,
		CreateDatabase:       *createDB,
	}
	if len(*envVars) > 0 {
		req.EnvVars = present.ParseEnvVars(strings.Join(*envVars, "\n"))
	}

	project, err := env.api.Projects.Deploy(ctx, req)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(project)
		return nil
	}
	fmt.Fprintln(stdout, env.loc.T("create_project.deployed", "name", project.Name, "id", strconv.Itoa(project.ID)))
	return nil
}

// projectArg parses the single <id> argument of a project command.
func projectArg(cmd string, args []string) (int, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("usage: hangar-ctl %s <id>", cmd)
	}
	return parseID(args[0])
}

func cmdShow(args []string) error {
	id, err := projectArg("show", args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := env.requireUser(ctx); err != nil {
		return err
	}

	project, err := env.api.Projects.Get(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(project)
		return nil
	}
	printProjectDetails(project)
	return nil
}

func printProjectDetails(p *client.ProjectDetails) {
	loc := env.loc
	fmt.Fprintf(stdout, "%-14s %d\n", "ID", p.ID)
	fmt.Fprintf(stdout, "%-14s %s\n", "NAME", p.Name)
	fmt.Fprintf(stdout, "%-14s %s\n", strings.ToUpper(loc.T("common.owner")), p.Owner)
	fmt.Fprintf(stdout, "%-14s %s\n", "SOURCE", p.Source)
	fmt.Fprintf(stdout, "%-14s %s\n", strings.ToUpper(loc.T("common.image")), p.SourceURL)
	if p.DeployedImageTag != "" {
		fmt.Fprintf(stdout, "%-14s %s\n", "TAG", p.DeployedImageTag)
	}
	fmt.Fprintf(stdout, "%-14s %s\n", "CONTAINER", p.ContainerName)
	if p.PersistentVolumePath != "" {
		fmt.Fprintf(stdout, "%-14s %s\n", "VOLUME", p.PersistentVolumePath)
	}
	fmt.Fprintln(stdout, loc.T("common.created_on", "date", p.CreatedDate()))

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, loc.T("project_dashboard.card_title_participants"))
	if len(p.Participants) == 0 {
		fmt.Fprintln(stdout, "  "+loc.T("project_dashboard.no_participants"))
	}
	for _, login := range p.Participants {
		fmt.Fprintln(stdout, "  "+login)
	}
}

func cmdStatus(args []string) error {
	id, err := projectArg("status", args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := env.requireUser(ctx); err != nil {
		return err
	}

	status, err := env.api.Projects.Status(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(map[string]*string{"status": status})
		return nil
	}
	badge := present.StatusBadge(env.loc, status)
	fmt.Fprintf(stdout, "%-10s %s\n", "PROJECT", "STATUS")
	fmt.Fprintf(stdout, "%-10d %s\n", id, badge.Label)
	return nil
}

func cmdMetrics(args []string) error {
	id, err := projectArg("metrics", args)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := env.requireUser(ctx); err != nil {
		return err
	}

	m, err := env.api.Projects.Metrics(ctx, id)
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(m)
		return nil
	}
	cpu, mem := present.MetricsGauges(env.loc, m)
	fmt.Fprintf(stdout, "%-10s %7s  %-8s %s\n", "GAUGE", "PERCENT", "LEVEL", "DETAIL")
	fmt.Fprintln(stdout, strings.Repeat("-", 50))
	for _, g := range []present.Gauge{cpu, mem} {
		detail := g.Detail
		if detail == "" {
			detail = "-"
		}
		fmt.Fprintf(stdout, "%-10s %6.1f%%  %-8s %s\n", g.Label, g.Percent, g.Level, detail)
	}
	return nil
}

func cmdLogs(args []string) error {
	flags := newFlags("logs")
	level := flags.String("level", "", "minimum level: info, warn or error")
	grep := flags.String("grep", "", "only lines matching this regex")
	if err := parseFlags(flags, args); err != nil {
		return err
	}
	id, err := projectArg("logs", flags.Args())
	if err != nil {
		return err
	}
	filter, err := logs.NewFilter(*level, *grep)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := env.requireUser(ctx); err != nil {
		return err
	}

	text, err := env.api.Projects.Logs(ctx, id)
	if err != nil {
		return err
	}
	entries := filter.Apply(logs.Parse(text))

	if jsonOutput {
		printJSON(entries)
		return nil
	}
	if len(entries) == 0 {
		fmt.Fprintln(stdout, env.loc.T("project_dashboard.logs_empty"))
		return nil
	}
	for _, e := range entries {
		ts := e.DisplayTimestamp()
		if ts == "" {
			ts = "-"
		}
		fmt.Fprintf(stdout, "%-19s %-5s %s\n", ts, e.Level, e.Message)
	}
	return nil
}
