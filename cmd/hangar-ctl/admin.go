// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/garageisep/hangar/internal/admin"
	"github.com/garageisep/hangar/internal/present"
)

func cmdAdmin(args []string) error {
	flags := newFlags("admin")
	down := flags.Bool("down", false, "only down projects")
	metrics := flags.Bool("metrics", false, "only global metrics")
	projects := flags.Bool("projects", false, "only the project list")
	if err := parseFlags(flags, args); err != nil {
		return err
	}

	var sections admin.Section
	if *metrics {
		sections |= admin.SectionMetrics
	}
	if *down {
		sections |= admin.SectionDown
	}
	if *projects {
		sections |= admin.SectionProjects
	}
	if sections == 0 {
		sections = admin.AllSections
	}

	ctx := context.Background()
	if _, err := env.requireUser(ctx); err != nil {
		return err
	}

	o := admin.Load(ctx, env.api.Admin, sections, env.log)
	if o.Failed(sections) {
		return o.Err()
	}

	if jsonOutput {
		out := map[string]interface{}{}
		if sections&admin.SectionMetrics != 0 && o.MetricsErr == nil {
			out["metrics"] = o.Metrics
		}
		if sections&admin.SectionDown != 0 && o.DownErr == nil {
			out["down_projects"] = o.Down
		}
		if sections&admin.SectionProjects != 0 && o.ProjectsErr == nil {
			out["projects"] = o.Projects
		}
		printJSON(out)
		return nil
	}

	loc := env.loc
	fmt.Fprintln(stdout, loc.T("admin.title"))
	fmt.Fprintln(stdout)

	if sections&admin.SectionMetrics != 0 {
		fmt.Fprintln(stdout, loc.T("admin.global_metrics_title"))
		if o.MetricsErr != nil {
			printUnavailable(o.MetricsErr)
		} else {
			m := o.Metrics
			fmt.Fprintf(stdout, "  %-20s %d\n", loc.T("admin.total_projects"), m.TotalProjects)
			fmt.Fprintf(stdout, "  %-20s %d\n", loc.T("admin.running_containers"), m.RunningContainers)
			fmt.Fprintf(stdout, "  %-20s %.1f%%\n", loc.T("admin.total_cpu"), m.TotalCPUUsage)
			fmt.Fprintf(stdout, "  %-20s %.0f MiB\n", loc.T("admin.total_memory"), m.TotalMemoryUsage)
		}
		fmt.Fprintln(stdout)
	}

	if sections&admin.SectionDown != 0 {
		fmt.Fprintln(stdout, loc.T("admin.down_projects_title"))
		switch {
		case o.DownErr != nil:
			printUnavailable(o.DownErr)
		case len(o.Down) == 0:
			fmt.Fprintln(stdout, "  "+loc.T("admin.no_down_projects"))
		default:
			fmt.Fprintf(stdout, "%-6s %-24s %-14s %s\n", "ID", "NAME", "OWNER", "DOWN")
			fmt.Fprintln(stdout, strings.Repeat("-", 60))
			for _, d := range o.Down {
				fmt.Fprintf(stdout, "%-6d %-24s %-14s %s\n", d.Project.ID, d.Project.Name, d.Project.Owner,
					loc.T("admin.downtime", "duration", present.FormatDowntime(d.DowntimeSeconds)))
			}
		}
		fmt.Fprintln(stdout)
	}

	if sections&admin.SectionProjects != 0 {
		fmt.Fprintln(stdout, loc.T("admin.all_projects_title"))
		if o.ProjectsErr != nil {
			printUnavailable(o.ProjectsErr)
		} else {
			printProjectTable(o.Projects)
		}
	}
	return nil
}

func printUnavailable(err error) {
	fmt.Fprintf(stdout, "  %s (%v)\n", env.loc.T("common.unavailable"), env.explain(err))
}
