// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package admin assembles the fleet overview shown to administrators.
//
// The overview has three sections (global metrics, down projects, all
// projects). They are fetched in parallel and fail independently: a
// section that could not be loaded carries its error while the others
// still render.
package admin

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/garageisep/hangar/pkg/client"
)

// API is the part of the Hangar API the overview reads.
// *client.AdminClient implements it.
type API interface {
	Projects(ctx context.Context) ([]client.Project, error)
	Metrics(ctx context.Context) (*client.GlobalMetrics, error)
	DownProjects(ctx context.Context) ([]client.DownProjectInfo, error)
}

// Section selects parts of the overview.
type Section uint8

const (
	SectionMetrics Section = 1 << iota
	SectionDown
	SectionProjects

	AllSections = SectionMetrics | SectionDown | SectionProjects
)

// Overview is the result of Load. A section that was not requested has
// nil data and a nil error.
type Overview struct {
	Metrics    *client.GlobalMetrics
	MetricsErr error

	Down    []client.DownProjectInfo
	DownErr error

	Projects    []client.Project
	ProjectsErr error
}

// Err joins the errors of the failed sections.
func (o *Overview) Err() error {
	return errors.Join(o.MetricsErr, o.DownErr, o.ProjectsErr)
}

// Failed reports whether every requested section failed.
func (o *Overview) Failed(sections Section) bool {
	ok := (sections&SectionMetrics != 0 && o.MetricsErr == nil) ||
		(sections&SectionDown != 0 && o.DownErr == nil) ||
		(sections&SectionProjects != 0 && o.ProjectsErr == nil)
	return !ok
}

// Load fetches the requested sections concurrently. It never fails as a
// whole; check the per-section errors.
func Load(ctx context.Context, api API, sections Section, logger *slog.Logger) *Overview {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "Admin")

	o := &Overview{}
	var g errgroup.Group

	if sections&SectionMetrics != 0 {
		g.Go(func() error {
			o.Metrics, o.MetricsErr = api.Metrics(ctx)
			return nil
		})
	}
	if sections&SectionDown != 0 {
		g.Go(func() error {
			o.Down, o.DownErr = api.DownProjects(ctx)
			return nil
		})
	}
	if sections&SectionProjects != 0 {
		g.Go(func() error {
			o.Projects, o.ProjectsErr = api.Projects(ctx)
			return nil
		})
	}
	g.Wait()

	if err := o.Err(); err != nil {
		log.Warn("admin overview incomplete", "error", err)
	}
	return o
}
