// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package live keeps a mounted project view in sync with the server.
//
// A View polls the container status and the resource metrics on their own
// cadences and runs one control action at a time on behalf of the user.
// Once Close returns, nothing touches the view state again.
package live

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/garageisep/hangar/internal/clock"
	"github.com/garageisep/hangar/internal/events"
	"github.com/garageisep/hangar/internal/i18n"
	"github.com/garageisep/hangar/internal/route"
	"github.com/garageisep/hangar/pkg/client"
)

// Default cadences.
const (
	DefaultStatusInterval  = 5000 * time.Millisecond
	DefaultMetricsInterval = 3000 * time.Millisecond
	DefaultRefreshDelay    = 1500 * time.Millisecond
)

// Errors returned by control actions that never reached the server.
var (
	ErrControlInFlight = errors.New("another control action is in progress")
	ErrCancelled       = errors.New("action cancelled")
	ErrClosed          = errors.New("view is closed")
)

// ProjectAPI is the part of the Hangar API a view needs.
// *client.ProjectClient implements it.
type ProjectAPI interface {
	Get(ctx context.Context, id int) (*client.ProjectDetails, error)
	Status(ctx context.Context, id int) (*string, error)
	Metrics(ctx context.Context, id int) (*client.ProjectMetrics, error)
	Start(ctx context.Context, id int) error
	Stop(ctx context.Context, id int) error
	Restart(ctx context.Context, id int) error
	Delete(ctx context.Context, id int) error
	UpdateImage(ctx context.Context, id int, imageURL string) error
	UpdateEnv(ctx context.Context, id int, env map[string]string) error
	AddParticipant(ctx context.Context, id int, login string) error
	RemoveParticipant(ctx context.Context, id int, login string) error
}

// Confirmer asks the user a yes/no question before a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// AlwaysConfirm answers yes to everything.
var AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// Options configures a Synchronizer. Zero values take the defaults.
type Options struct {
	Clock           clock.Clock
	StatusInterval  time.Duration
	MetricsInterval time.Duration
	RefreshDelay    time.Duration

	// Confirmer is asked before delete, image update and participant
	// removal. Nil refuses every such action.
	Confirmer Confirmer
	Navigator route.Navigator
	Bus       events.Bus
	Localizer *i18n.Localizer
	Logger    *slog.Logger
}

// Synchronizer mounts project views.
type Synchronizer struct {
	api  ProjectAPI
	opts Options
	log  *slog.Logger
}

// New returns a Synchronizer using api.
func New(api ProjectAPI, opts Options) *Synchronizer {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.StatusInterval <= 0 {
		opts.StatusInterval = DefaultStatusInterval
	}
	if opts.MetricsInterval <= 0 {
		opts.MetricsInterval = DefaultMetricsInterval
	}
	if opts.RefreshDelay <= 0 {
		opts.RefreshDelay = DefaultRefreshDelay
	}
	if opts.Navigator == nil {
		opts.Navigator = route.NavigatorFunc(func(route.Route) {})
	}
	if opts.Localizer == nil {
		opts.Localizer = i18n.MustNew(i18n.DefaultLocale, "")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Synchronizer{
		api:  api,
		opts: opts,
		log:  opts.Logger.With("component", "Live"),
	}
}

// Mount loads a project and starts polling its status and metrics. The
// first status and metrics fetches start immediately. The caller must
// Close the view.
func (s *Synchronizer) Mount(ctx context.Context, projectID int) (*View, error) {
	project, err := s.api.Get(ctx, projectID)
	if err != nil {
		s.log.Warn("failed to load project", "project", projectID, "error", err)
		return nil, err
	}

	v := newView(s, projectID, project)
	v.start()
	return v, nil
}
