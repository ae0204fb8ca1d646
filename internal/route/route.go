// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package route names the views of the Hangar client and maps them to and
// from paths.
package route

import (
	"strconv"
	"strings"
	"sync"
)

// Kind identifies a view.
type Kind int

const (
	NotFound Kind = iota
	Home
	AuthCallback
	CreateProject
	ProjectDashboard
	Admin
)

var kindNames = map[Kind]string{
	NotFound:         "not_found",
	Home:             "home",
	AuthCallback:     "auth_callback",
	CreateProject:    "create_project",
	ProjectDashboard: "project_dashboard",
	Admin:            "admin",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Route is a view plus its parameters.
type Route struct {
	Kind      Kind
	ProjectID int // set for ProjectDashboard
}

// Protected reports whether the view requires an authenticated session.
func (r Route) Protected() bool {
	switch r.Kind {
	case CreateProject, ProjectDashboard, Admin:
		return true
	}
	return false
}

// Path returns the URL path of the route.
func (r Route) Path() string {
	switch r.Kind {
	case Home:
		return "/"
	case AuthCallback:
		return "/auth/callback"
	case CreateProject:
		return "/projects/create"
	case ProjectDashboard:
		return "/projects/" + strconv.Itoa(r.ProjectID)
	case Admin:
		return "/admin"
	default:
		return "/404"
	}
}

func (r Route) String() string {
	return r.Path()
}

// Project returns the dashboard route of a project.
func Project(id int) Route {
	return Route{Kind: ProjectDashboard, ProjectID: id}
}

// Parse maps a path to a route. Unknown paths map to NotFound.
func Parse(path string) Route {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	switch path {
	case "", "/":
		return Route{Kind: Home}
	case "/auth/callback":
		return Route{Kind: AuthCallback}
	case "/projects/create":
		return Route{Kind: CreateProject}
	case "/admin":
		return Route{Kind: Admin}
	}

	if rest, ok := strings.CutPrefix(path, "/projects/"); ok {
		if id, err := strconv.Atoi(rest); err == nil && id > 0 {
			return Project(id)
		}
	}
	return Route{Kind: NotFound}
}

// Navigator moves the client to another view.
type Navigator interface {
	Navigate(r Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(r Route)

// Navigate calls f(r).
func (f NavigatorFunc) Navigate(r Route) { f(r) }

// Recorder is a Navigator that remembers every navigation.
type Recorder struct {
	mu     sync.Mutex
	routes []Route
}

// Navigate records r.
func (rec *Recorder) Navigate(r Route) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.routes = append(rec.routes, r)
}

// Routes returns the recorded navigations in order.
func (rec *Recorder) Routes() []Route {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Route(nil), rec.routes...)
}

// Last returns the most recent navigation.
func (rec *Recorder) Last() (Route, bool) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.routes) == 0 {
		return Route{}, false
	}
	return rec.routes[len(rec.routes)-1], true
}
