// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAndPath(t *testing.T) {
	tests := []struct {
		path string
		want Route
	}{
		{"/", Route{Kind: Home}},
		{"", Route{Kind: Home}},
		{"/auth/callback?ticket=abc123", Route{Kind: AuthCallback}},
		{"/projects/create", Route{Kind: CreateProject}},
		{"/projects/42", Project(42)},
		{"/projects/42/", Project(42)},
		{"/projects/0", Route{Kind: NotFound}},
		{"/projects/abc", Route{Kind: NotFound}},
		{"/admin", Route{Kind: Admin}},
		{"/elsewhere", Route{Kind: NotFound}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.path), tt.path)
	}

	for _, r := range []Route{{Kind: Home}, {Kind: AuthCallback}, {Kind: CreateProject}, Project(7), {Kind: Admin}} {
		assert.Equal(t, r, Parse(r.Path()), r.Path())
	}
	assert.Equal(t, "/404", Route{Kind: NotFound}.Path())
}

func TestProtected(t *testing.T) {
	assert.False(t, Route{Kind: Home}.Protected())
	assert.False(t, Route{Kind: AuthCallback}.Protected())
	assert.True(t, Project(1).Protected())
	assert.True(t, Route{Kind: Admin}.Protected())
	assert.True(t, Route{Kind: CreateProject}.Protected())
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	_, ok := rec.Last()
	assert.False(t, ok)

	var nav Navigator = &rec
	nav.Navigate(Project(3))
	nav.Navigate(Route{Kind: Home})

	last, ok := rec.Last()
	assert.True(t, ok)
	assert.Equal(t, Home, last.Kind)
	assert.Len(t, rec.Routes(), 2)
	assert.Equal(t, "project_dashboard", rec.Routes()[0].Kind.String())
}
