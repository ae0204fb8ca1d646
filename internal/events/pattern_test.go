// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern   string
		eventType string
		want      bool
	}{
		{"*", "project.status", true},
		{"project.status", "project.status", true},
		{"project.status", "project.metrics", false},
		{"project.*", "project.status", true},
		{"project.*", "project.control.failed", true},
		{"project.*", "project", false},
		{"project.*", "session.login", false},
		{"*.failed", "project.control.failed", true},
		{"*.failed", "failed", false},
		{"*.login", "session.logout", false},
		{"project.*.failed", "project.control.failed", true},
		{"project.*.failed", "project.control.finished", false},
		{"project.*.failed", "project.failed", false},
		{"session.*", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.eventType, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchType(tt.eventType, tt.pattern))
		})
	}
}

func TestCompileEmpty(t *testing.T) {
	_, err := Compile("")
	assert.ErrorIs(t, err, ErrEmptyPattern)

	_, err = Compile("project..status")
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.False(t, MatchType("project.status", ""))
}
