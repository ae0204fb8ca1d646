// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"fmt"
	"strings"
)

// Pattern errors.
var (
	ErrEmptyPattern   = errors.New("empty pattern")
	ErrInvalidPattern = errors.New("invalid pattern")
)

// Pattern is a compiled event type pattern.
//
// Types are dot-separated segments. In a pattern:
//   - "*" alone matches every type
//   - a trailing "*" segment matches one or more remaining segments
//     ("project.*" matches "project.status" and "project.control.failed")
//   - a leading "*" segment matches one or more leading segments
//     ("*.failed" matches "project.control.failed")
//   - any other "*" segment matches exactly one segment
type Pattern struct {
	raw      string
	segments []string
}

// Compile parses a pattern.
func Compile(pattern string) (Pattern, error) {
	if pattern == "" {
		return Pattern{}, ErrEmptyPattern
	}
	segments := strings.Split(pattern, ".")
	for _, seg := range segments {
		if seg == "" {
			return Pattern{}, fmt.Errorf("%w: %q has an empty segment", ErrInvalidPattern, pattern)
		}
	}
	return Pattern{raw: pattern, segments: segments}, nil
}

// String returns the pattern as written.
func (p Pattern) String() string {
	return p.raw
}

// Match reports whether eventType matches the pattern.
func (p Pattern) Match(eventType string) bool {
	if eventType == "" || len(p.segments) == 0 {
		return false
	}
	if p.raw == "*" || p.raw == eventType {
		return true
	}

	parts := strings.Split(eventType, ".")
	pat := p.segments

	if pat[0] == "*" && len(pat) > 1 {
		// Leading wildcard: align the rest of the pattern with the tail.
		rest := pat[1:]
		if len(parts) <= len(rest) {
			return false
		}
		return matchSegments(rest, parts[len(parts)-len(rest):])
	}

	if last := len(pat) - 1; pat[last] == "*" && last > 0 {
		if len(parts) <= last {
			return false
		}
		return matchSegments(pat[:last], parts[:last])
	}

	return len(pat) == len(parts) && matchSegments(pat, parts)
}

func matchSegments(pat, parts []string) bool {
	for i := range pat {
		if pat[i] != "*" && pat[i] != parts[i] {
			return false
		}
	}
	return true
}

// MatchType reports whether eventType matches pattern. Invalid patterns
// match nothing.
func MatchType(eventType, pattern string) bool {
	p, err := Compile(pattern)
	if err != nil {
		return false
	}
	return p.Match(eventType)
}
