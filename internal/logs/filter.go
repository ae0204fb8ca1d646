// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import (
	"fmt"
	"regexp"
)

// Filter selects log entries by minimum level and message pattern.
type Filter struct {
	MinLevel Level
	Pattern  *regexp.Regexp
}

// NewFilter builds a filter. An empty level keeps every entry; an empty
// pattern matches every message.
func NewFilter(level, pattern string) (*Filter, error) {
	f := &Filter{MinLevel: LevelInfo}
	if level != "" {
		f.MinLevel = NormalizeLevel(level)
	}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		f.Pattern = re
	}
	return f, nil
}

// Match reports whether entry passes the filter.
func (f *Filter) Match(entry Entry) bool {
	if f == nil {
		return true
	}
	if !entry.Level.IsAtLeast(f.MinLevel) {
		return false
	}
	return f.Pattern == nil || f.Pattern.MatchString(entry.Raw)
}

// Apply returns the entries that pass the filter, in order.
func (f *Filter) Apply(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	return out
}
