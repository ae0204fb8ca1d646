// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logs parses and filters container log output returned by the
// Hangar API.
package logs

// Level is the severity assigned to a log line.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// NormalizeLevel converts a user supplied level name to a Level.
// Unrecognized names map to LevelInfo.
func NormalizeLevel(level string) Level {
	switch level {
	case "warn", "WARN", "warning", "WARNING":
		return LevelWarn
	case "error", "ERROR", "err", "ERR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Severity returns a number that grows with the level's severity.
func (l Level) Severity() int {
	switch l {
	case LevelWarn:
		return 1
	case LevelError:
		return 2
	default:
		return 0
	}
}

// IsAtLeast reports whether l is at least as severe as other.
func (l Level) IsAtLeast(other Level) bool {
	return l.Severity() >= other.Severity()
}

// Class returns the style class used to render the level ("log-error").
func (l Level) Class() string {
	return "log-" + string(l)
}

// Entry is one parsed log line.
type Entry struct {
	// Timestamp is the leading ISO-8601 token of the line, empty if the
	// line had none.
	Timestamp string `json:"timestamp,omitempty"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Raw       string `json:"raw"`
}

// DisplayTimestamp returns the timestamp without fractional seconds.
func (e Entry) DisplayTimestamp() string {
	return FormatTimestamp(e.Timestamp)
}
