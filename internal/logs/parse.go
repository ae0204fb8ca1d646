// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logs

import "strings"

// ParseLine splits a line into its timestamp and message.
//
// A line carries a timestamp when its first space-separated token ends in
// "Z"; the rest of the line, trimmed, is the message. Any other line is
// kept whole as the message.
func ParseLine(line string) Entry {
	entry := Entry{Message: line, Raw: line}
	if first, rest, ok := strings.Cut(line, " "); ok && strings.HasSuffix(first, "Z") {
		entry.Timestamp = first
		entry.Message = strings.TrimSpace(rest)
	}
	entry.Level = DetectLevel(entry.Message)
	return entry
}

// Parse splits a log dump into entries, one per line.
func Parse(text string) []Entry {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := strings.Split(text, "\n")
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, ParseLine(line))
	}
	return entries
}

// DetectLevel infers a level from the message text: ERROR or FAILED means
// error, WARN means warn, anything else info. Matching ignores case.
func DetectLevel(message string) Level {
	upper := strings.ToUpper(message)
	switch {
	case strings.Contains(upper, "ERROR"), strings.Contains(upper, "FAILED"):
		return LevelError
	case strings.Contains(upper, "WARN"):
		return LevelWarn
	default:
		return LevelInfo
	}
}

// FormatTimestamp drops everything from the first "." on.
func FormatTimestamp(ts string) string {
	if before, _, ok := strings.Cut(ts, "."); ok {
		return before
	}
	return ts
}
