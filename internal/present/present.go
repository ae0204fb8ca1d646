// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package present turns API data into display values: status badges,
// gauges, durations, and the text forms used to edit environment variables
// and participant lists.
package present

import (
	"fmt"
	"sort"
	"strings"

	"github.com/garageisep/hangar/internal/i18n"
	"github.com/garageisep/hangar/pkg/client"
)

// Badge is a rendered container status.
type Badge struct {
	Class string // "status-running", "status-unknown"
	Label string // localized
}

// StatusBadge renders a status. A nil status is shown as loading with the
// unknown class.
func StatusBadge(loc *i18n.Localizer, status *string) Badge {
	if status == nil || *status == "" {
		return Badge{Class: "status-unknown", Label: loc.Status(status)}
	}
	return Badge{Class: "status-" + *status, Label: loc.Status(status)}
}

// GaugeLevel classifies a gauge reading.
type GaugeLevel string

const (
	GaugeNormal  GaugeLevel = "normal"
	GaugeWarning GaugeLevel = "warning"
	GaugeDanger  GaugeLevel = "danger"
)

// Gauge is a bounded reading.
type Gauge struct {
	Label   string
	Percent float64 // in [0, 100]
	Level   GaugeLevel
	Detail  string // "512 / 1024 MiB" for memory, empty for percentages
}

// NewGauge computes the percentage of value over max, clamped to
// [0, 100]. A non-positive max gives 0.
func NewGauge(label string, value, max float64) Gauge {
	pct := 0.0
	if max > 0 {
		ratio := value / max
		if ratio > 1 {
			ratio = 1
		}
		if ratio < 0 {
			ratio = 0
		}
		pct = ratio * 100
	}

	level := GaugeNormal
	switch {
	case pct > 90:
		level = GaugeDanger
	case pct > 70:
		level = GaugeWarning
	}
	return Gauge{Label: label, Percent: pct, Level: level}
}

// MemoryGauge is a gauge over bytes with a MiB detail line.
func MemoryGauge(label string, usedBytes, limitBytes float64) Gauge {
	g := NewGauge(label, usedBytes, limitBytes)
	g.Detail = fmt.Sprintf("%.0f / %.0f MiB", usedBytes/(1024*1024), limitBytes/(1024*1024))
	return g
}

// MetricsGauges builds the CPU and memory gauges of a project. CPU usage is
// already a percentage.
func MetricsGauges(loc *i18n.Localizer, m *client.ProjectMetrics) (cpu, mem Gauge) {
	cpu = NewGauge(loc.T("project_dashboard.cpu"), m.CPUUsage, 100)
	mem = MemoryGauge(loc.T("project_dashboard.memory"), float64(m.MemoryUsage), float64(m.MemoryLimit))
	return cpu, mem
}

// FormatDowntime renders a duration in seconds using its largest whole
// unit: "45s", "12m", "1h", "3d".
func FormatDowntime(seconds int64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh", seconds/3600)
	default:
		return fmt.Sprintf("%dd", seconds/86400)
	}
}

// ParseEnvVars reads KEY=VALUE lines. Each line is split on its first "=",
// both sides are trimmed. Lines without "=" or with an empty key are
// dropped.
func ParseEnvVars(text string) map[string]string {
	vars := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		vars[key] = strings.TrimSpace(value)
	}
	return vars
}

// FormatEnvVars writes vars as sorted KEY=VALUE lines.
func FormatEnvVars(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(vars[k])
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseParticipants splits a comma separated list of logins. Entries are
// trimmed, empty entries dropped and duplicates removed, keeping first
// occurrence order. Listing the owner is an OWNER_CANNOT_BE_PARTICIPANT
// error.
func ParseParticipants(text, owner string) ([]string, error) {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, part := range strings.Split(text, ",") {
		login := strings.TrimSpace(part)
		if login == "" || seen[login] {
			continue
		}
		if owner != "" && login == owner {
			return nil, client.NewAPIError(client.ErrCodeOwnerCannotBeParticipant, "")
		}
		seen[login] = true
		out = append(out, login)
	}
	return out, nil
}
