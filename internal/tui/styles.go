// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/garageisep/hangar/internal/present"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	promptStyle = lipgloss.NewStyle().Bold(true)

	badgeBase = lipgloss.NewStyle().Padding(0, 1).Bold(true)

	// Keyed by badge class.
	badgeColors = map[string]lipgloss.Color{
		"status-running":    lipgloss.Color("42"),
		"status-restarting": lipgloss.Color("214"),
		"status-created":    lipgloss.Color("75"),
		"status-paused":     lipgloss.Color("214"),
		"status-exited":     lipgloss.Color("196"),
		"status-stopped":    lipgloss.Color("196"),
		"status-dead":       lipgloss.Color("160"),
	}

	gaugeColors = map[present.GaugeLevel]lipgloss.Color{
		present.GaugeNormal:  lipgloss.Color("42"),
		present.GaugeWarning: lipgloss.Color("214"),
		present.GaugeDanger:  lipgloss.Color("196"),
	}
)

func badgeStyle(class string) lipgloss.Style {
	color, ok := badgeColors[class]
	if !ok {
		color = lipgloss.Color("245")
	}
	return badgeBase.Foreground(lipgloss.Color("0")).Background(color)
}

func gaugeStyle(level present.GaugeLevel) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(gaugeColors[level])
}
