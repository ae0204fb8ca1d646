// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package tui is the terminal project dashboard: it renders a mounted live
// view and drives its control actions from the keyboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/garageisep/hangar/internal/i18n"
	"github.com/garageisep/hangar/internal/live"
	"github.com/garageisep/hangar/internal/present"
)

// Controller is the live view driven by the dashboard. *live.View
// implements it.
type Controller interface {
	Snapshot() live.Snapshot
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Restart(ctx context.Context) error
	Delete(ctx context.Context) error
	UpdateImage(ctx context.Context, imageURL string) error
	AddParticipant(ctx context.Context, login string) error
	RemoveParticipant(ctx context.Context, login string) error
	Message(err error) string
}

// SnapshotMsg carries a new view state into the program.
type SnapshotMsg live.Snapshot

type actionResultMsg struct {
	action live.Action
	err    error
}

type mode int

const (
	modeNormal mode = iota
	modeInput
	modeConfirm
)

const barWidth = 30

// Model is the bubbletea model of the dashboard.
type Model struct {
	view       Controller
	loc        *i18n.Localizer
	canControl bool

	snap    live.Snapshot
	mode    mode
	action  live.Action // pending in input and confirm modes
	arg     string
	prompt  string
	message string
	failed  bool

	input   textinput.Model
	spinner spinner.Model
	cpuBar  progress.Model
	memBar  progress.Model
	deleted bool
}

// NewModel builds a dashboard for view. Control keys are ignored unless
// canControl is set.
func NewModel(view Controller, loc *i18n.Localizer, canControl bool) Model {
	input := textinput.New()
	input.CharLimit = 256

	return Model{
		view:       view,
		loc:        loc,
		canControl: canControl,
		snap:       view.Snapshot(),
		input:      input,
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		cpuBar:     progress.New(progress.WithoutPercentage(), progress.WithWidth(barWidth), progress.WithSolidFill("42")),
		memBar:     progress.New(progress.WithoutPercentage(), progress.WithWidth(barWidth), progress.WithSolidFill("42")),
	}
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = live.Snapshot(msg)
		if m.snap.Closed && !m.deleted {
			m.message = m.loc.T("tui.closed")
			m.failed = true
		}
		return m, nil

	case actionResultMsg:
		return m.finish(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "q" || key == "ctrl+c" {
		return m, tea.Quit
	}
	if !m.canControl || m.snap.Closed {
		return m, nil
	}

	name := m.snap.Project.Name
	switch key {
	case "s":
		return m.run(live.ActionStart, "")
	case "x":
		return m.run(live.ActionStop, "")
	case "r":
		return m.run(live.ActionRestart, "")
	case "d":
		return m.confirm(live.ActionDelete, "", m.loc.T("project_dashboard.confirm_delete", "name", name)), nil
	case "i":
		return m.ask(live.ActionUpdateImage, m.loc.T("tui.image_prompt"))
	case "a":
		return m.ask(live.ActionAddParticipant, m.loc.T("tui.add_participant_prompt"))
	case "u":
		return m.ask(live.ActionRemoveParticipant, m.loc.T("tui.remove_participant_prompt"))
	}
	return m, nil
}

func (m Model) ask(action live.Action, prompt string) (tea.Model, tea.Cmd) {
	m.mode = modeInput
	m.action = action
	m.input.Prompt = prompt
	m.input.SetValue("")
	m.message = ""
	cmd := m.input.Focus()
	return m, cmd
}

func (m Model) confirm(action live.Action, arg, prompt string) Model {
	m.mode = modeConfirm
	m.action = action
	m.arg = arg
	m.prompt = prompt
	m.message = ""
	return m
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.mode = modeNormal
		m.message = m.loc.T("common.cancelled")
		m.failed = false
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.mode = modeNormal
		if value == "" {
			return m, nil
		}
		name := m.snap.Project.Name
		switch m.action {
		case live.ActionUpdateImage:
			return m.confirm(m.action, value, m.loc.T("project_dashboard.confirm_update_image", "name", name)), nil
		case live.ActionRemoveParticipant:
			return m.confirm(m.action, value, m.loc.T("project_dashboard.confirm_remove_participant", "login", value, "name", name)), nil
		}
		return m.run(m.action, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	if strings.ToLower(msg.String()) == "y" {
		return m.run(m.action, m.arg)
	}
	m.message = m.loc.T("common.cancelled")
	m.failed = false
	return m, nil
}

// run starts action in the background. The view answers its own
// confirmation prompts with yes since the dashboard has already asked.
func (m Model) run(action live.Action, arg string) (tea.Model, tea.Cmd) {
	m.message = ""
	view := m.view
	return m, func() tea.Msg {
		ctx := context.Background()
		var err error
		switch action {
		case live.ActionStart:
			err = view.Start(ctx)
		case live.ActionStop:
			err = view.Stop(ctx)
		case live.ActionRestart:
			err = view.Restart(ctx)
		case live.ActionDelete:
			err = view.Delete(ctx)
		case live.ActionUpdateImage:
			err = view.UpdateImage(ctx, arg)
		case live.ActionAddParticipant:
			err = view.AddParticipant(ctx, arg)
		case live.ActionRemoveParticipant:
			err = view.RemoveParticipant(ctx, arg)
		default:
			err = fmt.Errorf("unsupported action %q", action)
		}
		return actionResultMsg{action: action, err: err}
	}
}

func (m Model) finish(msg actionResultMsg) (tea.Model, tea.Cmd) {
	if msg.err == nil {
		m.message = m.loc.T("project_dashboard.action_done")
		m.failed = false
		if msg.action == live.ActionDelete {
			m.deleted = true
			return m, tea.Quit
		}
		return m, nil
	}
	if errors.Is(msg.err, live.ErrCancelled) {
		m.message = m.loc.T("common.cancelled")
		m.failed = false
		return m, nil
	}
	m.message = m.view.Message(msg.err)
	m.failed = true
	return m, nil
}

// Deleted reports whether the project was deleted from the dashboard.
func (m Model) Deleted() bool {
	return m.deleted
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder
	p := m.snap.Project

	b.WriteString(titleStyle.Render(fmt.Sprintf("%s  #%d", p.Name, p.ID)))
	b.WriteString("\n\n")

	badge := present.StatusBadge(m.loc, m.snap.Status)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(m.loc.T("common.status")+":"), badgeStyle(badge.Class).Render(badge.Label))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(m.loc.T("common.owner")+":"), p.Owner)
	image := p.SourceURL
	if p.DeployedImageTag != "" {
		image += " (" + p.DeployedImageTag + ")"
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(m.loc.T("common.image")+":"), image)
	if date := p.CreatedDate(); date != "" {
		b.WriteString(labelStyle.Render(m.loc.T("common.created_on", "date", date)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.snap.Metrics != nil {
		cpu, mem := present.MetricsGauges(m.loc, m.snap.Metrics)
		b.WriteString(m.gauge(m.cpuBar, cpu))
		b.WriteString(m.gauge(m.memBar, mem))
	} else {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(m.loc.T("project_dashboard.card_title_metrics")+":"), m.loc.T("common.loading"))
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render(m.loc.T("project_dashboard.card_title_participants") + ":"))
	if len(p.Participants) == 0 {
		b.WriteString(" " + m.loc.T("project_dashboard.no_participants"))
	} else {
		b.WriteString(" " + strings.Join(p.Participants, ", "))
	}
	b.WriteString("\n\n")

	if m.snap.Busy {
		fmt.Fprintf(&b, "%s %s\n", m.spinner.View(), m.snap.Action)
	}
	if m.message != "" {
		style := okStyle
		if m.failed {
			style = errorStyle
		}
		b.WriteString(style.Render(m.message))
		b.WriteString("\n")
	}

	switch m.mode {
	case modeInput:
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(m.loc.T("tui.input_help")))
	case modeConfirm:
		b.WriteString(promptStyle.Render(m.prompt + " " + m.loc.T("common.yes_no")))
	default:
		if m.canControl {
			b.WriteString(helpStyle.Render(m.loc.T("tui.help")))
		} else {
			b.WriteString(helpStyle.Render(m.loc.T("tui.help_readonly")))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) gauge(bar progress.Model, g present.Gauge) string {
	value := fmt.Sprintf("%.1f%%", g.Percent)
	if g.Detail != "" {
		value = g.Detail
	}
	return fmt.Sprintf("%-8s %s %s\n", g.Label, bar.ViewAs(g.Percent/100), gaugeStyle(g.Level).Render(value))
}
