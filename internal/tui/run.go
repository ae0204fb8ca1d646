// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/garageisep/hangar/internal/i18n"
	"github.com/garageisep/hangar/internal/live"
)

// Run shows the dashboard for v until the user quits or ctx is done. It
// closes v before returning. The returned bool reports whether the
// project was deleted.
func Run(ctx context.Context, v *live.View, loc *i18n.Localizer, canControl bool, opts ...tea.ProgramOption) (bool, error) {
	defer v.Close()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	program := tea.NewProgram(NewModel(v, loc, canControl), opts...)

	unsubscribe := v.Subscribe(func(s live.Snapshot) {
		program.Send(SnapshotMsg(s))
	})
	defer unsubscribe()

	final, err := program.Run()
	if m, ok := final.(Model); ok {
		return m.Deleted(), err
	}
	return false, err
}
