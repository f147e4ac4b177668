// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// View renders the transcript with the composer, or the paywall once access
// is blocked.
func (m Model) View() string {
	var bottom string
	if m.blocked {
		bottom = m.paywall.View()
	} else {
		bottom = m.theme.Composer.Width(m.width).Render(m.input.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), bottom)
}

// ShortHelp returns the bindings shown in the status bar.
func (m Model) ShortHelp() []key.Binding {
	if m.blocked {
		return []key.Binding{m.keys.Subscribe, m.keys.Journal, m.keys.PageUp}
	}
	return []key.Binding{m.keys.Send, m.keys.Journal, m.keys.PageUp, m.keys.PageDown}
}
