// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// View renders the form centered on screen.
func (m Model) View() string {
	t := m.theme
	lines := []string{t.DialogTitle.Render(m.mode.String())}
	for i := m.firstField(); i <= fieldPassword; i++ {
		lines = append(lines, m.fields[i].View())
	}
	lines = append(lines, "")

	switch {
	case m.busy:
		lines = append(lines, t.Muted.Render("Please wait..."))
	case m.errText != "":
		lines = append(lines, t.Error.Render(m.errText))
	}

	other := "New here? ctrl+n to sign up"
	if m.mode == ModeSignup {
		other = "Have an account? ctrl+n to log in"
	}
	lines = append(lines, t.Muted.Render(other))

	body := t.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// ShortHelp returns the bindings shown in the status bar.
func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Submit, m.keys.Next, m.keys.Switch}
}
