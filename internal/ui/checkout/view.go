// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package checkout

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/heartmind/internal/payment"
)

// View renders the checkout link, the manual reference field and the
// verification status.
func (m Model) View() string {
	t := m.theme
	lines := []string{t.DialogTitle.Render(payment.SubscribeLabel)}

	switch m.state {
	case stateStarting:
		lines = append(lines, m.spinner.View()+t.Muted.Render(" Creating your checkout..."))
	case stateReady, stateVerifying, stateFailed:
		if m.url != "" {
			lines = append(lines,
				t.Muted.Render("Complete the payment in your browser:"),
				t.Link.Render(m.url),
				"",
			)
		}
		if m.state == stateVerifying {
			lines = append(lines, m.spinner.View()+" "+t.Muted.Render(m.message))
			break
		}
		if m.url != "" || m.state == stateFailed {
			lines = append(lines,
				t.Muted.Render("Once paid, paste the reference and press enter."),
				m.reference.View(),
			)
		}
	case stateDone:
		lines = append(lines, t.Success.Render(m.message), "", t.Muted.Render("Press enter to continue chatting."))
	}

	if m.message != "" && m.state != stateVerifying && m.state != stateDone {
		style := t.Muted
		if m.isError {
			style = t.Error
		}
		lines = append(lines, "", style.Render(m.message))
	}

	body := t.Dialog.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// ShortHelp returns the bindings shown in the status bar.
func (m Model) ShortHelp() []key.Binding {
	if m.state == stateDone {
		return []key.Binding{m.keys.Back}
	}
	return []key.Binding{m.keys.Verify, m.keys.Retry, m.keys.Back}
}
