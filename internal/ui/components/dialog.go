// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// ConfirmDialog renders a yes/no question centered in the given area.
func ConfirmDialog(theme *styles.Theme, width, height int, question, detail string) string {
	body := theme.DialogTitle.Render(question)
	if detail != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, theme.Muted.Render(detail))
	}
	body = lipgloss.JoinVertical(lipgloss.Left, body, "",
		theme.ShortcutKey.Render("y")+theme.ShortcutDesc.Render(" delete  ")+
			theme.ShortcutKey.Render("n")+theme.ShortcutDesc.Render(" keep"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Dialog.Render(body))
}
