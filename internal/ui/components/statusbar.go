// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar shows the active shortcuts and a transient status line.
type StatusBar struct {
	Width  int
	Status string
	// IsError renders Status as an error.
	IsError bool
	help    help.Model
	theme   *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	s := &StatusBar{Width: 80, help: help.New()}
	s.SetTheme(theme)
	return s
}

// SetTheme swaps the theme after a config reload.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
	s.help.Styles.ShortKey = theme.ShortcutKey
	s.help.Styles.ShortDesc = theme.ShortcutDesc
	s.help.Styles.ShortSeparator = theme.Muted
}

// SetStatus sets the status line. An empty message clears it.
func (s *StatusBar) SetStatus(msg string, isError bool) {
	s.Status, s.IsError = msg, isError
}

// View renders the shortcuts with the status line above them.
func (s *StatusBar) View(bindings []key.Binding) string {
	s.help.Width = s.Width
	shortcuts := s.theme.StatusBar.Render(s.help.ShortHelpView(bindings))
	if s.Status == "" {
		return shortcuts
	}
	style := s.theme.Muted
	if s.IsError {
		style = s.theme.Error
	}
	return lipgloss.JoinVertical(lipgloss.Left, style.MaxWidth(s.Width).Render(s.Status), shortcuts)
}
