// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by ui.theme.
const (
	ModeDark  = "dark"
	ModeLight = "light"
	ModeAuto  = "auto"
)

// Theme holds all the styled components for the application.
type Theme struct {
	Mode         string
	IsDark       bool
	ColorProfile termenv.Profile
	Palette      Palette

	// ==========================================================================
	// FRAME
	// ==========================================================================

	App            lipgloss.Style
	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	HeaderRight    lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	Thinking        lipgloss.Style

	// ==========================================================================
	// COMPOSER AND PAYWALL
	// ==========================================================================

	Composer            lipgloss.Style
	ComposerPrompt      lipgloss.Style
	Placeholder         lipgloss.Style
	Paywall             lipgloss.Style
	PaywallText         lipgloss.Style
	PaywallButton       lipgloss.Style
	PaywallButtonActive lipgloss.Style

	// ==========================================================================
	// LISTS, FORMS AND DIALOGS
	// ==========================================================================

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	ListMeta     lipgloss.Style
	Mood         lipgloss.Style
	MoodSelected lipgloss.Style
	FieldLabel   lipgloss.Style
	FieldFocused lipgloss.Style
	Dialog       lipgloss.Style
	DialogTitle  lipgloss.Style
	Link         lipgloss.Style

	// ==========================================================================
	// STATUS
	// ==========================================================================

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Success      lipgloss.Style
	Warning      lipgloss.Style
	Error        lipgloss.Style
	Muted        lipgloss.Style
}

// IsDarkMode resolves a configured mode. "auto" and unknown values ask the
// terminal.
func IsDarkMode(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDark:
		return true
	case ModeLight:
		return false
	default:
		return termenv.HasDarkBackground()
	}
}

// NewTheme creates a theme for mode (dark, light or auto).
func NewTheme(mode string) *Theme {
	dark := IsDarkMode(mode)
	palette := LightPalette
	if dark {
		palette = DarkPalette
	}
	t := &Theme{
		Mode:         mode,
		IsDark:       dark,
		ColorProfile: termenv.EnvColorProfile(),
		Palette:      palette,
	}
	t.initStyles()
	return t
}

// GlamourStyle names the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	switch {
	case t.ColorProfile == termenv.Ascii:
		return "notty"
	case t.IsDark:
		return "dark"
	default:
		return "light"
	}
}

func (t *Theme) initStyles() {
	p := t.Palette

	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(p.Border)
	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	t.HeaderSubtitle = lipgloss.NewStyle().Italic(true).Foreground(p.Muted)
	t.HeaderRight = lipgloss.NewStyle().Foreground(p.Calm)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(p.UserBorder)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	t.UserBubble = lipgloss.NewStyle().
		Foreground(p.UserFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.UserBorder).
		Padding(0, 1).
		MarginLeft(4)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(p.AssistantFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.AssistBord).
		Padding(0, 1).
		MarginRight(4)
	t.Thinking = lipgloss.NewStyle().Italic(true).Foreground(p.Calm)

	t.Composer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.Border)
	t.ComposerPrompt = lipgloss.NewStyle().Bold(true).Foreground(p.Accent)
	t.Placeholder = lipgloss.NewStyle().Italic(true).Foreground(p.Subtle)

	t.Paywall = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Warning).
		Padding(0, 2).
		Align(lipgloss.Center)
	t.PaywallText = lipgloss.NewStyle().Foreground(p.Warning)
	t.PaywallButton = lipgloss.NewStyle().
		Foreground(p.Accent).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(0, 2)
	t.PaywallButtonActive = t.PaywallButton.
		Bold(true).
		Reverse(true)

	t.ListItem = lipgloss.NewStyle().PaddingLeft(2).Foreground(p.Text)
	t.ListSelected = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(p.Accent).
		PaddingLeft(1).
		Foreground(p.Accent)
	t.ListMeta = lipgloss.NewStyle().Foreground(p.Subtle)
	t.Mood = lipgloss.NewStyle().Foreground(p.Calm).Padding(0, 1)
	t.MoodSelected = t.Mood.Bold(true).Reverse(true)
	t.FieldLabel = lipgloss.NewStyle().Foreground(p.Muted).Width(10)
	t.FieldFocused = t.FieldLabel.Foreground(p.Accent).Bold(true)
	t.Dialog = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(1, 2)
	t.DialogTitle = lipgloss.NewStyle().Bold(true).Foreground(p.Accent).MarginBottom(1)
	t.Link = lipgloss.NewStyle().Underline(true).Foreground(p.Calm)

	t.StatusBar = lipgloss.NewStyle().Foreground(p.Muted)
	t.ShortcutKey = lipgloss.NewStyle().Bold(true).Foreground(p.Calm)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(p.Subtle)
	t.Success = lipgloss.NewStyle().Foreground(p.Success)
	t.Warning = lipgloss.NewStyle().Foreground(p.Warning)
	t.Error = lipgloss.NewStyle().Bold(true).Foreground(p.Error)
	t.Muted = lipgloss.NewStyle().Foreground(p.Subtle)
}
