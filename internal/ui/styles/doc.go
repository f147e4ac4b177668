// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the HeartMind TUI.

# Palettes (colors.go)

Two palettes, DarkPalette and LightPalette, carry every color:

	Accent  - rose, the HeartMind brand color and assistant messages
	Calm    - lavender, moods and links
	Warning - the paywall
	Error   - failed requests and form problems

# Theme (theme.go)

NewTheme resolves the ui.theme setting (dark, light or auto) to a palette
and builds every lipgloss style from it:

	theme := styles.NewTheme(cfg.UI.Theme)
	header := theme.HeaderTitle.Render("HeartMind")

GlamourStyle names the matching glamour style for rendering replies.
*/
package styles
