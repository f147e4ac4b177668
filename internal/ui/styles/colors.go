// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors a theme is built from.
type Palette struct {
	Accent    lipgloss.Color
	AccentDim lipgloss.Color
	Calm      lipgloss.Color

	Text    lipgloss.Color
	Muted   lipgloss.Color
	Subtle  lipgloss.Color
	Surface lipgloss.Color
	Border  lipgloss.Color

	UserFg      lipgloss.Color
	UserBorder  lipgloss.Color
	AssistantFg lipgloss.Color
	AssistBord  lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// =============================================================================
// PALETTES
// =============================================================================

// DarkPalette suits dark terminal backgrounds.
var DarkPalette = Palette{
	Accent:    lipgloss.Color("#FB7185"), // rose
	AccentDim: lipgloss.Color("#881337"),
	Calm:      lipgloss.Color("#A78BFA"), // lavender

	Text:    lipgloss.Color("#CDD6F4"),
	Muted:   lipgloss.Color("#A6ADC8"),
	Subtle:  lipgloss.Color("#6C7086"),
	Surface: lipgloss.Color("#181825"),
	Border:  lipgloss.Color("#45475A"),

	UserFg:      lipgloss.Color("#E0F2FE"),
	UserBorder:  lipgloss.Color("#3B82F6"),
	AssistantFg: lipgloss.Color("#F5E9F0"),
	AssistBord:  lipgloss.Color("#FB7185"),

	Success: lipgloss.Color("#34D399"),
	Warning: lipgloss.Color("#FBBF24"),
	Error:   lipgloss.Color("#F87171"),
}

// LightPalette suits light terminal backgrounds.
var LightPalette = Palette{
	Accent:    lipgloss.Color("#E11D48"),
	AccentDim: lipgloss.Color("#FFE4E6"),
	Calm:      lipgloss.Color("#7C3AED"),

	Text:    lipgloss.Color("#1F2937"),
	Muted:   lipgloss.Color("#6B7280"),
	Subtle:  lipgloss.Color("#9CA3AF"),
	Surface: lipgloss.Color("#F5F5F5"),
	Border:  lipgloss.Color("#D4D4D4"),

	UserFg:      lipgloss.Color("#1E40AF"),
	UserBorder:  lipgloss.Color("#3B82F6"),
	AssistantFg: lipgloss.Color("#5B1A33"),
	AssistBord:  lipgloss.Color("#E11D48"),

	Success: lipgloss.Color("#059669"),
	Warning: lipgloss.Color("#B45309"),
	Error:   lipgloss.Color("#DC2626"),
}
