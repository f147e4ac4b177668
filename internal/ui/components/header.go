// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand and screen on the left, account on the right.
type Header struct {
	Title    string
	Screen   string
	Width    int
	User     *model.User
	Decision model.AccessDecision
	Now      time.Time
	theme    *styles.Theme
}

// NewHeader creates a header with the HeartMind title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Title: "HeartMind", Width: 80, theme: theme}
}

// SetTheme swaps the theme after a config reload.
func (h *Header) SetTheme(theme *styles.Theme) {
	h.theme = theme
}

// View renders the header.
func (h *Header) View() string {
	t := h.theme
	left := t.HeaderTitle.Render("♥ " + h.Title)
	if h.Screen != "" {
		left += " " + t.HeaderSubtitle.Render(h.Screen)
	}
	right := t.HeaderRight.Render(h.AccountSummary())

	gap := h.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return t.Header.Width(h.Width).Render(left)
	}
	return t.Header.Width(h.Width).Render(left + strings.Repeat(" ", gap) + right)
}

// AccountSummary describes the user and their access in a few words.
func (h *Header) AccountSummary() string {
	if h.User == nil {
		return ""
	}
	name := h.User.Name
	if name == "" {
		name = h.User.Email
	}

	var access string
	switch h.Decision.Reason {
	case model.ReasonSubscribed:
		access = "subscribed"
		if exp := h.User.SubscriptionExpiresAt; exp != nil {
			access += " until " + exp.Local().Format("Jan 2")
		}
	case model.ReasonFreeRemaining:
		access = fmt.Sprintf("%d free %s left", h.User.FreeMessages, plural(h.User.FreeMessages, "message", "messages"))
	case model.ReasonBlocked:
		access = "no messages left"
	}
	if access == "" {
		return name
	}
	return name + " · " + access
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
