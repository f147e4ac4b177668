// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/heartmind/internal/payment"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// Paywall replaces the composer once the free messages are used up.
type Paywall struct {
	Width   int
	Focused bool
	theme   *styles.Theme
}

// NewPaywall creates a focused paywall.
func NewPaywall(theme *styles.Theme) *Paywall {
	return &Paywall{Width: 80, Focused: true, theme: theme}
}

// SetTheme swaps the theme after a config reload.
func (p *Paywall) SetTheme(theme *styles.Theme) {
	p.theme = theme
}

// View renders the notice and the subscribe button.
func (p *Paywall) View() string {
	t := p.theme
	button := t.PaywallButton
	if p.Focused {
		button = t.PaywallButtonActive
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		t.PaywallText.Render(payment.MsgPaywall),
		button.Render(payment.SubscribeLabel),
	)
	w := p.Width - 2
	if w < 20 {
		w = 20
	}
	return t.Paywall.Width(w).Render(body)
}
