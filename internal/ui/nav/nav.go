// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav holds the messages screens use to talk to the root model.
package nav

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Screen identifies a top-level view.
type Screen int

const (
	ScreenAuth Screen = iota
	ScreenChat
	ScreenJournal
	ScreenCheckout
)

// String returns the screen title.
func (s Screen) String() string {
	switch s {
	case ScreenAuth:
		return "Sign in"
	case ScreenChat:
		return "Chat"
	case ScreenJournal:
		return "Journal"
	case ScreenCheckout:
		return "Subscribe"
	default:
		return "Unknown"
	}
}

// NavigateMsg asks the root to switch screens.
type NavigateMsg struct {
	To Screen
}

// Navigate returns a command that switches to screen.
func Navigate(to Screen) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{To: to} }
}

// StatusMsg sets the status line.
type StatusMsg struct {
	Text    string
	IsError bool
}

// Status returns a command that sets the status line.
func Status(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text, IsError: isError} }
}

// ProfileChangedMsg reports that the cached user was refreshed, so access
// must be evaluated again.
type ProfileChangedMsg struct{}

// ProfileChanged returns a command that announces a profile refresh.
func ProfileChanged() tea.Msg {
	return ProfileChangedMsg{}
}

// AuthenticatedMsg reports a successful login or signup.
type AuthenticatedMsg struct {
	Greeting string
}

// LoggedOutMsg reports that the credentials were cleared.
type LoggedOutMsg struct {
	Reason string
}
