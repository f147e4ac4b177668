// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	hmchat "github.com/jeranaias/heartmind/internal/chat"
)

// replyMsg carries the backend's answer for a turn.
type replyMsg struct {
	turnID int64
	reply  string
	err    error
}

// revealTickMsg advances the reveal. Ticks from an older generation are
// stale and ignored.
type revealTickMsg struct {
	gen int
}

// quotaSyncedMsg reports that the quota synchronizer finished for turn.
type quotaSyncedMsg struct {
	turn *hmchat.Turn
	err  error
}

// IsChatMsg reports whether msg belongs to the chat screen even while
// another screen is shown.
func IsChatMsg(msg any) bool {
	switch msg.(type) {
	case replyMsg, revealTickMsg, quotaSyncedMsg:
		return true
	}
	return false
}

func revealTick(gen int, interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return revealTickMsg{gen: gen}
	})
}
