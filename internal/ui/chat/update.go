// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	hmchat "github.com/jeranaias/heartmind/internal/chat"
	"github.com/jeranaias/heartmind/internal/reveal"
	"github.com/jeranaias/heartmind/internal/ui/nav"
)

// Update handles a message for the chat screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		return m.handleReply(msg)

	case revealTickMsg:
		return m.handleRevealTick(msg)

	case quotaSyncedMsg:
		// Errors were logged by the synchronizer, and its refresh still ran.
		if msg.turn != nil && msg.turn == m.turn {
			m.seq.Release(m.turn)
			m.turn = nil
			m.refresh()
		}
		return m, tea.Batch(m.RefreshAccess(), nav.ProfileChanged)

	case nav.ProfileChangedMsg:
		return m, m.RefreshAccess()

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Journal):
		return m, nav.Navigate(nav.ScreenJournal)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	if m.blocked {
		if key.Matches(msg, m.keys.Subscribe) {
			return m, nav.Navigate(nav.ScreenCheckout)
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Send) {
		return m.send()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send starts a turn from the composer. A refused send changes nothing, not
// even the composer.
func (m Model) send() (Model, tea.Cmd) {
	if m.turn != nil {
		return m, nil
	}
	turn, ok := m.seq.Begin(m.input.Value())
	if !ok {
		if m.seq.Session().Busy() || strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		if m.seq.User() != nil {
			return m, m.RefreshAccess()
		}
		return m, nav.Status("Your profile is still loading. Try again in a moment.", false)
	}

	m.input.Reset()
	m.turn = turn
	m.waiting = true
	m.scroll.pending = true
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, m.requestReply(turn))
}

func (m Model) requestReply(turn *hmchat.Turn) tea.Cmd {
	ctx, completer := m.ctx, m.completer
	return func() tea.Msg {
		reply, err := completer.Chat(ctx, turn.History)
		return replyMsg{turnID: turn.ID, reply: reply, err: err}
	}
}

func (m Model) handleReply(msg replyMsg) (Model, tea.Cmd) {
	if m.turn == nil || msg.turnID != m.turn.ID {
		return m, nil
	}
	m.waiting = false

	if msg.err != nil {
		m.seq.Fail(m.turn, msg.err)
		m.turn = nil
		m.refresh()
		return m, m.RefreshAccess()
	}

	m.handle = m.seq.Complete(m.turn)
	m.rev = reveal.New(msg.reply)
	m.gen++
	interval := m.seq.RevealInterval()
	if !m.active || interval <= 0 {
		m.handle.SetText(m.rev.Complete())
		return m, m.finishTurn()
	}
	m.refresh()
	return m, revealTick(m.gen, interval)
}

func (m Model) handleRevealTick(msg revealTickMsg) (Model, tea.Cmd) {
	if msg.gen != m.gen || m.rev == nil {
		return m, nil
	}
	prefix, done := m.rev.Step()
	m.handle.SetText(prefix)
	if done {
		return m, m.finishTurn()
	}
	m.refresh()
	return m, revealTick(m.gen, m.seq.RevealInterval())
}

// finishTurn ends the in-flight turn. A turn paid from the free quota stays
// in flight until its quotaSyncedMsg arrives.
func (m *Model) finishTurn() tea.Cmd {
	turn := m.turn
	m.handle, m.rev = nil, nil
	m.gen++
	if turn == nil {
		return nil
	}
	hold := m.seq.Finish(turn)
	if hold && m.quota == nil {
		m.seq.Release(turn)
		hold = false
	}
	if !hold {
		m.turn = nil
	}
	m.refresh()

	var cmds []tea.Cmd
	if m.active && !m.blocked {
		cmds = append(cmds, m.input.Focus())
	}
	if hold {
		ctx, quota := context.WithoutCancel(m.ctx), m.quota
		cmds = append(cmds, func() tea.Msg {
			return quotaSyncedMsg{turn: turn, err: quota.Sync(ctx)}
		})
	}
	return tea.Batch(cmds...)
}
