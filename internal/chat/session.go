// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	"github.com/jeranaias/heartmind/internal/model"
)

// =============================================================================
// SESSION
// =============================================================================

// Session is the in-memory conversation for one chat view. It is never
// persisted and is discarded when the view closes.
type Session struct {
	mu       sync.RWMutex
	messages []model.Message
	busy     bool
}

// NewSession creates a session seeded with an assistant greeting.
// An empty greeting starts with no messages.
func NewSession(greeting string) *Session {
	s := &Session{}
	if greeting != "" {
		s.messages = append(s.messages, model.NewAssistantMessage(greeting))
	}
	return s
}

// Messages returns a copy of the history in order.
func (s *Session) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneMessages(s.messages)
}

// Len returns the number of messages.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message.
func (s *Session) Last() (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return model.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// Busy reports whether a send is in flight.
func (s *Session) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// begin appends the user message and claims the busy flag. It returns the
// history to send, or false when another send holds the flag.
func (s *Session) begin(msg model.Message) ([]model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return nil, false
	}
	s.messages = append(s.messages, msg)
	s.busy = true
	return model.CloneMessages(s.messages), true
}

// appendAssistant appends an assistant message and returns a handle to it.
func (s *Session) appendAssistant(text string) *TurnHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := model.NewAssistantMessage(text)
	s.messages = append(s.messages, msg)
	return &TurnHandle{session: s, index: len(s.messages) - 1, id: msg.ID}
}

func (s *Session) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// =============================================================================
// TURN HANDLE
// =============================================================================

// TurnHandle grants write access to the text of one assistant message.
// Writes are ignored once that message is no longer the last one, so a stale
// renderer can never touch an earlier turn.
type TurnHandle struct {
	session *Session
	index   int
	id      string
}

// SetText overwrites the message text.
func (h *TurnHandle) SetText(text string) {
	s := h.session
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.index != len(s.messages)-1 || s.messages[h.index].ID != h.id {
		return
	}
	s.messages[h.index].Text = text
}

// Text returns the current message text.
func (h *TurnHandle) Text() string {
	s := h.session
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h.index >= len(s.messages) {
		return ""
	}
	return s.messages[h.index].Text
}

// MessageID returns the id of the message this handle writes.
func (h *TurnHandle) MessageID() string {
	return h.id
}
