// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "HeartMind"
	default:
		return string(r)
	}
}

// Valid reports whether r is a role the backend accepts.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one entry in a chat transcript.
//
// The wire form is {role, text}. ID is local only and never sent.
type Message struct {
	ID   string `json:"-"`
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// NewMessage creates a message with a generated local ID.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:   generateID(),
		Role: role,
		Text: text,
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, text)
}

// NewAssistantMessage creates an assistant message.
// An empty text is used as the placeholder for a reply that is being revealed.
func NewAssistantMessage(text string) Message {
	return NewMessage(RoleAssistant, text)
}

// IsEmpty reports whether the message has no text yet.
func (m Message) IsEmpty() bool {
	return m.Text == ""
}

// CloneMessages returns a copy of msgs that shares no backing array.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}
