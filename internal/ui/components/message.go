// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one chat message.
type MessageBubble struct {
	Message model.Message
	Width   int
	// Revealing marks the assistant message still being typed out. It is
	// shown as plain text with a cursor; markdown is applied once finished.
	Revealing bool
	// Markdown, when set, renders finished assistant replies.
	Markdown *MarkdownRenderer
	theme    *styles.Theme
}

// NewMessageBubble creates a bubble for msg.
func NewMessageBubble(msg model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{Message: msg, Width: 80, theme: theme}
}

// View renders the label and bubble.
func (b *MessageBubble) View() string {
	if b.Message.Role == model.RoleUser {
		return b.renderUser()
	}
	return b.renderAssistant()
}

func (b *MessageBubble) contentWidth() int {
	w := b.Width - 10 // margins, border and padding
	if w < 20 {
		w = 20
	}
	return w
}

func (b *MessageBubble) renderUser() string {
	t := b.theme
	text := wordwrap.String(b.Message.Text, b.contentWidth())
	bubble := t.UserBubble.Render(text)
	label := t.UserLabel.Render(model.RoleUser.DisplayName())

	block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
	return lipgloss.PlaceHorizontal(b.Width, lipgloss.Right, block)
}

func (b *MessageBubble) renderAssistant() string {
	t := b.theme
	label := t.AssistantLabel.Render(model.RoleAssistant.DisplayName())

	var body string
	switch {
	case b.Revealing:
		body = wordwrap.String(b.Message.Text, b.contentWidth()) + t.Thinking.Render("▌")
	case b.Message.Text == "":
		body = t.Thinking.Render("...")
	case b.Markdown != nil:
		body = b.Markdown.Render(b.Message.Text, b.contentWidth())
	default:
		body = wordwrap.String(b.Message.Text, b.contentWidth())
	}
	return lipgloss.JoinVertical(lipgloss.Left, label, t.AssistantBubble.Render(body))
}

// RenderTranscript renders messages in order, one bubble each. The last
// message is shown as revealing when revealing is set.
func RenderTranscript(msgs []model.Message, width int, revealing bool, md *MarkdownRenderer, theme *styles.Theme) string {
	blocks := make([]string, 0, len(msgs))
	for i, m := range msgs {
		b := NewMessageBubble(m, theme)
		b.Width = width
		b.Markdown = md
		b.Revealing = revealing && i == len(msgs)-1 && m.Role == model.RoleAssistant
		blocks = append(blocks, b.View(), "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}
