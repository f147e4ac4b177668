// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/payment"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme(styles.ModeDark)
}

// =============================================================================
// HEADER TESTS
// =============================================================================

func TestHeader_AccountSummary(t *testing.T) {
	h := NewHeader(testTheme())
	if got := h.AccountSummary(); got != "" {
		t.Errorf("no user: got %q", got)
	}

	h.User = &model.User{Name: "Ada", FreeMessages: 1}
	h.Decision = model.AccessDecision{CanChat: true, Reason: model.ReasonFreeRemaining}
	if got := h.AccountSummary(); got != "Ada · 1 free message left" {
		t.Errorf("free: got %q", got)
	}

	h.User.FreeMessages = 0
	h.Decision = model.AccessDecision{Reason: model.ReasonBlocked}
	if got := h.AccountSummary(); got != "Ada · no messages left" {
		t.Errorf("blocked: got %q", got)
	}

	exp := time.Date(2099, 3, 4, 12, 0, 0, 0, time.Local)
	h.User = &model.User{Email: "ada@example.com", SubscriptionExpiresAt: &exp}
	h.Decision = model.AccessDecision{CanChat: true, Reason: model.ReasonSubscribed}
	if got := h.AccountSummary(); got != "ada@example.com · subscribed until Mar 4" {
		t.Errorf("subscribed: got %q", got)
	}
}

func TestHeader_View(t *testing.T) {
	h := NewHeader(testTheme())
	h.Screen = "Journal"
	h.Width = 60
	view := h.View()
	if !strings.Contains(view, "HeartMind") || !strings.Contains(view, "Journal") {
		t.Errorf("header missing title or screen: %q", view)
	}
}

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestMessageBubble_Roles(t *testing.T) {
	theme := testTheme()

	user := NewMessageBubble(model.NewUserMessage("I feel tired"), theme)
	if view := user.View(); !strings.Contains(view, "You") || !strings.Contains(view, "I feel tired") {
		t.Errorf("user bubble: %q", view)
	}

	asst := NewMessageBubble(model.NewAssistantMessage("I hear you."), theme)
	if view := asst.View(); !strings.Contains(view, "HeartMind") || !strings.Contains(view, "I hear you.") {
		t.Errorf("assistant bubble: %q", view)
	}
}

func TestMessageBubble_EmptyPlaceholder(t *testing.T) {
	b := NewMessageBubble(model.NewAssistantMessage(""), testTheme())
	if view := b.View(); !strings.Contains(view, "...") {
		t.Errorf("empty placeholder should show dots: %q", view)
	}
}

func TestMessageBubble_RevealingShowsCursor(t *testing.T) {
	b := NewMessageBubble(model.NewAssistantMessage("Hel"), testTheme())
	b.Revealing = true
	if view := b.View(); !strings.Contains(view, "Hel") || !strings.Contains(view, "▌") {
		t.Errorf("revealing bubble: %q", view)
	}
}

func TestRenderTranscript_OnlyLastAssistantReveals(t *testing.T) {
	msgs := []model.Message{
		model.NewAssistantMessage("Hi"),
		model.NewUserMessage("hello"),
		model.NewAssistantMessage("Wel"),
	}
	out := RenderTranscript(msgs, 80, true, nil, testTheme())
	if strings.Count(out, "▌") != 1 {
		t.Errorf("expected exactly one cursor, got %q", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("transcript missing user text")
	}
}

func TestMarkdownRenderer_RendersAndCaches(t *testing.T) {
	r := NewMarkdownRenderer("notty")
	out := r.Render("**breathe** slowly", 40)
	if !strings.Contains(out, "breathe") {
		t.Errorf("markdown output lost text: %q", out)
	}
	if again := r.Render("**breathe** slowly", 40); again != out {
		t.Errorf("cached render differs")
	}
	if len(r.cache) != 1 {
		t.Errorf("cache size = %d, want 1", len(r.cache))
	}
	r.Render("**breathe** slowly", 50)
	if len(r.cache) != 1 || r.width != 50 {
		t.Errorf("width change should reset the cache")
	}
}

// =============================================================================
// PAYWALL, MOOD PICKER, STATUS BAR
// =============================================================================

func TestPaywall_View(t *testing.T) {
	p := NewPaywall(testTheme())
	view := p.View()
	if !strings.Contains(view, payment.MsgPaywall) {
		t.Errorf("paywall missing notice: %q", view)
	}
	if !strings.Contains(view, payment.SubscribeLabel) {
		t.Errorf("paywall missing button: %q", view)
	}
}

func TestMoodPicker_Cycles(t *testing.T) {
	p := NewMoodPicker(testTheme())
	if p.Selected() != model.MoodNone {
		t.Fatalf("initial mood = %q", p.Selected())
	}
	p.Next()
	if p.Selected() != model.Moods[0] {
		t.Errorf("after Next = %q", p.Selected())
	}
	p.Prev()
	p.Prev()
	if p.Selected() != model.Moods[len(model.Moods)-1] {
		t.Errorf("Prev should wrap to the last mood, got %q", p.Selected())
	}
	p.Reset()
	if p.Selected() != model.MoodNone {
		t.Errorf("Reset should clear the mood")
	}
	if view := p.View(); !strings.Contains(view, "Hopeful") || !strings.Contains(view, "none") {
		t.Errorf("picker view: %q", view)
	}
}

func TestStatusBar_View(t *testing.T) {
	s := NewStatusBar(testTheme())
	quit := key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))

	if view := s.View([]key.Binding{quit}); !strings.Contains(view, "quit") {
		t.Errorf("status bar missing shortcut: %q", view)
	}
	s.SetStatus("Saved.", false)
	if view := s.View([]key.Binding{quit}); !strings.Contains(view, "Saved.") {
		t.Errorf("status bar missing status: %q", view)
	}
}

func TestConfirmDialog(t *testing.T) {
	view := ConfirmDialog(testTheme(), 60, 10, "Delete this journal entry?", "long day")
	if !strings.Contains(view, "Delete this journal entry?") || !strings.Contains(view, "long day") {
		t.Errorf("dialog: %q", view)
	}
}
