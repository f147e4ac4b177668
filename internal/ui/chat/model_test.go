// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	hmchat "github.com/jeranaias/heartmind/internal/chat"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/payment"
	"github.com/jeranaias/heartmind/internal/ui/nav"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Chat(_ context.Context, _ []model.Message) (string, error) {
	f.calls++
	return f.reply, f.err
}

type fakeProfile struct {
	user *model.User
}

func (f *fakeProfile) Current() *model.User { return f.user }

type fakeQuota struct {
	calls  int
	onSync func()
}

func (f *fakeQuota) Sync(context.Context) error {
	f.calls++
	if f.onSync != nil {
		f.onSync()
	}
	return nil
}

type harness struct {
	m         Model
	completer *fakeCompleter
	profile   *fakeProfile
	quota     *fakeQuota
}

func newHarness(t *testing.T, user *model.User, interval time.Duration) *harness {
	t.Helper()
	h := &harness{
		completer: &fakeCompleter{reply: "Hello"},
		profile:   &fakeProfile{user: user},
		quota:     &fakeQuota{},
	}
	deps := Deps{
		NewSequencer: func(opts hmchat.Options) *hmchat.Sequencer {
			opts.RevealInterval = interval
			return hmchat.NewSequencer(hmchat.NewSession("Hi I'm HeartMind."), h.completer, h.profile, h.quota, opts)
		},
		Completer: h.completer,
		Quota:     h.quota,
	}
	h.m = New(context.Background(), styles.NewTheme(styles.ModeDark), deps)
	// A static cursor keeps Focus from returning a blocking blink command.
	h.m.input.Cursor.SetMode(cursor.CursorStatic)
	h.m.SetSize(80, 24)
	h.m.Activate()
	return h
}

func freeUser(n int) *model.User {
	return &model.User{ID: "u1", Name: "Ada", FreeMessages: n}
}

func (h *harness) typeText(s string) {
	h.m, _ = h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) enter() tea.Cmd {
	var cmd tea.Cmd
	h.m, cmd = h.m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

// deliverReply runs the in-flight completion and feeds its result back.
func (h *harness) deliverReply(t *testing.T) tea.Cmd {
	t.Helper()
	if h.m.turn == nil {
		t.Fatal("no turn in flight")
	}
	msg := h.m.requestReply(h.m.turn)()
	var cmd tea.Cmd
	h.m, cmd = h.m.Update(msg)
	return cmd
}

// runAll executes cmd and every command it batches, returning the messages.
// Tick commands are skipped; tests drive ticks explicitly.
func runAll(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runAll(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func lastText(m Model) string {
	last, _ := m.seq.Session().Last()
	return last.Text
}

// =============================================================================
// TESTS
// =============================================================================

func TestNew_ComposerAndGreeting(t *testing.T) {
	h := newHarness(t, freeUser(3), 0)
	if h.m.input.Placeholder != "Write to HeartMind..." {
		t.Errorf("placeholder = %q", h.m.input.Placeholder)
	}
	if !strings.Contains(h.m.View(), "Hi I'm HeartMind.") {
		t.Error("greeting not rendered")
	}
}

func TestSend_RevealsThenSyncsQuota(t *testing.T) {
	h := newHarness(t, freeUser(3), time.Millisecond)

	h.typeText("I feel tired")
	h.enter()
	if !h.m.Busy() || h.m.Input() != "" {
		t.Fatalf("after enter: busy=%v input=%q", h.m.Busy(), h.m.Input())
	}
	if got := h.m.seq.Session().Len(); got != 2 {
		t.Fatalf("session len = %d, want 2", got)
	}

	h.deliverReply(t)
	if !h.m.Revealing() {
		t.Fatal("reply should be revealing")
	}
	if got := lastText(h.m); got != "" {
		t.Fatalf("placeholder text = %q, want empty", got)
	}

	var frames []string
	var cmd tea.Cmd
	for h.m.Revealing() {
		h.m, cmd = h.m.Update(revealTickMsg{gen: h.m.gen})
		frames = append(frames, lastText(h.m))
	}
	want := []string{"H", "He", "Hel", "Hell", "Hello"}
	if strings.Join(frames, ",") != strings.Join(want, ",") {
		t.Errorf("frames = %v, want %v", frames, want)
	}
	if !h.m.Busy() || !h.m.seq.Session().Busy() {
		t.Error("a free turn stays in flight until the quota sync reports back")
	}

	msgs := runAll(cmd)
	if h.quota.calls != 1 {
		t.Errorf("quota syncs = %d, want 1", h.quota.calls)
	}
	var synced bool
	for _, msg := range msgs {
		if _, ok := msg.(quotaSyncedMsg); ok {
			synced = true
			h.m, _ = h.m.Update(msg)
		}
	}
	if !synced {
		t.Fatal("expected a quotaSyncedMsg")
	}
	if h.m.Busy() || h.m.seq.Session().Busy() {
		t.Error("turn should be released after the quota sync")
	}
}

func TestSend_HeldUntilQuotaSynced(t *testing.T) {
	h := newHarness(t, freeUser(1), 0)
	h.quota.onSync = func() { h.profile.user = freeUser(0) }

	h.typeText("first")
	h.enter()
	pending := h.deliverReply(t)
	if lastText(h.m) != "Hello" {
		t.Fatalf("reply = %q", lastText(h.m))
	}

	// The quota command has not run yet; the cached user still shows one
	// free message.
	h.typeText("second")
	if cmd := h.enter(); cmd != nil {
		runAll(cmd)
	}
	if got := h.m.seq.Session().Len(); got != 3 {
		t.Errorf("session len = %d, want 3", got)
	}
	if h.m.Input() != "second" {
		t.Errorf("refused send should keep the composer, got %q", h.m.Input())
	}
	if h.completer.calls != 1 {
		t.Errorf("completions = %d, want 1", h.completer.calls)
	}

	for _, msg := range runAll(pending) {
		if _, ok := msg.(quotaSyncedMsg); ok {
			h.m, _ = h.m.Update(msg)
		}
	}
	if h.quota.calls != 1 {
		t.Errorf("quota syncs = %d, want 1", h.quota.calls)
	}
	if h.m.Busy() {
		t.Error("turn should be released after the quota sync")
	}
	if !h.m.Blocked() {
		t.Error("user with no free messages left should be blocked")
	}

	h.enter()
	if h.completer.calls != 1 || h.quota.calls != 1 {
		t.Errorf("blocked send reached the backend: completions=%d syncs=%d", h.completer.calls, h.quota.calls)
	}
}

func TestQuotaSynced_StaleTurnIgnored(t *testing.T) {
	h := newHarness(t, freeUser(3), 0)
	h.typeText("hi")
	h.enter()
	pending := h.deliverReply(t)
	turn := h.m.turn

	h.m, _ = h.m.Update(quotaSyncedMsg{turn: &hmchat.Turn{ID: turn.ID}})
	if !h.m.Busy() {
		t.Fatal("a sync for another turn must not release this one")
	}
	for _, msg := range runAll(pending) {
		if _, ok := msg.(quotaSyncedMsg); ok {
			h.m, _ = h.m.Update(msg)
		}
	}
	if h.m.Busy() {
		t.Error("turn should be released")
	}
}

func TestSend_StaleTickIgnored(t *testing.T) {
	h := newHarness(t, freeUser(3), time.Millisecond)
	h.typeText("hi")
	h.enter()
	h.deliverReply(t)

	h.m, _ = h.m.Update(revealTickMsg{gen: h.m.gen - 1})
	if got := lastText(h.m); got != "" {
		t.Errorf("stale tick advanced the reveal to %q", got)
	}
}

func TestSend_FailureAppendsNoticeWithoutQuota(t *testing.T) {
	h := newHarness(t, freeUser(3), 0)
	h.completer.err = errors.New("boom")

	h.typeText("hi")
	h.enter()
	cmd := h.deliverReply(t)
	runAll(cmd)

	if got := lastText(h.m); got != hmchat.DefaultFailureMessage {
		t.Errorf("last message = %q", got)
	}
	if h.m.Busy() {
		t.Error("failed turn should release busy")
	}
	if h.quota.calls != 0 {
		t.Errorf("quota syncs = %d, want 0", h.quota.calls)
	}
}

func TestSend_BlankIsIgnored(t *testing.T) {
	h := newHarness(t, freeUser(3), 0)
	h.typeText("   ")
	if cmd := h.enter(); cmd != nil {
		t.Error("blank send should return no command")
	}
	if h.m.Busy() || h.completer.calls != 0 {
		t.Error("blank send should not start a turn")
	}
}

func TestSend_WhileBusyIsIgnored(t *testing.T) {
	h := newHarness(t, freeUser(3), 0)
	h.typeText("one")
	h.enter()
	h.typeText("two")
	h.enter()
	if h.m.Input() != "two" {
		t.Errorf("refused send should keep the composer, got %q", h.m.Input())
	}
	if got := h.m.seq.Session().Len(); got != 2 {
		t.Errorf("session len = %d, want 2", got)
	}
}

func TestSend_SubscribedDoesNotSync(t *testing.T) {
	exp := time.Now().Add(time.Hour)
	h := newHarness(t, &model.User{ID: "u1", SubscriptionExpiresAt: &exp}, 0)
	h.typeText("hi")
	h.enter()
	runAll(h.deliverReply(t))

	if lastText(h.m) != "Hello" {
		t.Errorf("reply = %q", lastText(h.m))
	}
	if h.quota.calls != 0 {
		t.Errorf("quota syncs = %d, want 0", h.quota.calls)
	}
}

func TestBlocked_PaywallReplacesComposer(t *testing.T) {
	h := newHarness(t, freeUser(0), 0)

	view := h.m.View()
	if !strings.Contains(view, payment.MsgPaywall) || !strings.Contains(view, payment.SubscribeLabel) {
		t.Fatalf("paywall not shown: %q", view)
	}
	if strings.Contains(view, Placeholder) {
		t.Error("composer should be hidden")
	}

	msgs := runAll(h.enter())
	if len(msgs) != 1 || msgs[0] != (nav.NavigateMsg{To: nav.ScreenCheckout}) {
		t.Errorf("enter on paywall = %v, want navigate to checkout", msgs)
	}
	if h.completer.calls != 0 {
		t.Error("blocked user must not reach the backend")
	}
}

func TestQuotaSync_LastFreeMessageShowsPaywall(t *testing.T) {
	h := newHarness(t, freeUser(1), 0)
	h.quota.onSync = func() { h.profile.user = freeUser(0) }

	h.typeText("hi")
	h.enter()
	for _, msg := range runAll(h.deliverReply(t)) {
		if _, ok := msg.(quotaSyncedMsg); ok {
			h.m, _ = h.m.Update(msg)
		}
	}

	if !h.m.Decision().NeedsPayment() {
		t.Fatal("decision should now require payment")
	}
	if !strings.Contains(h.m.View(), payment.SubscribeLabel) {
		t.Error("paywall should be shown")
	}
}

func TestDeactivate_CompletesReveal(t *testing.T) {
	h := newHarness(t, freeUser(3), time.Millisecond)
	h.typeText("hi")
	h.enter()
	h.deliverReply(t)
	h.m, _ = h.m.Update(revealTickMsg{gen: h.m.gen})

	cmd := h.m.Deactivate()
	if h.m.Revealing() {
		t.Fatal("leaving the view should end the reveal")
	}
	if got := lastText(h.m); got != "Hello" {
		t.Errorf("text after cancel = %q, want full reply", got)
	}
	for _, msg := range runAll(cmd) {
		if _, ok := msg.(quotaSyncedMsg); ok {
			h.m, _ = h.m.Update(msg)
		}
	}
	if h.quota.calls != 1 {
		t.Errorf("a delivered reply still syncs the quota, got %d", h.quota.calls)
	}
	if h.m.Busy() {
		t.Error("turn should be released after the quota sync")
	}

	gen := h.m.gen
	h.m, _ = h.m.Update(revealTickMsg{gen: gen - 1})
	if got := lastText(h.m); got != "Hello" {
		t.Errorf("late tick changed the text to %q", got)
	}
}

func TestReplyWhileInactive_CompletesAtOnce(t *testing.T) {
	h := newHarness(t, freeUser(3), time.Second)
	h.typeText("hi")
	h.enter()
	h.m.Deactivate()

	h.deliverReply(t)
	if h.m.Revealing() || lastText(h.m) != "Hello" {
		t.Errorf("inactive screen should not animate, got %q", lastText(h.m))
	}
}

func TestIsChatMsg(t *testing.T) {
	if !IsChatMsg(replyMsg{}) || !IsChatMsg(revealTickMsg{}) || !IsChatMsg(quotaSyncedMsg{}) {
		t.Error("chat messages not recognized")
	}
	if IsChatMsg(tea.KeyMsg{}) {
		t.Error("key messages are not chat messages")
	}
}

func TestProfileNotLoaded_NoPaywall(t *testing.T) {
	h := newHarness(t, nil, 0)

	if h.m.Blocked() || strings.Contains(h.m.View(), payment.SubscribeLabel) {
		t.Fatal("paywall must wait for the profile")
	}
	h.typeText("hi")
	msgs := runAll(h.enter())
	if len(msgs) != 1 {
		t.Fatalf("msgs = %v", msgs)
	}
	if st, ok := msgs[0].(nav.StatusMsg); !ok || st.IsError {
		t.Errorf("expected an informational status, got %#v", msgs[0])
	}
	if h.m.Input() != "hi" || h.completer.calls != 0 {
		t.Error("refused send must keep the composer and make no call")
	}

	h.profile.user = freeUser(0)
	h.m, _ = h.m.Update(nav.ProfileChangedMsg{})
	if !h.m.Blocked() {
		t.Error("a loaded user without access should see the paywall")
	}
}
