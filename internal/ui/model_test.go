// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/app"
	"github.com/jeranaias/heartmind/internal/config"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/storage"
	"github.com/jeranaias/heartmind/internal/testutil"
	"github.com/jeranaias/heartmind/internal/ui/nav"
)

func newApp(t *testing.T, b *testutil.Backend, loggedIn bool) *app.App {
	t.Helper()
	cfg := config.Default()
	cfg.API.BaseURL = b.URL()
	cfg.API.RateLimit = 0
	cfg.Chat.RevealIntervalMs = 0
	cfg.UI.Theme = "dark"

	store := storage.NewMemoryStore()
	if loggedIn {
		if err := store.Set(storage.KeyToken, testutil.Token); err != nil {
			t.Fatal(err)
		}
	}
	a, err := app.New(cfg, zerolog.Nop(), app.Options{Store: store, RetryDelay: time.Millisecond})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func newRoot(t *testing.T, a *app.App) Model {
	t.Helper()
	m := New(context.Background(), a, Options{OpenURL: func(string) error { return nil }})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// loaded feeds the startup load result back without running Init's other
// commands.
func loaded(m Model) Model {
	m, _ = update(m, loadedMsg{err: m.app.Load(context.Background())})
	return m
}

func TestNew_WithoutTokenShowsLogin(t *testing.T) {
	m := newRoot(t, newApp(t, testutil.NewBackend(t), false))

	if m.Screen() != nav.ScreenAuth {
		t.Fatalf("screen = %v, want auth", m.Screen())
	}
	if !strings.Contains(m.View(), "Welcome back") {
		t.Error("login form not shown")
	}
}

func TestNavigate_RequiresLogin(t *testing.T) {
	m := newRoot(t, newApp(t, testutil.NewBackend(t), false))
	m, _ = update(m, nav.NavigateMsg{To: nav.ScreenJournal})
	if m.Screen() != nav.ScreenAuth {
		t.Errorf("screen = %v, want auth", m.Screen())
	}
}

func TestLoad_ShowsAccountInHeader(t *testing.T) {
	m := loaded(newRoot(t, newApp(t, testutil.NewBackend(t), true)))

	if m.Screen() != nav.ScreenChat {
		t.Fatalf("screen = %v, want chat", m.Screen())
	}
	view := m.View()
	if !strings.Contains(view, "Ada · 3 free messages left") {
		t.Errorf("header missing account summary:\n%s", view)
	}
	if !strings.Contains(view, "Write to HeartMind...") {
		t.Error("composer not shown")
	}
}

func TestLoad_ExpiredTokenLogsOut(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Update(func(b *testutil.Backend) { b.MeStatus = http.StatusUnauthorized })
	a := newApp(t, b, true)

	m := loaded(newRoot(t, a))

	if m.Screen() != nav.ScreenAuth {
		t.Fatalf("screen = %v, want auth", m.Screen())
	}
	if a.Session.Authenticated() {
		t.Error("token should be cleared")
	}
	if !strings.Contains(m.View(), MsgSessionExpired) {
		t.Error("expiry message not shown")
	}
}

func TestLoad_ServerErrorKeepsSession(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Update(func(b *testutil.Backend) { b.MeStatus = http.StatusInternalServerError })
	a := newApp(t, b, true)

	m := loaded(newRoot(t, a))

	if m.Screen() != nav.ScreenChat || !a.Session.Authenticated() {
		t.Error("a server error must not log out")
	}
	if !strings.Contains(m.View(), "Could not load your profile") {
		t.Error("load failure not reported")
	}
}

func TestBlockedUserSeesPaywall(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Update(func(b *testutil.Backend) { b.User.FreeMessages = 0 })
	m := loaded(newRoot(t, newApp(t, b, true)))

	view := m.View()
	if !strings.Contains(view, "no messages left") || !strings.Contains(view, "Subscribe") {
		t.Errorf("paywall not shown:\n%s", view)
	}
}

func TestAuthenticated_SwitchesToChat(t *testing.T) {
	b := testutil.NewBackend(t)
	a := newApp(t, b, false)
	m := newRoot(t, a)

	if err := a.Session.SetToken(testutil.Token); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Profile.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	m, _ = update(m, nav.AuthenticatedMsg{Greeting: "Welcome back, Ada."})

	if m.Screen() != nav.ScreenChat {
		t.Fatalf("screen = %v, want chat", m.Screen())
	}
	if !strings.Contains(m.View(), "Welcome back, Ada.") {
		t.Error("greeting not shown")
	}
	if m.chat.Decision().Reason != model.ReasonFreeRemaining {
		t.Errorf("decision = %v", m.chat.Decision().Reason)
	}
}

func TestLogoutKey(t *testing.T) {
	a := newApp(t, testutil.NewBackend(t), true)
	m := loaded(newRoot(t, a))

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlX})

	if m.Screen() != nav.ScreenAuth {
		t.Fatalf("screen = %v, want auth", m.Screen())
	}
	if a.Session.Authenticated() || a.Profile.Current() != nil {
		t.Error("credentials and profile should be cleared")
	}
}

func TestQuitKey(t *testing.T) {
	m := newRoot(t, newApp(t, testutil.NewBackend(t), false))
	_, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}

func TestJournalResultsReachScreen(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Update(func(b *testutil.Backend) {
		b.Journal = []model.JournalEntry{{ID: "e1", Entry: "Walked by the sea", Mood: model.MoodRelieved, CreatedAt: time.Now()}}
	})
	m := loaded(newRoot(t, newApp(t, b, true)))

	m, cmd := update(m, nav.NavigateMsg{To: nav.ScreenJournal})
	if m.Screen() != nav.ScreenJournal {
		t.Fatalf("screen = %v, want journal", m.Screen())
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c != nil {
				msg = c()
			}
		}
	}
	m, _ = update(m, msg)

	if !strings.Contains(m.View(), "Walked by the sea") {
		t.Errorf("journal entry not shown:\n%s", m.View())
	}
}

func TestConfigReload(t *testing.T) {
	m := loaded(newRoot(t, newApp(t, testutil.NewBackend(t), true)))

	cfg := config.Default()
	cfg.UI.Theme = "light"
	cfg.Chat.RevealIntervalMs = 40
	m, cmd := update(m, ConfigReloadedMsg{Config: cfg})

	if m.theme.IsDark {
		t.Error("theme should switch to light")
	}
	if got := m.chat.Sequencer().RevealInterval(); got != 40*time.Millisecond {
		t.Errorf("reveal interval = %v", got)
	}
	if st, ok := cmd().(nav.StatusMsg); !ok || st.Text != "Settings reloaded." {
		t.Errorf("status = %#v", st)
	}
}
