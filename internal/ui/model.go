// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the HeartMind terminal interface. The root Model owns the
// header and status bar and routes messages to one screen at a time.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/heartmind/internal/api"
	"github.com/jeranaias/heartmind/internal/app"
	"github.com/jeranaias/heartmind/internal/config"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/ui/auth"
	"github.com/jeranaias/heartmind/internal/ui/chat"
	"github.com/jeranaias/heartmind/internal/ui/checkout"
	"github.com/jeranaias/heartmind/internal/ui/components"
	"github.com/jeranaias/heartmind/internal/ui/journal"
	"github.com/jeranaias/heartmind/internal/ui/nav"
	"github.com/jeranaias/heartmind/internal/ui/styles"
	"github.com/jeranaias/heartmind/internal/util"
)

// MsgSessionExpired is shown when the backend rejects the stored token.
const MsgSessionExpired = "Your session has expired. Please log in again."

// ConfigReloadedMsg carries a configuration re-read from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// loadedMsg carries the result of the startup load.
type loadedMsg struct {
	err error
}

type keyMap struct {
	Quit   key.Binding
	Logout key.Binding
}

// =============================================================================
// ROOT MODEL
// =============================================================================

// Model is the root Bubble Tea model.
type Model struct {
	ctx context.Context
	app *app.App
	cfg *config.Config

	theme  *styles.Theme
	keys   keyMap
	header *components.Header
	status *components.StatusBar

	width  int
	height int
	screen nav.Screen

	auth     auth.Model
	chat     chat.Model
	journal  journal.Model
	checkout checkout.Model

	openURL func(string) error
}

// Options adjusts the root model.
type Options struct {
	// OpenURL opens the checkout page. Nil uses the system browser.
	OpenURL func(string) error
}

// New creates the root model over a.
func New(ctx context.Context, a *app.App, opts Options) Model {
	if opts.OpenURL == nil {
		opts.OpenURL = util.OpenBrowser
	}
	cfg := a.Config
	theme := styles.NewTheme(cfg.UI.Theme)
	m := Model{
		ctx:   ctx,
		app:   a,
		cfg:   cfg,
		theme: theme,
		keys: keyMap{
			Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("C-c", "quit")),
			Logout: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("C-x", "log out")),
		},
		header:  components.NewHeader(theme),
		status:  components.NewStatusBar(theme),
		width:   80,
		height:  24,
		openURL: opts.OpenURL,
	}
	m.auth = auth.New(ctx, theme, auth.Deps{
		Client:  a.Client,
		Tokens:  a.Session,
		Profile: a.Profile,
		Logger:  a.Logger,
	})
	m.chat = m.newChat()
	m.journal = journal.New(ctx, theme, a.Journal)
	m.checkout = m.newCheckout()

	m.screen = nav.ScreenAuth
	if a.Session.Authenticated() {
		m.screen = nav.ScreenChat
	}
	return m
}

func (m Model) newChat() chat.Model {
	return chat.New(m.ctx, m.theme, chat.Deps{
		NewSequencer: m.app.NewSequencer,
		Completer:    m.app.Client,
		Quota:        m.app.Quota,
		Markdown:     m.cfg.UI.Markdown,
		WrapWidth:    m.cfg.UI.WrapWidth,
	})
}

func (m Model) newCheckout() checkout.Model {
	return checkout.New(m.ctx, m.theme, checkout.Deps{
		Flow:    m.app.Payment,
		Config:  m.cfg.Payment,
		OpenURL: m.openURL,
		Logger:  m.app.Logger,
	})
}

// Screen returns the screen being shown.
func (m Model) Screen() nav.Screen {
	return m.screen
}

// Init loads the profile when a token is stored, otherwise shows the login
// form.
func (m Model) Init() tea.Cmd {
	if m.screen == nav.ScreenAuth {
		return m.auth.Init()
	}
	m.status.SetStatus("Loading your profile...", false)
	ctx, a := m.ctx, m.app
	return tea.Batch(m.chat.Init(), func() tea.Msg {
		return loadedMsg{err: a.Load(ctx)}
	})
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch {
	case chat.IsChatMsg(msg):
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd
	case journal.IsJournalMsg(msg):
		var cmd tea.Cmd
		m.journal, cmd = m.journal.Update(msg)
		return m, cmd
	case checkout.IsCheckoutMsg(msg):
		var cmd tea.Cmd
		m.checkout, cmd = m.checkout.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Logout) && m.screen != nav.ScreenAuth:
			return m.logout("Logged out.")
		}
		return m.updateScreen(msg)

	case tea.MouseMsg:
		if m.screen == nav.ScreenChat {
			return m.updateScreen(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var c1, c2 tea.Cmd
		m.chat, c1 = m.chat.Update(msg)
		m.checkout, c2 = m.checkout.Update(msg)
		return m, tea.Batch(c1, c2)

	case loadedMsg:
		return m.handleLoaded(msg)

	case nav.NavigateMsg:
		return m.switchTo(msg.To)

	case nav.StatusMsg:
		m.status.SetStatus(msg.Text, msg.IsError)
		return m, nil

	case nav.ProfileChangedMsg:
		m.syncHeader()
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return m, cmd

	case nav.AuthenticatedMsg:
		m.status.SetStatus(msg.Greeting, false)
		m.chat = m.newChat()
		m.chat.SetSize(m.width, m.bodyHeight())
		next, cmd := m.switchTo(nav.ScreenChat)
		return next, tea.Batch(cmd, m.loadJournal())

	case nav.LoggedOutMsg:
		return m.logout(msg.Reason)

	case ConfigReloadedMsg:
		m.applyConfig(msg.Config)
		return m, nav.Status("Settings reloaded.", false)
	}
	return m, nil
}

func (m Model) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.screen {
	case nav.ScreenAuth:
		m.auth, cmd = m.auth.Update(msg)
	case nav.ScreenChat:
		m.chat, cmd = m.chat.Update(msg)
	case nav.ScreenJournal:
		m.journal, cmd = m.journal.Update(msg)
	case nav.ScreenCheckout:
		m.checkout, cmd = m.checkout.Update(msg)
	}
	return m, cmd
}

func (m Model) handleLoaded(msg loadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.IsAuth(msg.err) {
			return m.logout(MsgSessionExpired)
		}
		m.app.Logger.Warn().Err(msg.err).Msg("profile load failed")
		m.status.SetStatus("Could not load your profile. Check your connection.", true)
	} else {
		m.status.SetStatus("", false)
	}
	m.syncHeader()
	m.journal, _ = m.journal.Update(nav.ProfileChangedMsg{})
	var cmd tea.Cmd
	m.chat, cmd = m.chat.Update(nav.ProfileChangedMsg{})
	return m, cmd
}

// switchTo leaves the current screen and activates to. Screens other than
// auth need a stored token.
func (m Model) switchTo(to nav.Screen) (tea.Model, tea.Cmd) {
	if to != nav.ScreenAuth && !m.app.Session.Authenticated() {
		to = nav.ScreenAuth
	}
	if to == m.screen {
		return m, nil
	}

	var cmds []tea.Cmd
	switch m.screen {
	case nav.ScreenChat:
		cmds = append(cmds, m.chat.Deactivate())
	case nav.ScreenJournal:
		m.journal.Deactivate()
	case nav.ScreenCheckout:
		cmds = append(cmds, m.checkout.Deactivate())
	}

	m.screen = to
	m.syncHeader()
	switch to {
	case nav.ScreenAuth:
		cmds = append(cmds, m.auth.Reset())
	case nav.ScreenChat:
		cmds = append(cmds, m.chat.Activate())
	case nav.ScreenJournal:
		cmds = append(cmds, m.journal.Activate())
	case nav.ScreenCheckout:
		cmds = append(cmds, m.checkout.Activate())
	}
	return m, tea.Batch(cmds...)
}

// logout clears the credentials and returns to the login form.
func (m Model) logout(reason string) (tea.Model, tea.Cmd) {
	if err := m.app.Logout(); err != nil {
		m.app.Logger.Error().Err(err).Msg("logout failed")
	}
	next, cmd := m.switchTo(nav.ScreenAuth)
	nm := next.(Model)
	nm.chat = nm.newChat()
	nm.chat.SetSize(nm.width, nm.bodyHeight())
	nm.status.SetStatus(reason, false)
	return nm, cmd
}

func (m Model) loadJournal() tea.Cmd {
	ctx, store, logger := m.ctx, m.app.Journal, m.app.Logger
	return func() tea.Msg {
		if _, err := store.List(ctx); err != nil {
			logger.Warn().Err(err).Msg("journal load failed")
		}
		return nil
	}
}

func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.UI.Theme != m.cfg.UI.Theme {
		m.theme = styles.NewTheme(cfg.UI.Theme)
		m.header.SetTheme(m.theme)
		m.status.SetTheme(m.theme)
		m.auth.SetTheme(m.theme)
		m.chat.SetTheme(m.theme)
		m.journal.SetTheme(m.theme)
		m.checkout.SetTheme(m.theme)
	}
	if cfg.UI.Markdown != m.cfg.UI.Markdown {
		m.chat.SetMarkdown(cfg.UI.Markdown)
	}
	m.chat.SetRevealInterval(cfg.Chat.RevealInterval())
	m.cfg = cfg
}

func (m *Model) syncHeader() {
	m.header.Screen = m.screen.String()
	m.header.User, m.header.Decision = nil, model.AccessDecision{}
	if m.screen != nav.ScreenAuth {
		user, decision := m.app.Decision()
		m.header.User, m.header.Decision = user, decision
	}
	m.header.Now = m.app.Gate.Now()
}

// bodyHeight is what remains after the header and the two status rows.
func (m *Model) bodyHeight() int {
	h := m.height - lipgloss.Height(m.header.View()) - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) resize() {
	m.header.Width = m.width
	m.status.Width = m.width
	h := m.bodyHeight()
	m.auth.SetSize(m.width, h)
	m.chat.SetSize(m.width, h)
	m.journal.SetSize(m.width, h)
	m.checkout.SetSize(m.width, h)
}

// View renders the header, the current screen and the status bar.
func (m Model) View() string {
	var body string
	var help []key.Binding
	switch m.screen {
	case nav.ScreenAuth:
		body, help = m.auth.View(), m.auth.ShortHelp()
	case nav.ScreenChat:
		body, help = m.chat.View(), m.chat.ShortHelp()
	case nav.ScreenJournal:
		body, help = m.journal.View(), m.journal.ShortHelp()
	case nav.ScreenCheckout:
		body, help = m.checkout.View(), m.checkout.ShortHelp()
	}
	if m.screen != nav.ScreenAuth {
		help = append(help, m.keys.Logout)
	}
	help = append(help, m.keys.Quit)

	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.status.View(help))
}
