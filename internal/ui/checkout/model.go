// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package checkout provides the subscription screen for the TUI.
package checkout

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/config"
	"github.com/jeranaias/heartmind/internal/payment"
	"github.com/jeranaias/heartmind/internal/server"
	"github.com/jeranaias/heartmind/internal/ui/nav"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

type state int

const (
	stateIdle state = iota
	stateStarting
	stateReady
	stateVerifying
	stateDone
	stateFailed
)

// Deps are the checkout screen's collaborators.
type Deps struct {
	Flow   *payment.Flow
	Config config.PaymentConfig
	// OpenURL opens the checkout page; nil leaves it to the user.
	OpenURL func(string) error
	Logger  zerolog.Logger
}

// startedMsg carries a created checkout.
type startedMsg struct {
	url  string
	flow *payment.Flow
	srv  *server.Server
	err  error
}

// callbackMsg carries the redirect caught by the local listener.
type callbackMsg struct {
	cb  server.Callback
	srv *server.Server
	err error
}

// verifiedMsg carries a verification result.
type verifiedMsg struct {
	res payment.Result
}

// IsCheckoutMsg reports whether msg is a checkout result that must reach the
// screen even while another screen is shown.
func IsCheckoutMsg(msg any) bool {
	switch msg.(type) {
	case startedMsg, callbackMsg, verifiedMsg:
		return true
	}
	return false
}

type keyMap struct {
	Verify key.Binding
	Back   key.Binding
	Retry  key.Binding
}

// =============================================================================
// CHECKOUT MODEL
// =============================================================================

// Model is the Bubble Tea model for the subscription screen.
type Model struct {
	ctx   context.Context
	theme *styles.Theme
	keys  keyMap
	deps  Deps

	width  int
	height int

	state   state
	url     string
	flow    *payment.Flow
	srv     *server.Server
	message string
	isError bool

	reference textinput.Model
	spinner   spinner.Model
}

// New creates the checkout screen.
func New(ctx context.Context, theme *styles.Theme, deps Deps) Model {
	ti := textinput.New()
	ti.Prompt = "Reference: "
	ti.Placeholder = "paste the payment reference"
	ti.CharLimit = 128

	return Model{
		ctx:   ctx,
		theme: theme,
		keys: keyMap{
			Verify: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "verify")),
			Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
			Retry:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("C-r", "new checkout")),
		},
		deps:      deps,
		width:     80,
		height:    20,
		flow:      deps.Flow,
		reference: ti,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init does nothing; the checkout starts on Activate.
func (m Model) Init() tea.Cmd {
	return nil
}

// URL returns the checkout URL once created.
func (m Model) URL() string {
	return m.url
}

// Message returns the current status line of the screen.
func (m Model) Message() string {
	return m.message
}

// Listening reports whether the local callback listener is running.
func (m Model) Listening() bool {
	return m.srv != nil
}

// SetSize sets the area the screen may draw in.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.reference.Width = width - 16
}

// SetTheme swaps the theme after a config reload.
func (m *Model) SetTheme(theme *styles.Theme) {
	m.theme = theme
}

// Activate is called when the screen is shown. It creates a new checkout
// unless one is already open.
func (m *Model) Activate() tea.Cmd {
	if m.state == stateStarting || m.state == stateReady || m.state == stateVerifying {
		return m.reference.Focus()
	}
	return m.begin()
}

// Deactivate is called when another screen is shown. The listener is shut
// down and the next visit starts a fresh checkout.
func (m *Model) Deactivate() tea.Cmd {
	m.reference.Blur()
	if m.state != stateVerifying {
		m.state = stateIdle
	}
	return m.stopListener()
}

func (m *Model) begin() tea.Cmd {
	m.state = stateStarting
	m.url = ""
	m.message = ""
	m.isError = false
	m.reference.Reset()
	return tea.Batch(m.spinner.Tick, m.start())
}

// Update handles a message for the checkout screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return m.handleStarted(msg)

	case callbackMsg:
		if msg.srv != m.srv {
			return m, nil
		}
		stop := m.stopListener()
		if msg.err != nil {
			m.message = "No payment confirmation received. Paste the reference to verify."
			m.isError = true
			return m, stop
		}
		return m, tea.Batch(stop, m.verify(msg.cb.Reference, msg.cb.UserID))

	case verifiedMsg:
		m.message = msg.res.Message
		if msg.res.OK() {
			m.state = stateDone
			m.isError = false
			m.reference.Blur()
			return m, tea.Batch(nav.ProfileChanged, nav.Status(msg.res.Message, false))
		}
		m.state = stateReady
		m.isError = true
		return m, m.reference.Focus()

	case spinner.TickMsg:
		if m.state != stateStarting && m.state != stateVerifying {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleStarted(msg startedMsg) (Model, tea.Cmd) {
	if m.state != stateStarting {
		// The screen was left before the checkout came back.
		if msg.srv != nil {
			return m, shutdown(msg.srv)
		}
		return m, nil
	}
	if msg.err != nil {
		m.state = stateFailed
		m.message = payment.StartMessage(msg.err)
		m.isError = true
		if msg.srv != nil {
			return m, shutdown(msg.srv)
		}
		return m, nil
	}

	m.state = stateReady
	m.url = msg.url
	m.flow = msg.flow
	m.srv = msg.srv

	cmds := []tea.Cmd{m.reference.Focus()}
	if m.deps.Config.OpenBrowser && m.deps.OpenURL != nil {
		open, url, logger := m.deps.OpenURL, msg.url, m.deps.Logger
		cmds = append(cmds, func() tea.Msg {
			if err := open(url); err != nil {
				logger.Debug().Err(err).Msg("open browser failed")
				return nav.StatusMsg{Text: "Open the link shown to complete the payment.", IsError: false}
			}
			return nil
		})
	}
	if m.srv != nil {
		m.message = "Waiting for the payment to complete..."
		cmds = append(cmds, m.waitCallback(m.srv))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, tea.Batch(m.stopListener(), nav.Navigate(nav.ScreenChat))
	case key.Matches(msg, m.keys.Retry):
		if m.state == stateVerifying || m.state == stateStarting {
			return m, nil
		}
		stop := m.stopListener()
		return m, tea.Batch(stop, m.begin())
	}

	if m.state == stateDone {
		if key.Matches(msg, m.keys.Verify) {
			return m, nav.Navigate(nav.ScreenChat)
		}
		return m, nil
	}
	if m.state != stateReady && m.state != stateFailed {
		return m, nil
	}

	if key.Matches(msg, m.keys.Verify) {
		return m, m.verify(m.reference.Value(), "")
	}
	var cmd tea.Cmd
	m.reference, cmd = m.reference.Update(msg)
	return m, cmd
}

// =============================================================================
// COMMANDS
// =============================================================================

// start creates the checkout, first bringing up the local listener when one
// is configured.
func (m Model) start() tea.Cmd {
	ctx, flow, cfg, logger := m.ctx, m.deps.Flow, m.deps.Config, m.deps.Logger
	return func() tea.Msg {
		var srv *server.Server
		if cfg.CallbackListen != "" {
			var err error
			srv, err = server.New(server.Config{Addr: cfg.CallbackListen}, logger)
			if err != nil {
				logger.Warn().Err(err).Msg("callback listener unavailable")
				srv = nil
			} else {
				go func() {
					if err := srv.Start(); err != nil {
						logger.Error().Err(err).Msg("callback listener failed")
					}
				}()
				flow = flow.WithCallbackURL(srv.CallbackURL())
			}
		}
		url, err := flow.StartSubscription(ctx)
		return startedMsg{url: url, flow: flow, srv: srv, err: err}
	}
}

func (m Model) waitCallback(srv *server.Server) tea.Cmd {
	ctx, timeout := m.ctx, m.deps.Config.WaitTimeout()
	return func() tea.Msg {
		var (
			waitCtx context.Context
			cancel  context.CancelFunc
		)
		if timeout > 0 {
			waitCtx, cancel = context.WithTimeout(ctx, timeout)
		} else {
			waitCtx, cancel = context.WithCancel(ctx)
		}
		defer cancel()
		cb, err := srv.Wait(waitCtx)
		return callbackMsg{cb: cb, srv: srv, err: err}
	}
}

func (m *Model) verify(reference, userID string) tea.Cmd {
	m.state = stateVerifying
	m.message = payment.MsgVerifying
	m.isError = false
	m.reference.Blur()
	ctx, flow := m.ctx, m.flow
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return verifiedMsg{res: flow.Verify(ctx, reference, userID)}
	})
}

// stopListener detaches the listener and returns a command shutting it down.
func (m *Model) stopListener() tea.Cmd {
	srv := m.srv
	m.srv = nil
	if srv == nil {
		return nil
	}
	return shutdown(srv)
}

func shutdown(srv *server.Server) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		return nil
	}
}
