// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the login and signup screen for the TUI.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/api"
	"github.com/jeranaias/heartmind/internal/identity"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/ui/nav"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// Client exchanges credentials for a token. *api.Client satisfies it.
type Client interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, name, email, password string) (string, error)
}

// TokenSink stores the token. *session.Session satisfies it.
type TokenSink interface {
	SetToken(token string) error
}

// Profile loads the user after authenticating. *identity.Cache satisfies it.
type Profile interface {
	Refresh(ctx context.Context) (*model.User, error)
}

// Deps are the auth screen's collaborators.
type Deps struct {
	Client  Client
	Tokens  TokenSink
	Profile Profile
	Logger  zerolog.Logger
}

// Mode selects the form.
type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

// String returns the form title.
func (m Mode) String() string {
	if m == ModeSignup {
		return "Create your account"
	}
	return "Welcome back"
}

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

// doneMsg carries the result of a login or signup.
type doneMsg struct {
	greeting string
	err      error
}

type keyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Switch key.Binding
}

// =============================================================================
// AUTH MODEL
// =============================================================================

// Model is the Bubble Tea model for the auth screen.
type Model struct {
	ctx   context.Context
	theme *styles.Theme
	keys  keyMap
	deps  Deps

	width  int
	height int

	mode    Mode
	fields  []textinput.Model
	focus   int
	busy    bool
	errText string
}

// New creates the auth screen in login mode.
func New(ctx context.Context, theme *styles.Theme, deps Deps) Model {
	fields := make([]textinput.Model, 3)
	for i, f := range []struct {
		prompt, placeholder string
		limit               int
	}{
		{"Name     ", "Your name", 80},
		{"Email    ", "you@example.com", 254},
		{"Password ", "at least 6 characters", 128},
	} {
		ti := textinput.New()
		ti.Prompt = f.prompt
		ti.Placeholder = f.placeholder
		ti.CharLimit = f.limit
		fields[i] = ti
	}
	fields[fieldPassword].EchoMode = textinput.EchoPassword
	fields[fieldPassword].EchoCharacter = '•'

	m := Model{
		ctx:   ctx,
		theme: theme,
		keys: keyMap{
			Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
			Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("S-tab", "prev field")),
			Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
			Switch: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("C-n", "login/signup")),
		},
		deps:   deps,
		width:  80,
		height: 20,
		fields: fields,
		focus:  fieldEmail,
	}
	m.applyTheme()
	return m
}

// Init focuses the first field.
func (m Model) Init() tea.Cmd {
	return m.fields[m.focus].Focus()
}

// Mode returns the form being shown.
func (m Model) Mode() Mode {
	return m.mode
}

// Error returns the message shown under the form.
func (m Model) Error() string {
	return m.errText
}

// Busy reports whether a request is in flight.
func (m Model) Busy() bool {
	return m.busy
}

// SetSize sets the area the screen may draw in.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	w := width - 20
	if w > 48 {
		w = 48
	}
	for i := range m.fields {
		m.fields[i].Width = w
	}
}

// SetTheme swaps the theme after a config reload.
func (m *Model) SetTheme(theme *styles.Theme) {
	m.theme = theme
	m.applyTheme()
}

func (m *Model) applyTheme() {
	for i := range m.fields {
		m.fields[i].PromptStyle = m.theme.FieldLabel
		m.fields[i].PlaceholderStyle = m.theme.Placeholder
	}
	if m.focus < len(m.fields) {
		m.fields[m.focus].PromptStyle = m.theme.FieldFocused
	}
}

// Reset clears the form, for example after a logout.
func (m *Model) Reset() tea.Cmd {
	for i := range m.fields {
		m.fields[i].Reset()
	}
	m.busy = false
	m.errText = ""
	return m.focusField(m.firstField())
}

// SetError shows msg under the form.
func (m *Model) SetError(msg string) {
	m.errText = msg
}

// Update handles a message for the auth screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, m.focusField(fieldPassword)
		}
		m.errText = ""
		m.fields[fieldPassword].Reset()
		greeting := msg.greeting
		return m, func() tea.Msg { return nav.AuthenticatedMsg{Greeting: greeting} }

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Switch):
			if m.mode == ModeLogin {
				m.mode = ModeSignup
			} else {
				m.mode = ModeLogin
			}
			m.errText = ""
			return m, m.focusField(m.firstField())
		case key.Matches(msg, m.keys.Next):
			return m, m.focusField(m.nextField(1))
		case key.Matches(msg, m.keys.Prev):
			return m, m.focusField(m.nextField(-1))
		case key.Matches(msg, m.keys.Submit):
			if m.focus != fieldPassword {
				return m, m.focusField(m.nextField(1))
			}
			return m.submit()
		}

		var cmd tea.Cmd
		m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) firstField() int {
	if m.mode == ModeSignup {
		return fieldName
	}
	return fieldEmail
}

func (m Model) nextField(delta int) int {
	first := m.firstField()
	n := fieldPassword - first + 1
	return first + ((m.focus-first+delta)%n+n)%n
}

func (m *Model) focusField(i int) tea.Cmd {
	m.fields[m.focus].Blur()
	m.focus = i
	m.applyTheme()
	return m.fields[i].Focus()
}

// submit validates the form and, when it passes, authenticates.
func (m Model) submit() (Model, tea.Cmd) {
	name := m.fields[fieldName].Value()
	email := m.fields[fieldEmail].Value()
	password := m.fields[fieldPassword].Value()

	var err error
	if m.mode == ModeSignup {
		form := identity.SignupForm{Name: name, Email: email, Password: password}
		if err = form.Validate(); err == nil {
			name, email = form.Name, form.Email
		}
	} else {
		form := identity.LoginForm{Email: email, Password: password}
		if err = form.Validate(); err == nil {
			email = form.Email
		}
	}
	if err != nil {
		m.errText = formMessage(err)
		return m, nil
	}

	m.busy = true
	m.errText = ""
	return m, m.authenticate(m.mode, name, email, password)
}

func (m Model) authenticate(mode Mode, name, email, password string) tea.Cmd {
	ctx, deps := m.ctx, m.deps
	return func() tea.Msg {
		var (
			token    string
			err      error
			fallback = identity.MsgLoginFailed
			greeting = "Welcome back"
		)
		if mode == ModeSignup {
			fallback, greeting = identity.MsgSignupFailed, "Welcome"
			token, err = deps.Client.Signup(ctx, name, email, password)
		} else {
			token, err = deps.Client.Login(ctx, email, password)
		}
		if err != nil {
			deps.Logger.Debug().Err(err).Msg("authentication failed")
			msg := api.ServerMessage(err)
			if msg == "" {
				msg = fallback
			}
			return doneMsg{err: errors.New(msg)}
		}
		if err := deps.Tokens.SetToken(token); err != nil {
			return doneMsg{err: err}
		}

		user, err := deps.Profile.Refresh(ctx)
		if err != nil {
			deps.Logger.Warn().Err(err).Msg("profile load after login failed")
			return doneMsg{greeting: greeting + ". Your profile could not be loaded yet."}
		}
		who := user.Name
		if who == "" {
			who = user.Email
		}
		return doneMsg{greeting: greeting + ", " + who + "."}
	}
}

func formMessage(err error) string {
	var fe *identity.FormError
	if errors.As(err, &fe) && len(fe.Problems) > 0 {
		msg := fe.Error()
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
	return err.Error()
}
