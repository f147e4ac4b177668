// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat screen for the TUI.
package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	hmchat "github.com/jeranaias/heartmind/internal/chat"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/reveal"
	"github.com/jeranaias/heartmind/internal/ui/components"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// Placeholder is the composer hint.
const Placeholder = "Write to HeartMind..."

// composerHeight is the rows below the transcript when the composer shows.
const composerHeight = 2

// Deps are the chat screen's collaborators.
type Deps struct {
	// NewSequencer builds the sequencer; the screen adds its scroll hook.
	NewSequencer func(hmchat.Options) *hmchat.Sequencer
	Completer    hmchat.Completer
	Quota        hmchat.QuotaSyncer
	// Markdown renders finished replies with glamour.
	Markdown bool
	// WrapWidth caps the transcript width, 0 uses the full width.
	WrapWidth int
}

// scrollRequest is set by the sequencer's scroll hook and consumed on the
// next render.
type scrollRequest struct {
	pending bool
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	ctx   context.Context
	theme *styles.Theme
	keys  KeyMap

	width  int
	height int
	active bool

	seq       *hmchat.Sequencer
	completer hmchat.Completer
	quota     hmchat.QuotaSyncer
	decision  model.AccessDecision
	// blocked is set once a loaded user has no access left.
	blocked bool
	scroll    *scrollRequest

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	paywall  *components.Paywall
	markdown *components.MarkdownRenderer
	useMD    bool
	wrap     int

	// In-flight turn. waiting is true until the reply arrives; rev is set
	// while it is being revealed.
	turn    *hmchat.Turn
	waiting bool
	handle  *hmchat.TurnHandle
	rev     *reveal.Reveal
	gen     int
}

// New creates the chat screen.
func New(ctx context.Context, theme *styles.Theme, deps Deps) Model {
	sc := &scrollRequest{}
	seq := deps.NewSequencer(hmchat.Options{OnScroll: func() { sc.pending = true }})

	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = Placeholder
	ti.CharLimit = 4000

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:       ctx,
		theme:     theme,
		keys:      DefaultKeyMap(),
		width:     80,
		height:    20,
		seq:       seq,
		completer: deps.Completer,
		quota:     deps.Quota,
		scroll:    sc,
		viewport:  viewport.New(80, 20-composerHeight),
		input:     ti,
		spinner:   sp,
		paywall:   components.NewPaywall(theme),
		useMD:     deps.Markdown,
		wrap:      deps.WrapWidth,
	}
	m.applyTheme()
	m.decision = seq.Decision()
	m.blocked = seq.User() != nil && m.decision.NeedsPayment()
	m.refresh()
	return m
}

// Init focuses the composer.
func (m Model) Init() tea.Cmd {
	return m.input.Focus()
}

// Sequencer returns the screen's sequencer.
func (m Model) Sequencer() *hmchat.Sequencer {
	return m.seq
}

// Decision returns the access decision the screen is showing.
func (m Model) Decision() model.AccessDecision {
	return m.decision
}

// Blocked reports whether the paywall is shown.
func (m Model) Blocked() bool {
	return m.blocked
}

// Busy reports whether a turn is in flight.
func (m Model) Busy() bool {
	return m.turn != nil
}

// Revealing reports whether a reply is being typed out.
func (m Model) Revealing() bool {
	return m.rev != nil
}

// Input returns the composer text.
func (m Model) Input() string {
	return m.input.Value()
}

// SetSize sets the area the screen may draw in.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.paywall.Width = width
	m.viewport.Width = width
	vh := height - composerHeight
	if m.blocked {
		vh = height - lipgloss.Height(m.paywall.View())
	}
	if vh < 1 {
		vh = 1
	}
	m.viewport.Height = vh
	m.input.Width = width - 4
	m.refresh()
}

// SetTheme swaps the theme after a config reload.
func (m *Model) SetTheme(theme *styles.Theme) {
	m.theme = theme
	m.paywall.SetTheme(theme)
	m.applyTheme()
	m.refresh()
}

// SetRevealInterval changes the cadence for later replies.
func (m *Model) SetRevealInterval(d time.Duration) {
	m.seq.SetRevealInterval(d)
}

// SetMarkdown toggles glamour rendering of finished replies.
func (m *Model) SetMarkdown(on bool) {
	m.useMD = on
	m.applyTheme()
	m.refresh()
}

func (m *Model) applyTheme() {
	m.input.PromptStyle = m.theme.ComposerPrompt
	m.input.PlaceholderStyle = m.theme.Placeholder
	m.spinner.Style = m.theme.Thinking
	m.markdown = nil
	if m.useMD {
		m.markdown = components.NewMarkdownRenderer(m.theme.GlamourStyle())
	}
}

// RefreshAccess re-evaluates the access decision against the cached user.
// Once a loaded user is blocked, the composer gives way to the paywall.
func (m *Model) RefreshAccess() tea.Cmd {
	before := m.blocked
	m.decision = m.seq.Decision()
	m.blocked = m.seq.User() != nil && m.decision.NeedsPayment()
	after := m.blocked
	if before != after {
		m.SetSize(m.width, m.height)
	}
	if after {
		m.input.Blur()
		return nil
	}
	if m.active {
		return m.input.Focus()
	}
	return nil
}

// Activate is called when the screen is shown.
func (m *Model) Activate() tea.Cmd {
	m.active = true
	return m.RefreshAccess()
}

// Deactivate is called when another screen is shown. A reply being revealed
// is completed at once so the transcript never keeps a truncated reply.
func (m *Model) Deactivate() tea.Cmd {
	m.active = false
	m.input.Blur()
	if m.rev == nil {
		return nil
	}
	m.rev.Cancel()
	m.handle.SetText(m.rev.Target())
	return m.finishTurn()
}

// refresh re-renders the transcript into the viewport.
func (m *Model) refresh() {
	follow := m.viewport.AtBottom() || m.scroll.pending
	m.scroll.pending = false

	width := m.width
	if m.wrap > 0 && m.wrap < width {
		width = m.wrap
	}
	content := components.RenderTranscript(m.seq.Session().Messages(), width, m.rev != nil, m.markdown, m.theme)
	if m.waiting {
		content += "\n" + m.spinner.View() + m.theme.Thinking.Render(" HeartMind is listening...")
	}
	m.viewport.SetContent(content)
	if follow {
		m.viewport.GotoBottom()
	}
}
