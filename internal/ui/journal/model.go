// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package journal provides the journal screen for the TUI.
package journal

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	hmjournal "github.com/jeranaias/heartmind/internal/journal"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/ui/components"
	"github.com/jeranaias/heartmind/internal/ui/nav"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// EditorPlaceholder is the hint shown in an empty editor.
const EditorPlaceholder = "How are you feeling today?"

type mode int

const (
	modeList mode = iota
	modeEdit
	modeConfirm
)

// entriesMsg carries a finished List.
type entriesMsg struct {
	entries []model.JournalEntry
	err     error
}

// savedMsg carries a finished Create.
type savedMsg struct {
	err error
}

// deletedMsg carries a finished Delete.
type deletedMsg struct {
	id  string
	err error
}

// IsJournalMsg reports whether msg is a journal result that must reach the
// screen even while another screen is shown.
func IsJournalMsg(msg any) bool {
	switch msg.(type) {
	case entriesMsg, savedMsg, deletedMsg:
		return true
	}
	return false
}

// =============================================================================
// JOURNAL MODEL
// =============================================================================

// Model is the Bubble Tea model for the journal screen.
type Model struct {
	ctx   context.Context
	theme *styles.Theme
	keys  KeyMap
	store *hmjournal.Store

	width  int
	height int

	mode    mode
	cursor  int
	offset  int
	entries []model.JournalEntry
	loading bool
	saving  bool
	// pending is the id awaiting delete confirmation.
	pending string

	editor textarea.Model
	mood   *components.MoodPicker
}

// New creates the journal screen over store.
func New(ctx context.Context, theme *styles.Theme, store *hmjournal.Store) Model {
	ta := textarea.New()
	ta.Placeholder = EditorPlaceholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 5000
	ta.SetHeight(6)

	m := Model{
		ctx:     ctx,
		theme:   theme,
		keys:    DefaultKeyMap(),
		store:   store,
		width:   80,
		height:  20,
		entries: store.Entries(),
		editor:  ta,
		mood:    components.NewMoodPicker(theme),
	}
	return m
}

// Init does nothing; entries load on Activate.
func (m Model) Init() tea.Cmd {
	return nil
}

// Entries returns the entries being shown.
func (m Model) Entries() []model.JournalEntry {
	return m.entries
}

// Cursor returns the index of the selected entry.
func (m Model) Cursor() int {
	return m.cursor
}

// Editing reports whether the editor is open.
func (m Model) Editing() bool {
	return m.mode == modeEdit
}

// Confirming reports whether the delete dialog is open.
func (m Model) Confirming() bool {
	return m.mode == modeConfirm
}

// SetSize sets the area the screen may draw in.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.editor.SetWidth(width - 4)
	m.clampCursor()
}

// SetTheme swaps the theme after a config reload.
func (m *Model) SetTheme(theme *styles.Theme) {
	m.theme = theme
	m.mood = components.NewMoodPicker(theme)
}

// Activate is called when the screen is shown. It reloads the list.
func (m *Model) Activate() tea.Cmd {
	m.mode = modeList
	m.editor.Blur()
	return m.load()
}

// Deactivate is called when another screen is shown.
func (m *Model) Deactivate() {
	m.editor.Blur()
	m.mode = modeList
	m.pending = ""
}

// Update handles a message for the journal screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesMsg:
		m.loading = false
		m.entries = m.store.Entries()
		m.clampCursor()
		if msg.err != nil {
			return m, nav.Status("Could not load your journal: "+msg.err.Error(), true)
		}
		return m, nil

	case savedMsg:
		m.saving = false
		m.entries = m.store.Entries()
		if msg.err != nil {
			if errors.Is(msg.err, hmjournal.ErrEmptyEntry) {
				return m, nav.Status("Write something or pick a mood first.", true)
			}
			return m, nav.Status("Could not save the entry: "+msg.err.Error(), true)
		}
		m.closeEditor()
		m.cursor, m.offset = 0, 0
		return m, nav.Status("Entry saved.", false)

	case deletedMsg:
		m.entries = m.store.Entries()
		m.clampCursor()
		if msg.err != nil {
			return m, nav.Status("Could not delete the entry: "+msg.err.Error(), true)
		}
		return m, nav.Status("Entry deleted.", false)

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEditor(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, nav.Navigate(nav.ScreenChat)
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
		m.clampCursor()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.load()
	case key.Matches(msg, m.keys.New):
		m.mode = modeEdit
		m.editor.Reset()
		m.mood.Reset()
		return m, m.editor.Focus()
	case key.Matches(msg, m.keys.Delete):
		if len(m.entries) == 0 {
			return m, nil
		}
		m.pending = m.entries[m.cursor].ID
		m.mode = modeConfirm
	}
	return m, nil
}

func (m Model) updateEditor(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.closeEditor()
		return m, nil
	case key.Matches(msg, m.keys.NextMood):
		m.mood.Next()
		return m, nil
	case key.Matches(msg, m.keys.PrevMood):
		m.mood.Prev()
		return m, nil
	case key.Matches(msg, m.keys.Save):
		if m.saving {
			return m, nil
		}
		m.saving = true
		return m, m.save(m.editor.Value(), m.mood.Selected())
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		id := m.pending
		m.pending = ""
		m.mode = modeList
		return m, m.remove(id)
	case key.Matches(msg, m.keys.No):
		m.pending = ""
		m.mode = modeList
	}
	return m, nil
}

func (m *Model) closeEditor() {
	m.editor.Blur()
	m.editor.Reset()
	m.mood.Reset()
	m.mode = modeList
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	rows := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) load() tea.Cmd {
	m.loading = true
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		entries, err := store.List(ctx)
		return entriesMsg{entries: entries, err: err}
	}
}

func (m Model) save(text string, mood model.Mood) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		return savedMsg{err: store.Create(ctx, text, mood)}
	}
}

// remove deletes id. The dialog has already asked, so the store's own
// confirmation is answered yes.
func (m Model) remove(id string) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		err := store.Delete(ctx, id, hmjournal.ConfirmFunc(func(string) bool { return true }))
		return deletedMsg{id: id, err: err}
	}
}
