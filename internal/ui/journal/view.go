// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package journal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	hmjournal "github.com/jeranaias/heartmind/internal/journal"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/ui/components"
	"github.com/jeranaias/heartmind/internal/util"
)

const (
	// rowHeight is the lines each entry takes in the list.
	rowHeight = 2
	// dateLayout formats entry timestamps.
	dateLayout = "Jan 2, 2006 15:04"
)

// View renders the list, the editor or the delete dialog.
func (m Model) View() string {
	switch m.mode {
	case modeEdit:
		return m.viewEditor()
	case modeConfirm:
		detail := ""
		if e, ok := m.store.Find(m.pending); ok {
			detail = util.Truncate(util.FirstLine(e.Entry), m.width-12)
		}
		return components.ConfirmDialog(m.theme, m.width, m.height, hmjournal.DeletePrompt, detail)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	if len(m.entries) == 0 {
		msg := "No journal entries yet. Press n to write one."
		if m.loading {
			msg = "Loading your journal..."
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.theme.Muted.Render(msg))
	}

	rows := m.visibleRows()
	end := m.offset + rows
	if end > len(m.entries) {
		end = len(m.entries)
	}

	var b strings.Builder
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderEntry(m.entries[i], i == m.cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if m.loading {
		b.WriteString("\n" + m.theme.Muted.Render("Refreshing..."))
	}
	return b.String()
}

func (m Model) renderEntry(e model.JournalEntry, selected bool) string {
	style := m.theme.ListItem
	if selected {
		style = m.theme.ListSelected
	}

	meta := e.CreatedAt.Local().Format(dateLayout)
	if e.Mood != model.MoodNone {
		meta += "  " + m.theme.Mood.Render(string(e.Mood))
	}
	text := util.FirstLine(e.Entry)
	if text == "" {
		text = "(no text)"
	}
	text = util.Truncate(text, m.width-4)

	return style.Width(m.width).Render(fmt.Sprintf("%s\n%s", m.theme.ListMeta.Render(meta), text))
}

func (m Model) viewEditor() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.DialogTitle.Render("New journal entry"),
		"",
		m.editor.View(),
		"",
		m.theme.FieldLabel.Render("Mood ")+m.mood.View(),
	)
}

// ShortHelp returns the bindings shown in the status bar.
func (m Model) ShortHelp() []key.Binding {
	switch m.mode {
	case modeEdit:
		return []key.Binding{m.keys.Save, m.keys.NextMood, m.keys.Back}
	case modeConfirm:
		return []key.Binding{m.keys.Yes, m.keys.No}
	default:
		return []key.Binding{m.keys.New, m.keys.Delete, m.keys.Refresh, m.keys.Back}
	}
}

func (m Model) visibleRows() int {
	rows := m.height / rowHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}
