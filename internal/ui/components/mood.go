// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/ui/styles"
)

// MoodPicker selects one of the journal moods, or none. Index 0 is none.
type MoodPicker struct {
	index int
	theme *styles.Theme
}

// NewMoodPicker creates a picker with no mood selected.
func NewMoodPicker(theme *styles.Theme) *MoodPicker {
	return &MoodPicker{theme: theme}
}

// Next selects the following mood, wrapping around.
func (p *MoodPicker) Next() {
	p.index = (p.index + 1) % (len(model.Moods) + 1)
}

// Prev selects the previous mood, wrapping around.
func (p *MoodPicker) Prev() {
	n := len(model.Moods) + 1
	p.index = (p.index + n - 1) % n
}

// Reset clears the selection.
func (p *MoodPicker) Reset() {
	p.index = 0
}

// Selected returns the chosen mood, MoodNone when nothing is chosen.
func (p *MoodPicker) Selected() model.Mood {
	if p.index == 0 {
		return model.MoodNone
	}
	return model.Moods[p.index-1]
}

// View renders every option with the current one highlighted.
func (p *MoodPicker) View() string {
	opts := make([]string, 0, len(model.Moods)+1)
	for i := 0; i <= len(model.Moods); i++ {
		label := "none"
		if i > 0 {
			label = string(model.Moods[i-1])
		}
		style := p.theme.Mood
		if i == p.index {
			style = p.theme.MoodSelected
		}
		opts = append(opts, style.Render(label))
	}
	return strings.Join(opts, " ")
}
