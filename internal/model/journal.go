// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// =============================================================================
// MOOD TYPE
// =============================================================================

// Mood is the optional feeling attached to a journal entry.
type Mood string

const (
	MoodNone     Mood = ""
	MoodSad      Mood = "Sad"
	MoodAngry    Mood = "Angry"
	MoodRelieved Mood = "Relieved"
	MoodConfused Mood = "Confused"
	MoodHopeful  Mood = "Hopeful"
)

// Moods lists the selectable moods in display order.
var Moods = []Mood{MoodSad, MoodAngry, MoodRelieved, MoodConfused, MoodHopeful}

// ParseMood matches s case-insensitively against the known moods.
// The empty string parses to MoodNone.
func ParseMood(s string) (Mood, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MoodNone, true
	}
	for _, m := range Moods {
		if strings.EqualFold(s, string(m)) {
			return m, true
		}
	}
	return MoodNone, false
}

// String returns the mood label.
func (m Mood) String() string {
	return string(m)
}

// =============================================================================
// JOURNAL ENTRY
// =============================================================================

// JournalEntry is a reflective note stored by the backend.
type JournalEntry struct {
	ID        string    `json:"_id"`
	Entry     string    `json:"entry"`
	Mood      Mood      `json:"mood"`
	CreatedAt time.Time `json:"createdAt"`
}

// JournalDraft is the request body for creating an entry.
type JournalDraft struct {
	Entry string `json:"entry"`
	Mood  Mood   `json:"mood"`
}

// IsEmpty reports whether the draft has neither text nor mood.
func (d JournalDraft) IsEmpty() bool {
	return strings.TrimSpace(d.Entry) == "" && d.Mood == MoodNone
}
