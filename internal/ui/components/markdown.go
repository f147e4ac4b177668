// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// MarkdownRenderer renders finished assistant replies with glamour. The
// glamour renderer is rebuilt only when the width or style changes.
type MarkdownRenderer struct {
	style    string
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

// NewMarkdownRenderer creates a renderer for a glamour standard style
// ("dark", "light" or "notty").
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	return &MarkdownRenderer{style: style, cache: make(map[string]string)}
}

// Render returns text as styled markdown wrapped to width. It falls back to
// plain word wrapping if glamour fails.
func (r *MarkdownRenderer) Render(text string, width int) string {
	if width < 10 {
		width = 10
	}
	if width != r.width || r.renderer == nil {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return wordwrap.String(text, width)
		}
		r.renderer, r.width = tr, width
		r.cache = make(map[string]string)
	}

	if out, ok := r.cache[text]; ok {
		return out
	}
	out, err := r.renderer.Render(text)
	if err != nil {
		return wordwrap.String(text, width)
	}
	out = strings.Trim(out, "\n")
	r.cache[text] = out
	return out
}
