// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/heartmind/internal/app"
	"github.com/jeranaias/heartmind/internal/config"
)

// Run starts the full-screen interface and blocks until the user quits or
// ctx is cancelled. When cfgPath is set, edits to that file are applied
// while running.
func Run(ctx context.Context, a *app.App, cfgPath string) error {
	m := New(ctx, a, Options{})
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if cfgPath != "" {
		w, err := config.NewWatcher(cfgPath,
			func(cfg *config.Config) { p.Send(ConfigReloadedMsg{Config: cfg}) },
			func(err error) { a.Logger.Warn().Err(err).Msg("config reload failed") },
		)
		if err != nil {
			a.Logger.Warn().Err(err).Str("path", cfgPath).Msg("config watcher unavailable")
		} else {
			defer w.Close()
		}
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal UI: %w", err)
	}
	return nil
}
