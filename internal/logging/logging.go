// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/config"
	"github.com/jeranaias/heartmind/internal/util"
)

// Options adjusts logger construction for the current run mode.
type Options struct {
	// Debug forces debug level and adds a console writer on Console.
	Debug bool
	// Console receives human-readable output when Debug is set. Defaults to stderr.
	Console io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps a config level name to a zerolog level.
// Unknown names fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// New opens the log file named by cfg and returns a logger writing to it.
// The returned closer releases the file.
func New(cfg *config.Config, opts Options) (zerolog.Logger, io.Closer, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), util.DirPerm); err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, fmt.Errorf("failed to open log file: %w", err)
	}

	level := ParseLevel(cfg.Log.Level)
	var out io.Writer = f
	if opts.Debug {
		level = zerolog.DebugLevel
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		out = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen})
	}

	return NewWithWriter(out, level), f, nil
}

// NewWithWriter returns a timestamped logger at level writing to w.
func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Str("app", "heartmind").Logger()
}
