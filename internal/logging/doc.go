// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zerolog logger used across heartmind.
//
// The TUI owns stdout, so logs go to a JSON-lines file under the heartmind
// directory. CLI commands run with --debug additionally get a console writer
// on stderr.
//
// # Usage
//
//	logger, closer, err := logging.New(cfg, logging.Options{})
//	if err != nil {
//	    logger = zerolog.Nop()
//	}
//	defer closer.Close()
//	logger.Info().Str("user_id", id).Msg("profile refreshed")
package logging
