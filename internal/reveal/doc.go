// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reveal discloses an already-known reply one character at a time.
//
// A Reveal is a small state machine:
//
//	Idle -> Revealing(progress) -> Done
//	          \-> Cancelled
//
// Each Step advances one rune and yields the new prefix, so intermediate
// texts are always proper prefixes of the target with non-decreasing length
// and multi-byte characters are never split.
//
// Run drives a Reveal from a ticker for blocking callers (the CLI REPL).
// The TUI drives Step from tea.Tick messages instead.
//
// # Usage
//
//	err := reveal.Run(ctx, handle, reply, 30*time.Millisecond)
//	if errors.Is(err, context.Canceled) {
//	    // the full text was written, the animation was cut short
//	}
package reveal
