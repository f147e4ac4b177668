// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat owns the conversation: the ordered message history, the
// sequencing of one turn at a time, and the free-quota bookkeeping that
// follows a completed turn.
//
// # Key Types
//
//   - Session: Ordered messages plus the busy flag, seeded with a greeting
//   - TurnHandle: Write access to exactly one assistant message's text
//   - Sequencer: Gate check, append, remote completion, reveal, quota sync
//   - QuotaSynchronizer: Decrement the free quota, then refresh the profile
//
// # Turn Order
//
// For every accepted send the Sequencer:
//
//  1. appends the user message and marks the session busy
//  2. sends the full history to the completion endpoint
//  3. appends an empty assistant message and reveals the reply into it,
//     or appends the failure notice
//  4. scrolls, syncs the quota when the turn was paid from the free quota,
//     and clears busy
//
// Only the Sequencer changes the number of messages. The renderer holds a
// TurnHandle and can only set the text of the message it was given.
//
// # Driving Modes
//
// Send runs the whole turn and blocks until the reveal finishes; the CLI
// REPL uses it. The TUI uses Begin, Complete, Fail and Finish so the network
// call and the reveal ticks run as bubbletea commands.
package chat
