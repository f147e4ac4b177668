// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the heartmind command line: argument parsing,
// prompts and the non-TUI commands.
//
// # Commands
//
//   - login, signup, logout: account and stored token
//   - chat: line-mode conversation with history (liner)
//   - journal list|add|delete: journaling
//   - subscribe, verify: subscription checkout
//   - status: account and access decision
//   - config show|get|set|path|keys: configuration
//
// Handlers take an *Env so tests can supply their own input and output.
//
//	cmd, args := cli.Parse(os.Args[1:])
//	env := cli.NewEnv(application, os.Stdin, os.Stdout, os.Stderr, args)
//	err := cli.HandleStatus(ctx, env, args)
package cli
