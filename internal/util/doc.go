// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the HeartMind client.
//
// # Key Functions
//
//   - AtomicWriteFile: Crash-safe file writing with fsync and private directories
//   - NormalizeInput: NFC normalisation and trimming of typed text
//   - Truncate: Display-width aware truncation for previews
//   - FirstLine: First non-empty line of a multi-line string
//
// # Usage
//
//	text := util.NormalizeInput(raw)
//	preview := util.Truncate(entry.Entry, 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
