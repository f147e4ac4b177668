// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the small amount of local state heartmind keeps
// between runs: the bearer token and the user id.
//
// Chat history is never persisted. The store is a plain key/value table.
//
// # Key Types
//
//   - Store: Key/value interface used by the session context
//   - SQLiteStore: modernc.org/sqlite backed store (~/.heartmind/state.db)
//   - MemoryStore: In-process store for tests and --ephemeral runs
//   - Sealer: AES-GCM sealing of values at rest with a PBKDF2 derived key
//   - SealedStore: Store wrapper that seals selected keys
//
// # Usage
//
//	db, err := storage.OpenSQLite(path)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//	_ = db.Set(storage.KeyUserID, "64f0c...")
package storage
