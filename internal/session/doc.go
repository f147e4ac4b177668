// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the authentication context shared by every component
// that talks to the HeartMind backend.
//
// A Session owns the bearer token and the user id. It is created once at
// startup from a storage.Store and handed to constructors explicitly; nothing
// reads the token from ambient state.
//
// # Key Types
//
//   - Session: Token and user id with persistence, logout and close
//
// # Usage
//
//	sess, err := session.Open(store, time.Now)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	if !sess.Authenticated() {
//	    // prompt for login
//	}
//	_ = sess.SetToken(resp.Token)
//
// # Lifecycle
//
// Logout clears both values from memory and storage. Close releases the
// underlying store; a closed session reports no token.
package session
