// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the domain types shared by the HeartMind client.
//
// These are plain data structures with JSON tags matching the backend wire
// format. Behavior lives in the packages that own each type (chat, journal,
// identity, access).
//
// # Key Types
//
//   - User: Authenticated profile with subscription expiry and free quota
//   - Message: Single chat turn with role and text
//   - Role: Message role enumeration (user, assistant)
//   - JournalEntry: Reflective journal entry with optional mood
//   - Mood: Journal mood enumeration
//   - AccessDecision: Derived chat permission with a reason
//
// # Usage
//
// Check whether a profile has an active subscription:
//
//	user := &model.User{ID: "u1", FreeMessages: 3}
//	if user.IsSubscribed(time.Now()) {
//	    fmt.Println("subscribed")
//	}
//
// Build chat history:
//
//	msgs := []model.Message{model.NewUserMessage("I feel tired")}
package model
