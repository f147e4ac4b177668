// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable pieces of the HeartMind TUI:
// header, status bar, message bubbles, the paywall, the mood picker and the
// confirm dialog. Components hold no application state; screens own them
// and set their fields before calling View.
package components
