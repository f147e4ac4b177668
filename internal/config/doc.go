// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for heartmind.
//
// Configuration is read from ~/.heartmind/config.toml, falling back to
// config.json and then to built-in defaults. A .env file in the working
// directory is loaded first, then HEARTMIND_* environment variables are
// applied on top.
//
// # Key Types
//
//   - Config: Complete configuration split into api, chat, payment, ui, log and storage
//   - ValidationError: One invalid field with a message
//   - Watcher: fsnotify-based reload of the config file
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    // cfg still holds usable defaults
//	}
//	client := api.NewClient(cfg.API.BaseURL)
//
// Dot-notation access backs the `heartmind config` command:
//
//	v, _ := cfg.Get("chat.reveal_interval_ms")
//	_ = cfg.Set("api.base_url", "http://localhost:5000")
package config
