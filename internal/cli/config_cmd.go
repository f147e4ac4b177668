// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/heartmind/internal/config"
)

const configUsage = "heartmind config [show | get <key> | set <key> <value> | path | keys]"

// HandleConfig handles "config show|get|set|path|keys". cfg is the effective
// configuration; path is the file that set writes to.
func HandleConfig(w io.Writer, cfg *config.Config, path string, args Args) error {
	p := args.Parser()

	switch p.Subcommand() {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config show", cfg).Write(w)
		}
		fmt.Fprintln(w, cfg.String())
		return nil

	case "get":
		key := p.Positional(1)
		if key == "" {
			return &UsageError{Usage: "heartmind config get <key>"}
		}
		v, err := cfg.Get(key)
		if err != nil {
			return NewValidationError("key", key, err.Error())
		}
		fmt.Fprintln(w, v)
		return nil

	case "set":
		key, value := p.Positional(1), p.JoinFrom(2)
		if key == "" || p.PositionalCount() < 3 {
			return &UsageError{Usage: "heartmind config set <key> <value>"}
		}
		if err := setConfigValue(path, key, value); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("Set"), key, value)
		return nil

	case "path":
		fmt.Fprintln(w, path)
		return nil

	case "keys":
		fmt.Fprintln(w, strings.Join(config.AllKeys(), "\n"))
		return nil

	default:
		return &UsageError{Usage: configUsage}
	}
}

// setConfigValue edits the file at path only, so environment overrides in
// effect for this process are not written back.
func setConfigValue(path, key, value string) error {
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		var loadErr error
		if strings.HasSuffix(path, ".json") {
			loadErr = config.LoadJSON(cfg, path)
		} else {
			loadErr = config.LoadTOML(cfg, path)
		}
		if loadErr != nil {
			return loadErr
		}
	}

	if err := cfg.Set(key, value); err != nil {
		return NewValidationError("key", key, err.Error())
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	if strings.HasSuffix(path, ".json") {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}
