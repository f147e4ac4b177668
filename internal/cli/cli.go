// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command identifies a top-level command.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdSignup
	CmdLogout
	CmdChat
	CmdJournal
	CmdSubscribe
	CmdVerify
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
	CmdUnknown
)

var commandNames = map[string]Command{
	"tui":       CmdTUI,
	"login":     CmdLogin,
	"signup":    CmdSignup,
	"register":  CmdSignup,
	"logout":    CmdLogout,
	"chat":      CmdChat,
	"journal":   CmdJournal,
	"j":         CmdJournal,
	"subscribe": CmdSubscribe,
	"pay":       CmdSubscribe,
	"verify":    CmdVerify,
	"status":    CmdStatus,
	"s":         CmdStatus,
	"config":    CmdConfig,
	"version":   CmdVersion,
	"help":      CmdHelp,
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Debug      bool
	Quiet      bool
	JSON       bool
	ConfigPath string

	// Name is the command word as typed.
	Name string

	// Raw args after the command word.
	Raw []string
}

// Parser parses the command's own arguments. boolFlags lists flags that
// never take a value.
func (a Args) Parser(boolFlags ...string) *ArgParser {
	return NewArgParser(a.Raw, boolFlags...)
}

const usageText = `heartmind - a companion for talking through how you feel

Usage:
  heartmind                          Start the terminal UI (default)
  heartmind login [--email E]        Log in
  heartmind signup [--name N] [--email E]
                                     Create an account
  heartmind logout                   Forget the stored token
  heartmind chat                     Line-mode chat
  heartmind journal list             Show journal entries
  heartmind journal add [--mood M] [text]
                                     Add an entry (text from stdin if omitted)
  heartmind journal delete <id> [--yes]
                                     Delete an entry
  heartmind subscribe [--wait]       Start the subscription checkout
  heartmind verify --reference R [--user U]
                                     Verify a checkout
  heartmind status                   Show account and access
  heartmind config [show|get|set|path]
                                     Configuration
  heartmind version                  Version information

Global flags:
  --debug          Mirror logs to stderr
  -q, --quiet      Less output
  --json           Machine-readable output where supported
  --config PATH    Use a specific config file

Moods: Sad, Angry, Relieved, Confused, Hopeful

Version: %s
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "heartmind version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse splits argv (without the program name) into a command and its args.
func Parse(argv []string) (Command, Args) {
	remaining, args := parseGlobalFlags(argv)
	if len(remaining) == 0 {
		return CmdTUI, args
	}

	args.Name = strings.ToLower(remaining[0])
	args.Raw = remaining[1:]

	switch args.Name {
	case "-h", "--help":
		return CmdHelp, args
	case "-v", "--version":
		return CmdVersion, args
	}
	if cmd, ok := commandNames[args.Name]; ok {
		return cmd, args
	}
	return CmdUnknown, args
}

// parseGlobalFlags extracts global flags wherever they appear.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--debug":
			args.Debug = true
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "--json":
			args.JSON = true
		case arg == "--config":
			if i+1 < len(argv) {
				i++
				args.ConfigPath = argv[i]
			}
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}
