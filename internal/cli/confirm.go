// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// =============================================================================
// PROMPTER
// =============================================================================

// Prompter reads answers from the user. Only an interactive prompter asks
// questions; a piped one reads lines but never confirms on its own.
type Prompter struct {
	in          *bufio.Reader
	fd          int
	out         io.Writer
	interactive bool
}

// NewPrompter prompts on out and reads from in. It is interactive when in is
// a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := NewPrompterWithMode(in, out, IsTerminal(in))
	if f, ok := in.(*os.File); ok {
		p.fd = int(f.Fd())
	}
	return p
}

// NewPrompterWithMode lets tests force interactivity.
func NewPrompterWithMode(in io.Reader, out io.Writer, interactive bool) *Prompter {
	return &Prompter{in: bufio.NewReader(in), fd: -1, out: out, interactive: interactive}
}

// Interactive reports whether the user can be asked questions.
func (p *Prompter) Interactive() bool {
	return p.interactive
}

// Line prints prompt and reads one line without its newline. It returns
// io.EOF only when nothing was read.
func (p *Prompter) Line(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(p.out, prompt)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Password reads a secret without echo on a terminal, else a plain line.
func (p *Prompter) Password(prompt string) (string, error) {
	if !p.interactive || p.fd < 0 {
		return p.Line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	secret, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}

// ReadAll reads the rest of the input, for entries piped on stdin.
func (p *Prompter) ReadAll() (string, error) {
	data, err := io.ReadAll(p.in)
	return string(data), err
}

// Confirm asks a yes/no question. Anything but y or yes is a no, as is a
// non-interactive prompter.
func (p *Prompter) Confirm(question string) bool {
	if !p.interactive {
		return false
	}
	answer, err := p.Line(fmt.Sprintf("%s [y/N]: ", question))
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// =============================================================================
// CONFIRMATION
// =============================================================================

// RequireConfirmation decides whether a destructive action may proceed:
//  1. --yes proceeds without a prompt
//  2. a non-interactive prompter is an error naming --yes
//  3. otherwise the user is asked
func RequireConfirmation(p *Prompter, yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	if !p.Interactive() {
		return false, &TTYRequiredError{Operation: "confirm (pass --yes)"}
	}
	return p.Confirm(question), nil
}
