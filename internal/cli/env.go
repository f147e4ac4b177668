// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/heartmind/internal/app"
	"github.com/jeranaias/heartmind/internal/util"
)

// Env is what a command runs against.
type Env struct {
	App    *app.App
	Out    io.Writer
	Err    io.Writer
	Prompt *Prompter

	JSON  bool
	Quiet bool

	// Now defaults to time.Now.
	Now func() time.Time
	// OpenURL defaults to util.OpenBrowser.
	OpenURL func(string) error
}

// NewEnv creates an Env reading from in.
func NewEnv(a *app.App, in io.Reader, out, errOut io.Writer, args Args) *Env {
	return &Env{
		App:     a,
		Out:     out,
		Err:     errOut,
		Prompt:  NewPrompter(in, out),
		JSON:    args.JSON,
		Quiet:   args.Quiet,
		Now:     time.Now,
		OpenURL: util.OpenBrowser,
	}
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) printf(format string, a ...any) {
	fmt.Fprintf(e.Out, format, a...)
}

// info prints a line unless --quiet.
func (e *Env) info(format string, a ...any) {
	if e.Quiet {
		return
	}
	fmt.Fprintf(e.Out, format+"\n", a...)
}

func (e *Env) requireLogin() error {
	if !e.App.Session.Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}
