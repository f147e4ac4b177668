// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"strings"

	"github.com/jeranaias/heartmind/internal/identity"
	"github.com/jeranaias/heartmind/internal/util"
)

// Fallbacks when the backend gives no message.
const (
	MsgLoginFailed  = identity.MsgLoginFailed
	MsgSignupFailed = identity.MsgSignupFailed
)

// HandleLogin handles "login [--email E] [--password-stdin]".
func HandleLogin(ctx context.Context, env *Env, args Args) error {
	p := args.Parser("password-stdin")

	var form identity.LoginForm
	var err error
	if form.Email, err = flagOrPrompt(env, p.Flag("email", "e"), "Email: "); err != nil {
		return err
	}
	if form.Password, err = readPassword(env, p.BoolFlag("password-stdin")); err != nil {
		return err
	}
	if err := form.Validate(); err != nil {
		return FormErrors(err)
	}

	token, err := env.App.Client.Login(ctx, form.Email, form.Password)
	if err != nil {
		return NewCommandError("login", serverMessageOr(err, MsgLoginFailed), err)
	}
	return finishAuth(ctx, env, token, "Welcome back")
}

// HandleSignup handles "signup [--name N] [--email E] [--password-stdin]".
func HandleSignup(ctx context.Context, env *Env, args Args) error {
	p := args.Parser("password-stdin")

	var form identity.SignupForm
	var err error
	if form.Name, err = flagOrPrompt(env, p.Flag("name", "n"), "Name: "); err != nil {
		return err
	}
	if form.Email, err = flagOrPrompt(env, p.Flag("email", "e"), "Email: "); err != nil {
		return err
	}
	if form.Password, err = readPassword(env, p.BoolFlag("password-stdin")); err != nil {
		return err
	}
	if err := form.Validate(); err != nil {
		return FormErrors(err)
	}

	token, err := env.App.Client.Signup(ctx, form.Name, form.Email, form.Password)
	if err != nil {
		return NewCommandError("signup", serverMessageOr(err, MsgSignupFailed), err)
	}
	return finishAuth(ctx, env, token, "Welcome")
}

// HandleLogout handles "logout".
func HandleLogout(ctx context.Context, env *Env, args Args) error {
	if err := env.App.Logout(); err != nil {
		return err
	}
	env.info("Logged out.")
	return nil
}

// finishAuth stores the token and loads the profile, which also stores the
// user id.
func finishAuth(ctx context.Context, env *Env, token, greeting string) error {
	if err := env.App.Session.SetToken(token); err != nil {
		return err
	}
	user, err := env.App.Profile.Refresh(ctx)
	if err != nil {
		env.App.Logger.Warn().Err(err).Msg("profile load after login failed")
		env.info("%s. Your profile could not be loaded yet.", greeting)
		return nil
	}
	name := user.Name
	if name == "" {
		name = user.Email
	}
	env.info("%s, %s.", greeting, name)
	return nil
}

func flagOrPrompt(env *Env, value, prompt string) (string, error) {
	if value != "" {
		return util.NormalizeInput(value), nil
	}
	line, err := env.Prompt.Line(prompt)
	if err != nil {
		return "", err
	}
	return util.NormalizeInput(line), nil
}

func readPassword(env *Env, fromStdin bool) (string, error) {
	var (
		pw  string
		err error
	)
	if fromStdin {
		pw, err = env.Prompt.Line("")
	} else {
		pw, err = env.Prompt.Password("Password: ")
	}
	return strings.TrimRight(pw, "\r\n"), err
}
