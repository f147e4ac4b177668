// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"strconv"
	"time"

	"github.com/jeranaias/heartmind/internal/model"
)

type statusOutput struct {
	LoggedIn        bool       `json:"logged_in"`
	UserID          string     `json:"user_id,omitempty"`
	Name            string     `json:"name,omitempty"`
	Email           string     `json:"email,omitempty"`
	Subscribed      bool       `json:"subscribed"`
	SubscribedUntil *time.Time `json:"subscribed_until,omitempty"`
	FreeMessages    int        `json:"free_messages"`
	CanChat         bool       `json:"can_chat"`
	Reason          string     `json:"reason"`
	TokenExpires    *time.Time `json:"token_expires,omitempty"`
	Stale           bool       `json:"stale,omitempty"`
	API             string     `json:"api"`
}

// HandleStatus handles "status".
func HandleStatus(ctx context.Context, env *Env, args Args) error {
	if !env.App.Session.Authenticated() {
		if env.JSON {
			return NewJSONResponse("status", statusOutput{API: env.App.Client.BaseURL()}).Write(env.Out)
		}
		env.printf("%s %s\n", RenderLabel("Account"), WarningStyle.Render("not logged in"))
		env.printf("%s %s\n", RenderLabel("API"), env.App.Client.BaseURL())
		return nil
	}

	_, err := env.App.Profile.Refresh(ctx)
	out := collectStatus(env)
	out.Stale = err != nil
	if out.UserID == "" && err != nil {
		return NewCommandError("status", "Could not load your profile: "+serverMessageOr(err, "network error"), err)
	}

	if env.JSON {
		return NewJSONResponse("status", out).Write(env.Out)
	}
	renderStatus(env, out)
	return nil
}

func collectStatus(env *Env) statusOutput {
	user, decision := env.App.Decision()
	out := statusOutput{
		LoggedIn: true,
		CanChat:  decision.CanChat,
		Reason:   string(decision.Reason),
		API:      env.App.Client.BaseURL(),
	}
	if exp, ok := env.App.Session.TokenExpiry(); ok {
		out.TokenExpires = &exp
	}
	if user == nil {
		return out
	}
	out.UserID, out.Name, out.Email = user.ID, user.Name, user.Email
	out.Subscribed = user.IsSubscribed(env.now())
	out.SubscribedUntil = user.SubscriptionExpiresAt
	out.FreeMessages = user.FreeMessages
	return out
}

func printStatus(env *Env) error {
	if !env.App.Session.Authenticated() {
		return ErrNotLoggedIn
	}
	renderStatus(env, collectStatus(env))
	return nil
}

func renderStatus(env *Env, s statusOutput) {
	env.printf("%s\n", TitleStyle.Render("HeartMind"))
	name := s.Name
	if name == "" {
		name = s.Email
	}
	env.printf("%s %s\n", RenderLabel("Account"), ValueStyle.Render(name))
	if s.Email != "" && s.Email != name {
		env.printf("%s %s\n", RenderLabel("Email"), s.Email)
	}

	switch {
	case s.Subscribed:
		env.printf("%s %s until %s\n", RenderLabel("Subscription"), RenderStatus("ok"),
			s.SubscribedUntil.Local().Format("2006-01-02"))
	case s.SubscribedUntil != nil:
		env.printf("%s expired %s\n", RenderLabel("Subscription"), s.SubscribedUntil.Local().Format("2006-01-02"))
	default:
		env.printf("%s none\n", RenderLabel("Subscription"))
	}
	env.printf("%s %s\n", RenderLabel("Free messages"), strconv.Itoa(s.FreeMessages))

	access := SuccessStyle.Render("can chat")
	if !s.CanChat {
		access = ErrorStyle.Render("blocked") + " " + DimStyle.Render("("+MsgSubscribeLabel+": heartmind subscribe)")
	} else if s.Reason == string(model.ReasonFreeRemaining) {
		access = WarningStyle.Render("can chat (free)")
	}
	env.printf("%s %s\n", RenderLabel("Access"), access)

	if s.TokenExpires != nil {
		env.printf("%s %s\n", RenderLabel("Session expires"), DimStyle.Render(s.TokenExpires.Local().Format(time.RFC822)))
	}
	if s.Stale {
		env.printf("%s\n", WarningStyle.Render("Showing cached details; the profile could not be refreshed."))
	}
}
