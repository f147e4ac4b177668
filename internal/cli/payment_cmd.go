// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"time"

	"github.com/jeranaias/heartmind/internal/payment"
	"github.com/jeranaias/heartmind/internal/server"
)

// HandleSubscribe handles "subscribe [--no-wait] [--no-open]".
func HandleSubscribe(ctx context.Context, env *Env, args Args) error {
	if err := env.requireLogin(); err != nil {
		return err
	}
	p := args.Parser("no-wait", "no-open")
	if p.BoolFlag("no-open") {
		env.OpenURL = nil
	}
	return runSubscribe(ctx, env, !p.BoolFlag("no-wait"))
}

// runSubscribe creates a checkout, shows or opens it and, when a loopback
// listener is configured and wait is set, verifies the returning redirect.
func runSubscribe(ctx context.Context, env *Env, wait bool) error {
	cfg := env.App.Config.Payment
	flow := env.App.Payment

	var srv *server.Server
	if wait && cfg.CallbackListen != "" {
		var err error
		srv, err = server.New(server.Config{Addr: cfg.CallbackListen}, env.App.Logger)
		if err != nil {
			return NewCommandError("subscribe", "Could not start the local payment listener.", err)
		}
		go func() {
			if err := srv.Start(); err != nil {
				env.App.Logger.Error().Err(err).Msg("callback listener failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		flow = flow.WithCallbackURL(srv.CallbackURL())
	}

	checkout, err := flow.StartSubscription(ctx)
	if err != nil {
		return NewCommandError("subscribe", payment.StartMessage(err), err)
	}

	env.printf("%s\n  %s\n", TitleStyle.Render(MsgSubscribeLabel), checkout)
	if cfg.OpenBrowser && env.OpenURL != nil {
		if err := env.OpenURL(checkout); err != nil {
			env.App.Logger.Debug().Err(err).Msg("open browser failed")
			env.info("%s", DimStyle.Render("Open the link above in your browser."))
		}
	}

	if srv == nil {
		env.info("%s", DimStyle.Render("After paying, run: heartmind verify --reference <reference>"))
		return nil
	}

	env.info("%s", DimStyle.Render("Waiting for the payment to complete..."))
	waitCtx, cancel := context.WithTimeout(ctx, cfg.WaitTimeout())
	defer cancel()
	cb, err := srv.Wait(waitCtx)
	if err != nil {
		return NewCommandError("subscribe",
			"No payment confirmation received. If you paid, run `heartmind verify --reference <reference>`.", err)
	}

	env.info("%s", payment.MsgVerifying)
	return reportVerify(env, flow.Verify(ctx, cb.Reference, cb.UserID))
}

// HandleVerify handles "verify --reference R [--user U]".
func HandleVerify(ctx context.Context, env *Env, args Args) error {
	p := args.Parser()
	ref := p.Flag("reference", "r", "ref")
	if ref == "" {
		ref = p.Positional(0)
	}
	res := env.App.Payment.Verify(ctx, ref, p.Flag("user", "u", "userId"))
	return reportVerify(env, res)
}

type verifyOutput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func reportVerify(env *Env, res payment.Result) error {
	if env.JSON && res.OK() {
		return NewJSONResponse("verify", verifyOutput{Status: res.Status.String(), Message: res.Message}).Write(env.Out)
	}
	if !res.OK() {
		return NewCommandError("verify", res.Message, res.Err)
	}
	env.printf("%s\n", SuccessStyle.Render(res.Message))
	return nil
}
