// HeartMind - a terminal companion for talking through how you feel.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/app"
	"github.com/jeranaias/heartmind/internal/cli"
	"github.com/jeranaias/heartmind/internal/config"
	"github.com/jeranaias/heartmind/internal/logging"
	"github.com/jeranaias/heartmind/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd, args := cli.Parse(argv)

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(stdout)
		return cli.ExitSuccess
	case cli.CmdUnknown:
		err := &cli.UsageError{Usage: fmt.Sprintf("unknown command %q; run `heartmind help`", args.Name)}
		cli.DisplayError(stderr, err, args.JSON)
		return cli.ExitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, cfgPath, err := loadConfig(args)
	if cfg == nil {
		cli.DisplayError(stderr, err, args.JSON)
		return cli.ExitConfigError
	}
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v (using defaults)\n", err)
	}

	if cmd == cli.CmdConfig {
		err := cli.HandleConfig(stdout, cfg, cfgPath, args)
		cli.DisplayError(stderr, err, args.JSON)
		return cli.ExitCode(err)
	}

	logger, logCloser, err := logging.New(cfg, logging.Options{Debug: args.Debug, Console: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		logger = zerolog.Nop()
	}
	defer logCloser.Close()
	logger.Debug().Str("command", args.Name).Str("version", Version).Msg("starting")

	a, err := app.New(cfg, logger, app.Options{})
	if err != nil {
		cli.DisplayError(stderr, err, args.JSON)
		return cli.ExitCode(err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn().Err(err).Msg("close failed")
		}
	}()

	if cmd == cli.CmdTUI {
		err = ui.Run(ctx, a, cfgPath)
	} else {
		err = dispatch(ctx, cmd, cli.NewEnv(a, stdin, stdout, stderr, args), args)
	}
	if err != nil {
		logger.Debug().Err(err).Str("command", args.Name).Msg("command failed")
		cli.DisplayError(stderr, err, args.JSON)
	}
	return cli.ExitCode(err)
}

func dispatch(ctx context.Context, cmd cli.Command, env *cli.Env, args cli.Args) error {
	switch cmd {
	case cli.CmdLogin:
		return cli.HandleLogin(ctx, env, args)
	case cli.CmdSignup:
		return cli.HandleSignup(ctx, env, args)
	case cli.CmdLogout:
		return cli.HandleLogout(ctx, env, args)
	case cli.CmdChat:
		return cli.HandleChat(ctx, env, args)
	case cli.CmdJournal:
		return cli.HandleJournal(ctx, env, args)
	case cli.CmdSubscribe:
		return cli.HandleSubscribe(ctx, env, args)
	case cli.CmdVerify:
		return cli.HandleVerify(ctx, env, args)
	case cli.CmdStatus:
		return cli.HandleStatus(ctx, env, args)
	default:
		return &cli.UsageError{Usage: "heartmind help"}
	}
}

// loadConfig reads the --config file or the default one. A default file that
// fails to parse still yields a usable config alongside the error.
func loadConfig(args cli.Args) (*config.Config, string, error) {
	path, err := config.ActivePath(args.ConfigPath)
	if err != nil {
		return nil, "", err
	}
	if args.ConfigPath != "" {
		cfg, err := config.LoadFromPath(args.ConfigPath)
		return cfg, path, err
	}
	cfg, err := config.Load()
	return cfg, path, err
}
