// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires the HeartMind components together for the CLI and TUI.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/heartmind/internal/access"
	"github.com/jeranaias/heartmind/internal/api"
	"github.com/jeranaias/heartmind/internal/chat"
	"github.com/jeranaias/heartmind/internal/config"
	"github.com/jeranaias/heartmind/internal/identity"
	"github.com/jeranaias/heartmind/internal/journal"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/payment"
	"github.com/jeranaias/heartmind/internal/session"
	"github.com/jeranaias/heartmind/internal/storage"
)

// Options overrides parts of the wiring, mainly for tests.
type Options struct {
	// Store replaces the SQLite store named by the config.
	Store storage.Store
	// Clock replaces time.Now.
	Clock access.Clock
	// RetryDelay overrides the API client's pause before a retry.
	RetryDelay time.Duration
}

// App holds every long-lived component for one process.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   storage.Store
	Session *session.Session
	Client  *api.Client
	Profile *identity.Cache
	Journal *journal.Store
	Payment *payment.Flow
	Gate    *access.Gate
	Quota   *chat.QuotaSynchronizer

	clock   access.Clock
	closers []io.Closer
}

// New builds an App from cfg.
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*App, error) {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	store := opts.Store
	if store == nil {
		var err error
		store, err = openStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	// The session owns the store from here on.
	sess, err := session.Open(store, session.Clock(clock))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	if sess.Authenticated() && sess.Expired() {
		logger.Info().Msg("stored token expired, logging out")
		_ = sess.Logout()
	}

	client := api.NewClient(&api.ClientConfig{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout(),
		Retries:    cfg.API.Retries,
		RetryDelay: opts.RetryDelay,
		RateLimit:  cfg.API.RateLimit,
		RateBurst:  cfg.API.RateBurst,
	}, sess, logger)

	profile := identity.NewCache(client, sess, logger)

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Session: sess,
		Client:  client,
		Profile: profile,
		Journal: journal.NewStore(client, logger),
		Payment: payment.NewFlow(client, sess, profile, cfg.Payment.CallbackURL, logger),
		Gate:    access.NewGate(clock),
		Quota:   chat.NewQuotaSynchronizer(client, profile, logger),
		clock:   clock,
	}
	return a, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	path, err := cfg.StoragePath()
	if err != nil {
		return nil, err
	}
	db, err := storage.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	if !cfg.Storage.Seal {
		return db, nil
	}
	sealed, err := storage.NewSealedStore(db, storage.SealSecret(cfg.Storage.Passphrase), storage.KeyToken)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return sealed, nil
}

// NewSequencer creates a chat sequencer on a fresh session seeded with the
// configured greeting.
func (a *App) NewSequencer(opts chat.Options) *chat.Sequencer {
	if opts.FailureMessage == "" {
		opts.FailureMessage = a.Config.Chat.FailureMessage
	}
	if opts.RevealInterval == 0 {
		opts.RevealInterval = a.Config.Chat.RevealInterval()
	}
	if opts.Clock == nil {
		opts.Clock = a.clock
	}
	opts.Logger = a.Logger
	return chat.NewSequencer(chat.NewSession(a.Config.Chat.Greeting), a.Client, a.Profile, a.Quota, opts)
}

// Decision evaluates access for the cached user.
func (a *App) Decision() (*model.User, model.AccessDecision) {
	user := a.Profile.Current()
	return user, a.Gate.Evaluate(user)
}

// Load refreshes the profile and the journal concurrently. A journal failure
// is logged and does not fail the load.
func (a *App) Load(ctx context.Context) error {
	if !a.Session.Authenticated() {
		return identity.ErrNotAuthenticated
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := a.Profile.Refresh(ctx)
		return err
	})
	g.Go(func() error {
		if _, err := a.Journal.List(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("journal load failed")
		}
		return nil
	})
	return g.Wait()
}

// Logout clears the stored credentials and cached state.
func (a *App) Logout() error {
	a.Profile.Clear()
	return a.Session.Logout()
}

// AddCloser registers c to be closed by Close.
func (a *App) AddCloser(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Close releases registered closers, then the session and its store.
func (a *App) Close() error {
	return errors.Join(closeAll(a.closers), a.Session.Close())
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
