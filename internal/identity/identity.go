// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package identity caches the authenticated user's profile.
//
// The cache is stale-but-available: a failed refresh keeps the previous User
// so the UI can keep rendering. Callers re-evaluate access after every
// refresh.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/model"
)

// ErrNotAuthenticated is returned when no token is held. No request is made.
var ErrNotAuthenticated = errors.New("identity: not authenticated")

// ErrEmptyProfile is returned when the backend answers without a user.
var ErrEmptyProfile = errors.New("identity: empty profile")

// ProfileFetcher loads the current profile. *api.Client satisfies it.
type ProfileFetcher interface {
	Me(ctx context.Context) (*model.User, error)
}

// Credentials is the part of the session the cache needs.
// *session.Session satisfies it.
type Credentials interface {
	Token() string
	SetUserID(id string) error
}

// Cache holds the last successfully fetched User.
type Cache struct {
	fetcher ProfileFetcher
	creds   Credentials
	logger  zerolog.Logger

	mu        sync.RWMutex
	user      *model.User
	refreshes int
}

// NewCache creates an empty cache.
func NewCache(fetcher ProfileFetcher, creds Credentials, logger zerolog.Logger) *Cache {
	return &Cache{
		fetcher: fetcher,
		creds:   creds,
		logger:  logger.With().Str("component", "identity").Logger(),
	}
}

// Refresh fetches the profile and replaces the cached User wholesale.
// On failure the previous value stays in place and the error is returned.
func (c *Cache) Refresh(ctx context.Context) (*model.User, error) {
	if c.creds.Token() == "" {
		return c.Current(), ErrNotAuthenticated
	}

	user, err := c.fetcher.Me(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("profile refresh failed, keeping cached user")
		return c.Current(), fmt.Errorf("refresh profile: %w", err)
	}
	if user == nil {
		c.logger.Warn().Msg("profile refresh returned no user, keeping cached user")
		return c.Current(), ErrEmptyProfile
	}

	c.mu.Lock()
	c.user = user.Clone()
	c.refreshes++
	c.mu.Unlock()

	if err := c.creds.SetUserID(user.ID); err != nil {
		c.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to persist user id")
	}
	c.logger.Debug().Str("user_id", user.ID).Int("free_messages", user.FreeMessages).Msg("profile refreshed")
	return user.Clone(), nil
}

// Current returns a copy of the cached User, or nil if none was loaded.
func (c *Cache) Current() *model.User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user.Clone()
}

// Set replaces the cached User, e.g. with the profile returned by a payment
// verification.
func (c *Cache) Set(user *model.User) {
	c.mu.Lock()
	c.user = user.Clone()
	c.mu.Unlock()
	if user != nil {
		if err := c.creds.SetUserID(user.ID); err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist user id")
		}
	}
}

// Clear drops the cached User, used on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()
}

// Refreshes returns how many refreshes have succeeded.
func (c *Cache) Refreshes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refreshes
}
