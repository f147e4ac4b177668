// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/model"
)

// Decrementer consumes one unit of free quota. *api.Client satisfies it.
type Decrementer interface {
	DecrementFree(ctx context.Context) error
}

// Refresher reloads the profile. *identity.Cache satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) (*model.User, error)
}

// QuotaSynchronizer tells the backend that a free message was used and then
// refreshes the profile. The refreshed profile is authoritative even when the
// decrement failed.
type QuotaSynchronizer struct {
	decrementer Decrementer
	refresher   Refresher
	logger      zerolog.Logger
}

// NewQuotaSynchronizer creates a synchronizer.
func NewQuotaSynchronizer(d Decrementer, r Refresher, logger zerolog.Logger) *QuotaSynchronizer {
	return &QuotaSynchronizer{
		decrementer: d,
		refresher:   r,
		logger:      logger.With().Str("component", "quota").Logger(),
	}
}

// Sync decrements and refreshes. Failures are logged; the returned error is
// for callers that want to record it and is never shown to the user.
func (q *QuotaSynchronizer) Sync(ctx context.Context) error {
	decErr := q.decrementer.DecrementFree(ctx)
	if decErr != nil {
		q.logger.Warn().Err(decErr).Msg("free quota decrement failed")
	}

	_, refErr := q.refresher.Refresh(ctx)
	if refErr != nil {
		q.logger.Warn().Err(refErr).Msg("profile refresh after decrement failed")
	}
	return errors.Join(decErr, refErr)
}
