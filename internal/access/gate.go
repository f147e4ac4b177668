// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package access decides whether a chat turn may be sent.
//
// The decision is a pure function of the user profile and the current time.
// It is recomputed after every identity refresh and never cached.
//
// # Usage
//
//	gate := access.NewGate(time.Now)
//	if d := gate.Evaluate(user); !d.CanChat {
//	    // offer the subscription instead of the composer
//	}
package access

import (
	"time"

	"github.com/jeranaias/heartmind/internal/model"
)

// Clock returns the current time.
type Clock func() time.Time

// Evaluate computes the access decision for user at now.
// A nil user is blocked.
func Evaluate(user *model.User, now time.Time) model.AccessDecision {
	switch {
	case user == nil:
		return model.AccessDecision{CanChat: false, Reason: model.ReasonBlocked}
	case user.IsSubscribed(now):
		return model.AccessDecision{CanChat: true, Reason: model.ReasonSubscribed}
	case user.FreeMessages > 0:
		return model.AccessDecision{CanChat: true, Reason: model.ReasonFreeRemaining}
	default:
		return model.AccessDecision{CanChat: false, Reason: model.ReasonBlocked}
	}
}

// Gate evaluates access against an injected clock.
type Gate struct {
	clock Clock
}

// NewGate creates a gate. A nil clock uses time.Now.
func NewGate(clock Clock) *Gate {
	if clock == nil {
		clock = time.Now
	}
	return &Gate{clock: clock}
}

// Evaluate computes the decision for user at the gate's current time.
func (g *Gate) Evaluate(user *model.User) model.AccessDecision {
	return Evaluate(user, g.Now())
}

// Now returns the gate's current time.
func (g *Gate) Now() time.Time {
	if g == nil || g.clock == nil {
		return time.Now()
	}
	return g.clock()
}
