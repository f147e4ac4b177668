// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// AccessReason explains an access decision.
type AccessReason string

const (
	ReasonSubscribed    AccessReason = "subscribed"
	ReasonFreeRemaining AccessReason = "free-remaining"
	ReasonBlocked       AccessReason = "blocked"
)

// AccessDecision is derived from a User on every evaluation and never stored.
type AccessDecision struct {
	CanChat bool
	Reason  AccessReason
}

// NeedsPayment reports whether the payment path should replace the composer.
func (d AccessDecision) NeedsPayment() bool {
	return !d.CanChat
}

// ConsumesFreeMessage reports whether a turn sent under this decision uses
// one unit of free quota.
func (d AccessDecision) ConsumesFreeMessage() bool {
	return d.Reason == ReasonFreeRemaining
}
