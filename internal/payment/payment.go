// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package payment starts a hosted subscription checkout and verifies it when
// the provider sends the user back.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/api"
	"github.com/jeranaias/heartmind/internal/model"
)

// User-facing status lines.
const (
	MsgUserNotFound     = "User not found."
	MsgStartFailed      = "Payment failed to start."
	MsgMissingReference = "Payment reference or user ID is missing."
	MsgVerifying        = "Verifying payment..."
	MsgSuccess          = "Payment successful! Your subscription is now active."
	MsgVerifyFailed     = "Payment verification failed."
	MsgNetworkFailure   = "Verification failed due to network error."
)

// Shown in place of the composer once access is blocked.
const (
	MsgPaywall     = "You have used all free messages. Please subscribe."
	SubscribeLabel = "Subscribe ₦750 to Continue"
)

var (
	// ErrUserNotFound means no user id is known locally.
	ErrUserNotFound = errors.New("payment: user id unknown")
	// ErrStartFailed wraps a failed checkout creation.
	ErrStartFailed = errors.New("payment: failed to start checkout")
	// ErrMissingReference means the callback lacked a reference or user id.
	ErrMissingReference = errors.New("payment: reference or user id missing")
	// ErrNotVerified means the server answered but did not confirm payment.
	ErrNotVerified = errors.New("payment: not verified")
)

// Backend is the remote payment API. *api.Client satisfies it.
type Backend interface {
	CreatePaymentSession(ctx context.Context, userID, callbackURL string) (string, error)
	VerifyPayment(ctx context.Context, reference, userID string) (*api.VerifyResponse, error)
}

// Identity is where the user id lives. *session.Session satisfies it.
type Identity interface {
	UserID() string
	SetUserID(id string) error
}

// ProfileSink accepts a profile returned by verification.
// *identity.Cache satisfies it.
type ProfileSink interface {
	Set(user *model.User)
}

// =============================================================================
// RESULT
// =============================================================================

// Status is the outcome of a verification.
type Status int

const (
	StatusPending Status = iota
	StatusSuccess
	StatusFailed
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is what the status line shows after a verification attempt.
type Result struct {
	Status  Status
	Message string
	User    *model.User
	Err     error
}

// OK reports whether the subscription is active.
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// =============================================================================
// FLOW
// =============================================================================

// Flow runs the subscription checkout.
type Flow struct {
	backend     Backend
	identity    Identity
	profile     ProfileSink
	callbackURL string
	logger      zerolog.Logger
}

// NewFlow creates a flow. profile may be nil.
func NewFlow(backend Backend, identity Identity, profile ProfileSink, callbackURL string, logger zerolog.Logger) *Flow {
	return &Flow{
		backend:     backend,
		identity:    identity,
		profile:     profile,
		callbackURL: callbackURL,
		logger:      logger.With().Str("component", "payment").Logger(),
	}
}

// WithCallbackURL returns a copy of the flow using a different return URL,
// e.g. the local callback listener.
func (f *Flow) WithCallbackURL(callbackURL string) *Flow {
	c := *f
	c.callbackURL = callbackURL
	return &c
}

// CallbackURL appends userId to base, keeping any existing query.
func CallbackURL(base, userID string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid callback URL: %w", err)
	}
	q := u.Query()
	q.Set("userId", userID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StartSubscription creates a checkout and returns the URL to open.
func (f *Flow) StartSubscription(ctx context.Context) (string, error) {
	userID := f.identity.UserID()
	if userID == "" {
		return "", ErrUserNotFound
	}

	callback, err := CallbackURL(f.callbackURL, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStartFailed, err)
	}

	checkout, err := f.backend.CreatePaymentSession(ctx, userID, callback)
	if err != nil {
		f.logger.Warn().Err(err).Msg("checkout creation failed")
		return "", fmt.Errorf("%w: %w", ErrStartFailed, err)
	}
	f.logger.Info().Str("user_id", userID).Msg("checkout created")
	return checkout, nil
}

// StartMessage maps a StartSubscription error to its status line.
func StartMessage(err error) string {
	if errors.Is(err, ErrUserNotFound) {
		return MsgUserNotFound
	}
	return MsgStartFailed
}

// ParseCallback reads reference and userId from a return URL's query.
func ParseCallback(q url.Values) (reference, userID string) {
	return strings.TrimSpace(q.Get("reference")), strings.TrimSpace(q.Get("userId"))
}

// Verify confirms a checkout. An empty userID falls back to the stored one.
// A missing reference or user id yields StatusError without any request.
func (f *Flow) Verify(ctx context.Context, reference, userID string) Result {
	if userID == "" {
		userID = f.identity.UserID()
	}
	if reference == "" || userID == "" {
		return Result{Status: StatusError, Message: MsgMissingReference, Err: ErrMissingReference}
	}

	resp, err := f.backend.VerifyPayment(ctx, reference, userID)
	if err != nil {
		f.logger.Warn().Err(err).Str("reference", reference).Msg("payment verification request failed")
		msg := api.ServerMessage(err)
		if msg == "" {
			msg = MsgNetworkFailure
		}
		return Result{Status: StatusError, Message: msg, Err: err}
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = MsgVerifyFailed
		}
		return Result{Status: StatusFailed, Message: msg, Err: ErrNotVerified}
	}

	if resp.User != nil {
		if err := f.identity.SetUserID(resp.User.ID); err != nil {
			f.logger.Warn().Err(err).Msg("failed to store user id after payment")
		}
		if f.profile != nil {
			f.profile.Set(resp.User)
		}
	}
	f.logger.Info().Str("reference", reference).Msg("payment verified")
	return Result{Status: StatusSuccess, Message: MsgSuccess, User: resp.User}
}
