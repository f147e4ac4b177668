// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/access"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/reveal"
	"github.com/jeranaias/heartmind/internal/util"
)

// DefaultFailureMessage is appended when a turn fails.
const DefaultFailureMessage = "Sorry, something went wrong."

// Completer returns the assistant reply for a history. *api.Client satisfies it.
type Completer interface {
	Chat(ctx context.Context, messages []model.Message) (string, error)
}

// Profile exposes the cached user. *identity.Cache satisfies it.
type Profile interface {
	Current() *model.User
}

// QuotaSyncer runs after a turn paid from the free quota.
type QuotaSyncer interface {
	Sync(ctx context.Context) error
}

// Options configures a Sequencer. Zero values use defaults.
type Options struct {
	FailureMessage string
	RevealInterval time.Duration
	Clock          access.Clock
	// OnScroll is called after every finished turn, success or failure.
	OnScroll func()
	// Mirror, when set, receives every reveal frame after the session does.
	Mirror reveal.Setter
	Logger zerolog.Logger
}

// =============================================================================
// TURN
// =============================================================================

// Turn is one accepted send between Begin and Finish (or Fail).
type Turn struct {
	ID int64
	// Text is the normalized user text that was appended.
	Text string
	// History is the full ordered history sent to the backend.
	History []model.Message
	// Decision is the access decision taken when the turn was sent.
	Decision model.AccessDecision

	handle   *TurnHandle
	finished atomic.Bool
	held     atomic.Bool
}

// Eligible reports whether the turn is paid from the free quota, judged at
// send time.
func (t *Turn) Eligible() bool {
	return t.Decision.ConsumesFreeMessage()
}

// Handle returns the assistant placeholder handle after Complete.
func (t *Turn) Handle() *TurnHandle {
	return t.handle
}

// Outcome reports what Send did.
type Outcome struct {
	// Accepted is false when the send was silently refused.
	Accepted bool
	Reply    string
	// Err is the completion error of a failed turn.
	Err error
	// QuotaSynced is true when the quota synchronizer ran.
	QuotaSynced bool
	// Cancelled is true when ctx ended during the reveal.
	Cancelled bool
}

// =============================================================================
// SEQUENCER
// =============================================================================

// Sequencer runs chat turns against a Session.
type Sequencer struct {
	session   *Session
	completer Completer
	profile   Profile
	quota     QuotaSyncer
	gate      *access.Gate
	opts      Options
	logger    zerolog.Logger
	nextID    atomic.Int64
}

// NewSequencer wires a sequencer. quota may be nil to skip quota syncing.
func NewSequencer(session *Session, completer Completer, profile Profile, quota QuotaSyncer, opts Options) *Sequencer {
	if opts.FailureMessage == "" {
		opts.FailureMessage = DefaultFailureMessage
	}
	if opts.RevealInterval < 0 {
		opts.RevealInterval = 0
	}
	return &Sequencer{
		session:   session,
		completer: completer,
		profile:   profile,
		quota:     quota,
		gate:      access.NewGate(opts.Clock),
		opts:      opts,
		logger:    opts.Logger.With().Str("component", "sequencer").Logger(),
	}
}

// Session returns the session the sequencer writes to.
func (q *Sequencer) Session() *Session {
	return q.session
}

// Decision evaluates access for the cached user now.
func (q *Sequencer) Decision() model.AccessDecision {
	return q.gate.Evaluate(q.profile.Current())
}

// User returns the cached user, nil before the profile has loaded.
func (q *Sequencer) User() *model.User {
	return q.profile.Current()
}

// SetRevealInterval changes the cadence for later turns.
func (q *Sequencer) SetRevealInterval(d time.Duration) {
	if d < 0 {
		d = 0
	}
	q.opts.RevealInterval = d
}

// RevealInterval returns the reveal cadence.
func (q *Sequencer) RevealInterval() time.Duration {
	return q.opts.RevealInterval
}

// Begin validates and appends the user message. It returns false, changing
// nothing, when the text is blank, no user is loaded, access is blocked or
// another turn is in flight.
func (q *Sequencer) Begin(text string) (*Turn, bool) {
	text = util.NormalizeInput(text)
	if text == "" {
		return nil, false
	}
	user := q.profile.Current()
	if user == nil {
		return nil, false
	}
	decision := q.gate.Evaluate(user)
	if !decision.CanChat {
		return nil, false
	}

	history, ok := q.session.begin(model.NewUserMessage(text))
	if !ok {
		return nil, false
	}

	turn := &Turn{
		ID:       q.nextID.Add(1),
		Text:     text,
		History:  history,
		Decision: decision,
	}
	q.logger.Debug().Int64("turn", turn.ID).Str("reason", string(decision.Reason)).
		Int("history", len(history)).Msg("turn started")
	return turn, true
}

// Complete appends the empty assistant placeholder for a successful reply
// and returns the handle the renderer writes through.
func (q *Sequencer) Complete(turn *Turn) *TurnHandle {
	turn.handle = q.session.appendAssistant("")
	return turn.handle
}

// Fail appends the failure notice and finishes the turn. No retry is made
// and the quota is not touched.
func (q *Sequencer) Fail(turn *Turn, err error) {
	if !turn.finished.CompareAndSwap(false, true) {
		return
	}
	q.logger.Warn().Err(err).Int64("turn", turn.ID).Msg("chat turn failed")
	q.session.appendAssistant(q.opts.FailureMessage)
	q.scroll()
	q.session.release()
}

// Finish ends a successful turn after its reveal. A turn paid from the free
// quota returns true and keeps busy held until Release, so no other send is
// judged against the count it is about to change. Any other turn clears busy.
func (q *Sequencer) Finish(turn *Turn) bool {
	if !turn.finished.CompareAndSwap(false, true) {
		return false
	}
	q.scroll()
	if turn.Eligible() && q.quota != nil {
		turn.held.Store(true)
		return true
	}
	q.session.release()
	return false
}

// Release clears busy for a turn Finish held for its quota sync. It is a
// no-op for any other turn.
func (q *Sequencer) Release(turn *Turn) {
	if turn.held.CompareAndSwap(true, false) {
		q.session.release()
	}
}

func (q *Sequencer) scroll() {
	if q.opts.OnScroll != nil {
		q.opts.OnScroll()
	}
}

// Send runs a whole turn and returns after the reply is fully revealed.
// Refused sends return Outcome{Accepted: false} with nothing changed.
func (q *Sequencer) Send(ctx context.Context, text string) Outcome {
	turn, ok := q.Begin(text)
	if !ok {
		return Outcome{}
	}

	reply, err := q.completer.Chat(ctx, turn.History)
	if err != nil {
		q.Fail(turn, err)
		return Outcome{Accepted: true, Err: err}
	}

	out := Outcome{Accepted: true, Reply: reply}
	var target reveal.Setter = q.Complete(turn)
	if q.opts.Mirror != nil {
		target = mirrored{target, q.opts.Mirror}
	}
	if err := reveal.Run(ctx, target, reply, q.opts.RevealInterval); err != nil {
		out.Cancelled = errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	}

	if q.Finish(turn) {
		// The reply was delivered, so the quota is accounted for even when
		// the caller has gone away.
		_ = q.quota.Sync(context.WithoutCancel(ctx))
		out.QuotaSynced = true
		q.Release(turn)
	}
	return out
}

type mirrored struct {
	primary, mirror reveal.Setter
}

func (m mirrored) SetText(text string) {
	m.primary.SetText(text)
	m.mirror.SetText(text)
}
