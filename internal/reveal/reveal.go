// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reveal

import (
	"context"
	"time"
)

// DefaultInterval is the reference cadence of one character per 30ms.
const DefaultInterval = 30 * time.Millisecond

// State is the phase of a Reveal.
type State int

const (
	StateIdle State = iota
	StateRevealing
	StateDone
	StateCancelled
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRevealing:
		return "revealing"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Setter receives each revealed prefix. chat.TurnHandle satisfies it.
type Setter interface {
	SetText(text string)
}

// =============================================================================
// REVEAL
// =============================================================================

// Reveal tracks progress through a target text. It is not safe for
// concurrent use; one driver owns it.
type Reveal struct {
	target []rune
	pos    int
	state  State
}

// New creates an idle reveal of target.
func New(target string) *Reveal {
	return &Reveal{target: []rune(target)}
}

// State returns the current phase.
func (r *Reveal) State() State {
	return r.state
}

// Target returns the full text being revealed.
func (r *Reveal) Target() string {
	return string(r.target)
}

// Text returns the prefix revealed so far.
func (r *Reveal) Text() string {
	return string(r.target[:r.pos])
}

// Progress returns revealed and total rune counts.
func (r *Reveal) Progress() (int, int) {
	return r.pos, len(r.target)
}

// Finished reports whether the reveal is Done or Cancelled.
func (r *Reveal) Finished() bool {
	return r.state == StateDone || r.state == StateCancelled
}

// Step advances one rune and returns the new prefix and whether the reveal is
// now finished. An empty target finishes on the first step without change.
// Steps after finishing return the current text unchanged.
func (r *Reveal) Step() (string, bool) {
	if r.Finished() {
		return r.Text(), true
	}
	r.state = StateRevealing
	if r.pos < len(r.target) {
		r.pos++
	}
	if r.pos == len(r.target) {
		r.state = StateDone
	}
	return r.Text(), r.state == StateDone
}

// Cancel stops the reveal where it is. A finished reveal is unchanged.
func (r *Reveal) Cancel() {
	if !r.Finished() {
		r.state = StateCancelled
	}
}

// Complete jumps to the full text and marks the reveal Done.
func (r *Reveal) Complete() string {
	if r.state != StateCancelled {
		r.pos = len(r.target)
		r.state = StateDone
	}
	return r.Text()
}

// =============================================================================
// TICKER DRIVER
// =============================================================================

// Run reveals text into s at one rune per interval and returns once s holds
// the full text. If ctx ends first, s is set to the full text and ctx's error
// is returned so the caller never leaves a truncated reply behind. A
// non-positive interval reveals everything at once.
func Run(ctx context.Context, s Setter, text string, interval time.Duration) error {
	r := New(text)
	if len(r.target) == 0 {
		r.Step()
		return nil
	}
	if interval <= 0 {
		s.SetText(r.Complete())
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Cancel()
			s.SetText(text)
			return ctx.Err()
		case <-ticker.C:
			prefix, done := r.Step()
			s.SetText(prefix)
			if done {
				return nil
			}
		}
	}
}
