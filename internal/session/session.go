// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jeranaias/heartmind/internal/storage"
)

// ErrClosed is returned by setters after Close.
var ErrClosed = errors.New("session: closed")

// Clock returns the current time.
type Clock func() time.Time

// =============================================================================
// SESSION
// =============================================================================

// Session is the explicit authentication context. It is safe for concurrent use.
type Session struct {
	mu     sync.RWMutex
	store  storage.Store
	clock  Clock
	token  string
	userID string
	closed bool
}

// Open loads the persisted token and user id from store. A token that cannot
// be unsealed is discarded so the user is asked to log in again.
func Open(store storage.Store, clock Clock) (*Session, error) {
	if clock == nil {
		clock = time.Now
	}
	s := &Session{store: store, clock: clock}

	token, err := store.Get(storage.KeyToken)
	switch {
	case err == nil:
		s.token = token
	case errors.Is(err, storage.ErrSealed):
		_ = store.Delete(storage.KeyToken)
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	userID, err := store.Get(storage.KeyUserID)
	switch {
	case err == nil:
		s.userID = userID
	case !errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("failed to load user id: %w", err)
	}

	return s, nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ""
	}
	return s.token
}

// UserID returns the last known user id.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ""
	}
	return s.userID
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// SetToken stores a new token. An empty token is the same as Logout.
func (s *Session) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Logout()
	}
	return s.set(storage.KeyToken, token, func() { s.token = token })
}

// SetUserID stores the user id used by the payment flow.
func (s *Session) SetUserID(id string) error {
	if id == "" || id == s.UserID() {
		return nil
	}
	return s.set(storage.KeyUserID, id, func() { s.userID = id })
}

func (s *Session) set(key, value string, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.store.Set(key, value); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	apply()
	return nil
}

// Logout clears the token and user id from memory and storage.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.token = ""
	s.userID = ""
	return errors.Join(
		s.store.Delete(storage.KeyToken),
		s.store.Delete(storage.KeyUserID),
	)
}

// Close releases the store. The session is unusable afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.store.Close()
}

// =============================================================================
// TOKEN EXPIRY
// =============================================================================

// TokenExpiry reads the exp claim of the held token without verifying its
// signature. The backend remains the authority; this only lets the client ask
// for a fresh login before a request is bound to fail.
func (s *Session) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	return TokenExpiry(token)
}

// TokenExpiry extracts the exp claim from a JWT.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Expired reports whether the held token carries an exp claim in the past.
// Tokens without a readable exp are never considered expired.
func (s *Session) Expired() bool {
	exp, ok := s.TokenExpiry()
	return ok && !exp.After(s.clock())
}
