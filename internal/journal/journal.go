// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package journal keeps a local copy of the user's journal entries.
//
// The backend is the owner of every entry. The Store caches the list in
// server order (newest first, as returned) and refreshes it after changes:
// a create re-fetches the whole list, a delete removes the entry locally.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/util"
)

// DeletePrompt is the question asked before an entry is deleted.
const DeletePrompt = "Delete this journal entry?"

var (
	// ErrEmptyEntry rejects a create with neither text nor mood.
	ErrEmptyEntry = errors.New("journal: entry and mood are both empty")
	// ErrDeleteDeclined is returned when the user does not confirm a delete.
	ErrDeleteDeclined = errors.New("journal: delete not confirmed")
	// ErrUnknownMood rejects a mood typed by the user that is not selectable.
	ErrUnknownMood = errors.New("journal: unknown mood")
)

// Backend is the remote journal API. *api.Client satisfies it.
type Backend interface {
	ListJournal(ctx context.Context) ([]model.JournalEntry, error)
	CreateJournal(ctx context.Context, draft model.JournalDraft) (*model.JournalEntry, error)
	DeleteJournal(ctx context.Context, id string) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm approves every prompt, for --yes.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })

// =============================================================================
// STORE
// =============================================================================

// Store is the cached journal list. It is safe for concurrent use.
type Store struct {
	backend Backend
	logger  zerolog.Logger

	mu      sync.RWMutex
	entries []model.JournalEntry
	loaded  bool
}

// NewStore creates an empty store.
func NewStore(backend Backend, logger zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.With().Str("component", "journal").Logger(),
	}
}

// List fetches the entries and replaces the cache.
func (s *Store) List(ctx context.Context) ([]model.JournalEntry, error) {
	entries, err := s.backend.ListJournal(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to fetch journal")
		return s.Entries(), fmt.Errorf("list journal: %w", err)
	}

	s.mu.Lock()
	s.entries = append([]model.JournalEntry(nil), entries...)
	s.loaded = true
	s.mu.Unlock()
	return s.Entries(), nil
}

// Create validates and stores a new entry, then re-fetches the list.
// An entry with neither text nor mood makes no call and leaves the cache as is.
func (s *Store) Create(ctx context.Context, entry string, mood model.Mood) error {
	draft := model.JournalDraft{Entry: util.NormalizeInput(entry), Mood: mood}
	if draft.IsEmpty() {
		return ErrEmptyEntry
	}

	if _, err := s.backend.CreateJournal(ctx, draft); err != nil {
		s.logger.Warn().Err(err).Msg("failed to create journal entry")
		return fmt.Errorf("create journal entry: %w", err)
	}

	if _, err := s.List(ctx); err != nil {
		return err
	}
	return nil
}

// CreateText parses a typed mood before creating. Unknown moods are rejected.
func (s *Store) CreateText(ctx context.Context, entry, mood string) error {
	m, ok := model.ParseMood(mood)
	if !ok {
		return fmt.Errorf("%w: %q (choose one of %s)", ErrUnknownMood, mood, moodChoices())
	}
	return s.Create(ctx, entry, m)
}

// Delete asks for confirmation, deletes the entry remotely and removes it
// from the cache.
func (s *Store) Delete(ctx context.Context, id string, confirm Confirmer) error {
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return ErrDeleteDeclined
	}

	if err := s.backend.DeleteJournal(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("entry_id", id).Msg("failed to delete journal entry")
		return fmt.Errorf("delete journal entry: %w", err)
	}

	s.mu.Lock()
	kept := s.entries[:0:0]
	for _, e := range s.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	s.mu.Unlock()
	return nil
}

// Entries returns a copy of the cached list.
func (s *Store) Entries() []model.JournalEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.JournalEntry(nil), s.entries...)
}

// Loaded reports whether a List has succeeded.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Find returns the cached entry with id.
func (s *Store) Find(id string) (model.JournalEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.JournalEntry{}, false
}

func moodChoices() string {
	names := make([]string, len(model.Moods))
	for i, m := range model.Moods {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
