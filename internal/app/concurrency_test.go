// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/heartmind/internal/chat"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/storage"
	"github.com/jeranaias/heartmind/internal/testutil"
)

// Run with -race; these exercise the shared state the TUI touches from
// commands running on other goroutines.

const (
	raceConcurrency = 20
	raceIterations  = 25
	raceTimeout     = 30 * time.Second
)

func loggedInApp(t *testing.T, b *testutil.Backend) *App {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyToken, testutil.Token))
	a := newApp(t, b, store)
	require.NoError(t, a.Load(context.Background()))
	return a
}

// TestConcurrency_SendsNeverOverlap fires sends from many goroutines at one
// sequencer. Accepted turns must each add exactly two messages and consume
// exactly one free unit.
func TestConcurrency_SendsNeverOverlap(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Update(func(b *testutil.Backend) { b.User.FreeMessages = 1000 })
	a := loggedInApp(t, b)
	seq := a.NewSequencer(chat.Options{})

	ctx, cancel := context.WithTimeout(context.Background(), raceTimeout)
	defer cancel()

	var accepted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if out := seq.Send(ctx, "hello"); out.Accepted {
				assert.NoError(t, out.Err)
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	n := int(accepted.Load())
	require.GreaterOrEqual(t, n, 1)
	assert.Equal(t, 1+2*n, seq.Session().Len())
	assert.Equal(t, n, b.Calls("POST /api/ai-chat"))
	assert.Equal(t, n, b.Calls("POST /api/auth/decrement-free"))
	assert.False(t, seq.Session().Busy())

	msgs := seq.Session().Messages()
	for i := 1; i < len(msgs); i += 2 {
		assert.Equal(t, model.RoleUser, msgs[i].Role, "message %d", i)
		assert.Equal(t, model.RoleAssistant, msgs[i+1].Role, "message %d", i+1)
	}
}

// TestConcurrency_ProfileReadsDuringRefresh reads the cached user while it is
// being replaced.
func TestConcurrency_ProfileReadsDuringRefresh(t *testing.T) {
	b := testutil.NewBackend(t)
	a := loggedInApp(t, b)

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				if u := a.Profile.Current(); u != nil {
					assert.Equal(t, "u1", u.ID)
				}
				a.Decision()
			}
		}()
		go func() {
			defer wg.Done()
			_, err := a.Profile.Refresh(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

// TestConcurrency_JournalReadsDuringList reads the journal cache while lists
// and deletes replace it.
func TestConcurrency_JournalReadsDuringList(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Update(func(b *testutil.Backend) {
		for i := 0; i < 10; i++ {
			b.Journal = append(b.Journal, model.JournalEntry{ID: string(rune('a' + i)), Entry: "entry"})
		}
	})
	a := loggedInApp(t, b)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < raceConcurrency; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < raceIterations; j++ {
				for _, e := range a.Journal.Entries() {
					_, _ = a.Journal.Find(e.ID)
				}
			}
		}()
		go func() {
			defer wg.Done()
			_, _ = a.Journal.List(ctx)
		}()
	}
	wg.Wait()
	assert.True(t, a.Journal.Loaded())
}
