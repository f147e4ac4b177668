// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/session"
	"github.com/jeranaias/heartmind/internal/storage"
)

type fakeFetcher struct {
	user  *model.User
	err   error
	calls int
}

func (f *fakeFetcher) Me(ctx context.Context) (*model.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.user.Clone(), nil
}

func newSession(t *testing.T, token string) *session.Session {
	t.Helper()
	s, err := session.Open(storage.NewMemoryStore(), nil)
	require.NoError(t, err)
	if token != "" {
		require.NoError(t, s.SetToken(token))
	}
	return s
}

func TestRefresh_ReplacesAndPersistsUserID(t *testing.T) {
	sess := newSession(t, "tok")
	f := &fakeFetcher{user: &model.User{ID: "u1", FreeMessages: 2}}
	c := NewCache(f, sess, zerolog.Nop())

	assert.Nil(t, c.Current())

	user, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 2, c.Current().FreeMessages)
	assert.Equal(t, "u1", sess.UserID())
	assert.Equal(t, 1, c.Refreshes())

	f.user = &model.User{ID: "u1", FreeMessages: 1}
	_, err = c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, c.Current().FreeMessages)
}

func TestRefresh_FailureKeepsStaleUser(t *testing.T) {
	sess := newSession(t, "tok")
	f := &fakeFetcher{user: &model.User{ID: "u1", FreeMessages: 2}}
	c := NewCache(f, sess, zerolog.Nop())
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	f.err = errors.New("offline")
	user, err := c.Refresh(context.Background())
	require.Error(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 2, user.FreeMessages)
	assert.Equal(t, 2, c.Current().FreeMessages)
	assert.Equal(t, 1, c.Refreshes())
}

func TestRefresh_EmptyProfileKeepsStaleUser(t *testing.T) {
	sess := newSession(t, "tok")
	f := &fakeFetcher{user: &model.User{ID: "u1", FreeMessages: 2}}
	c := NewCache(f, sess, zerolog.Nop())
	_, err := c.Refresh(context.Background())
	require.NoError(t, err)

	f.user = nil
	user, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrEmptyProfile)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, 2, c.Current().FreeMessages)
	assert.Equal(t, 1, c.Refreshes())
}

func TestRefresh_NoTokenMakesNoCall(t *testing.T) {
	f := &fakeFetcher{user: &model.User{ID: "u1"}}
	c := NewCache(f, newSession(t, ""), zerolog.Nop())

	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, 0, f.calls)
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	c := NewCache(&fakeFetcher{}, newSession(t, "tok"), zerolog.Nop())
	c.Set(&model.User{ID: "u1", FreeMessages: 4})

	u := c.Current()
	u.FreeMessages = 0
	assert.Equal(t, 4, c.Current().FreeMessages)

	c.Clear()
	assert.Nil(t, c.Current())
}
