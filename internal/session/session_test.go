// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/heartmind/internal/storage"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("server-secret"))
	require.NoError(t, err)
	return s
}

func TestOpen_LoadsPersistedState(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyToken, "tok"))
	require.NoError(t, store.Set(storage.KeyUserID, "u1"))

	s, err := Open(store, nil)
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, "u1", s.UserID())
}

func TestOpen_Empty(t *testing.T) {
	s, err := Open(storage.NewMemoryStore(), nil)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())
	assert.Equal(t, "", s.UserID())
}

func TestOpen_DiscardsUnsealableToken(t *testing.T) {
	inner := storage.NewMemoryStore()
	require.NoError(t, inner.Set(storage.KeyToken, "v1:garbage"))
	sealed, err := storage.NewSealedStore(inner, []byte("m"), storage.KeyToken)
	require.NoError(t, err)

	s, err := Open(sealed, nil)
	require.NoError(t, err)
	assert.False(t, s.Authenticated())

	_, err = inner.Get(storage.KeyToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSetTokenAndLogout(t *testing.T) {
	store := storage.NewMemoryStore()
	s, err := Open(store, nil)
	require.NoError(t, err)

	require.NoError(t, s.SetToken(" tok "))
	require.NoError(t, s.SetUserID("u9"))

	v, err := store.Get(storage.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	require.NoError(t, s.Logout())
	assert.False(t, s.Authenticated())
	assert.Equal(t, "", s.UserID())
	assert.Empty(t, store.Keys())
}

func TestSetToken_EmptyLogsOut(t *testing.T) {
	store := storage.NewMemoryStore()
	s, err := Open(store, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("tok"))
	require.NoError(t, s.SetToken(""))
	assert.False(t, s.Authenticated())
}

func TestClose(t *testing.T) {
	s, err := Open(storage.NewMemoryStore(), nil)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("tok"))

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, "", s.Token())
	assert.ErrorIs(t, s.SetToken("again"), ErrClosed)
}

func TestExpired_UsesInjectedClock(t *testing.T) {
	exp := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	now := exp.Add(-time.Hour)

	s, err := Open(storage.NewMemoryStore(), func() time.Time { return now })
	require.NoError(t, err)
	require.NoError(t, s.SetToken(signed(t, exp)))

	got, ok := s.TokenExpiry()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))
	assert.False(t, s.Expired())

	now = exp.Add(time.Second)
	assert.True(t, s.Expired())
}

func TestExpired_OpaqueToken(t *testing.T) {
	s, err := Open(storage.NewMemoryStore(), nil)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("not-a-jwt"))

	_, ok := s.TokenExpiry()
	assert.False(t, ok)
	assert.False(t, s.Expired())
}
