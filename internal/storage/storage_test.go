// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the common Store contract against s.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	_, err := s.Get(KeyToken)
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.Set(KeyToken, "abc"))
	v, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Set(KeyToken, "def"))
	v, err = s.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "def", v)

	require.NoError(t, s.Delete(KeyToken))
	require.NoError(t, s.Delete(KeyToken))
	_, err = s.Get(KeyToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseStore(t, s)

	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Set("a", "1"))
	assert.Equal(t, []string{"a", "b"}, s.Keys())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "state.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
	assert.Equal(t, path, s.Path())

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyUserID, "u-42"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	v, err := s.Get(KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, "u-42", v)
}

// =============================================================================
// SEALING
// =============================================================================

func TestSealer_RoundTrip(t *testing.T) {
	s, err := NewSealer([]byte("secret"), []byte("0123456789abcdef"))
	require.NoError(t, err)

	sealed, err := s.Seal("eyJhbGciOi.token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, sealPrefix))
	assert.NotContains(t, sealed, "token")

	plain, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.token", plain)
}

func TestSealer_WrongKey(t *testing.T) {
	salt := []byte("0123456789abcdef")
	a, err := NewSealer([]byte("one"), salt)
	require.NoError(t, err)
	b, err := NewSealer([]byte("two"), salt)
	require.NoError(t, err)

	sealed, err := a.Seal("x")
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.ErrorIs(t, err, ErrSealed)

	_, err = a.Open("plain-value")
	assert.ErrorIs(t, err, ErrSealed)

	_, err = NewSealer([]byte("one"), nil)
	assert.Error(t, err)
}

func TestSealedStore(t *testing.T) {
	inner := NewMemoryStore()
	s, err := NewSealedStore(inner, []byte("machine"), KeyToken)
	require.NoError(t, err)

	require.NoError(t, s.Set(KeyToken, "tok"))
	require.NoError(t, s.Set(KeyUserID, "u1"))

	raw, err := inner.Get(KeyToken)
	require.NoError(t, err)
	assert.NotEqual(t, "tok", raw)

	raw, err = inner.Get(KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, "u1", raw)

	v, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	// The salt is reused, so a second wrapper opens the same value.
	again, err := NewSealedStore(inner, []byte("machine"), KeyToken)
	require.NoError(t, err)
	v, err = again.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)

	other, err := NewSealedStore(inner, []byte("elsewhere"), KeyToken)
	require.NoError(t, err)
	_, err = other.Get(KeyToken)
	assert.ErrorIs(t, err, ErrSealed)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSealSecret(t *testing.T) {
	assert.Equal(t, MachineSecret(), SealSecret(""), "empty passphrase falls back to the machine key")
	assert.NotEqual(t, MachineSecret(), SealSecret("hunter2"))
	assert.Equal(t, SealSecret("hunter2"), SealSecret("hunter2"))
}

func TestSealedStore_PassphraseMismatch(t *testing.T) {
	inner := NewMemoryStore()
	s, err := NewSealedStore(inner, SealSecret("first"), KeyToken)
	require.NoError(t, err)
	require.NoError(t, s.Set(KeyToken, "tok"))

	other, err := NewSealedStore(inner, SealSecret("second"), KeyToken)
	require.NoError(t, err)
	_, err = other.Get(KeyToken)
	assert.ErrorIs(t, err, ErrSealed)

	machine, err := NewSealedStore(inner, SealSecret(""), KeyToken)
	require.NoError(t, err)
	_, err = machine.Get(KeyToken)
	assert.ErrorIs(t, err, ErrSealed)

	same, err := NewSealedStore(inner, SealSecret("first"), KeyToken)
	require.NoError(t, err)
	v, err := same.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok", v)
}
