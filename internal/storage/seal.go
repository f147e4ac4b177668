// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	keySize          = 32
	saltSize         = 16
	sealPrefix       = "v1:"

	// keySalt stores the per-install salt next to the sealed values.
	keySalt = "_seal_salt"
)

// ErrSealed is returned when a sealed value cannot be opened, usually because
// the database was copied to another machine or account.
var ErrSealed = errors.New("storage: sealed value cannot be opened")

// Sealer encrypts short values with AES-256-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a key from secret and salt with PBKDF2-SHA-256.
func NewSealer(secret, salt []byte) (*Sealer, error) {
	if len(salt) == 0 {
		return nil, errors.New("storage: empty salt")
	}
	key := pbkdf2.Key(secret, salt, pbkdf2Iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext and returns a printable token.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	if !strings.HasPrefix(sealed, sealPrefix) {
		return "", ErrSealed
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, sealPrefix))
	if err != nil {
		return "", ErrSealed
	}
	n := s.aead.NonceSize()
	if len(data) < n {
		return "", ErrSealed
	}
	plain, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", ErrSealed
	}
	return string(plain), nil
}

// MachineSecret returns key material bound to this host and account.
// Hostname and home directory are not secret: anyone who can read state.db on
// this account can derive the key. It only stops a copied state.db from
// yielding a usable token on another machine.
func MachineSecret() []byte {
	host, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	return []byte("heartmind|" + host + "|" + home)
}

// SealSecret returns the key material for sealing. A non-empty passphrase is
// used as is; otherwise it falls back to MachineSecret.
func SealSecret(passphrase string) []byte {
	if passphrase != "" {
		return []byte("heartmind-pass|" + passphrase)
	}
	return MachineSecret()
}

// =============================================================================
// SEALED STORE
// =============================================================================

// SealedStore seals the values of selected keys before handing them to the
// underlying store. Other keys pass through unchanged.
//
// Sealing is only as strong as the secret. With MachineSecret it is
// obfuscation against a copied database, not protection from another process
// running as the same user; a passphrase from SealSecret closes that gap.
type SealedStore struct {
	Store
	sealer *Sealer
	keys   map[string]bool
}

// NewSealedStore wraps inner, sealing the listed keys. The salt is created on
// first use and kept in inner.
func NewSealedStore(inner Store, secret []byte, keys ...string) (*SealedStore, error) {
	salt, err := loadOrCreateSalt(inner)
	if err != nil {
		return nil, err
	}
	sealer, err := NewSealer(secret, salt)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return &SealedStore{Store: inner, sealer: sealer, keys: set}, nil
}

func loadOrCreateSalt(inner Store) ([]byte, error) {
	encoded, err := inner.Get(keySalt)
	if err == nil {
		salt, derr := base64.StdEncoding.DecodeString(encoded)
		if derr == nil && len(salt) == saltSize {
			return salt, nil
		}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	if err := inner.Set(keySalt, base64.StdEncoding.EncodeToString(salt)); err != nil {
		return nil, err
	}
	return salt, nil
}

// Get opens sealed keys. A value that cannot be opened yields ErrSealed.
func (s *SealedStore) Get(key string) (string, error) {
	v, err := s.Store.Get(key)
	if err != nil || !s.keys[key] {
		return v, err
	}
	return s.sealer.Open(v)
}

// Set seals the value when key is sealed.
func (s *SealedStore) Set(key, value string) error {
	if s.keys[key] {
		sealed, err := s.sealer.Seal(value)
		if err != nil {
			return err
		}
		value = sealed
	}
	return s.Store.Set(key, value)
}
