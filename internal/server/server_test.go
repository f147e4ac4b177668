// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{Addr: "127.0.0.1:0"}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })
	return s
}

func TestCheckLoopback(t *testing.T) {
	tests := []struct {
		addr    string
		wantErr bool
	}{
		{"127.0.0.1:8789", false},
		{"localhost:0", false},
		{"[::1]:8789", false},
		{"0.0.0.0:8789", true},
		{"192.168.1.5:80", true},
		{":8789", true},
		{"nonsense", true},
	}
	for _, tc := range tests {
		t.Run(tc.addr, func(t *testing.T) {
			err := CheckLoopback(tc.addr)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_RejectsPublicAddress(t *testing.T) {
	_, err := New(Config{Addr: "0.0.0.0:0"}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrNotLoopback)
}

func TestCallbackURL(t *testing.T) {
	s := newTestServer(t)
	assert.Regexp(t, `^http://127\.0\.0\.1:\d+/payment-success$`, s.CallbackURL())
}

func TestHandleCallback_Delivers(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, CallbackPath+"?reference=ref_1&userId=u1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment received")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cb, err := s.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ref_1", cb.Reference)
	assert.Equal(t, "u1", cb.UserID)
	assert.True(t, cb.Complete())
}

func TestHandleCallback_MissingReference(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, CallbackPath+"?userId=u1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Payment reference or user ID is missing.")

	cb := <-s.Callbacks()
	assert.False(t, cb.Complete())
}

func TestHandleCallback_DropsWhenPending(t *testing.T) {
	s := newTestServer(t)

	for _, ref := range []string{"first", "second"} {
		req := httptest.NewRequest(http.MethodGet, CallbackPath+"?reference="+ref+"&userId=u1", nil)
		s.Handler().ServeHTTP(httptest.NewRecorder(), req)
	}

	cb := <-s.Callbacks()
	assert.Equal(t, "first", cb.Reference)
	select {
	case extra := <-s.Callbacks():
		t.Fatalf("unexpected second callback %+v", extra)
	default:
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, CallbackPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestID_KeepsIncoming(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc", seen)
}

func TestStartServeAndShutdown(t *testing.T) {
	s, err := New(Config{Addr: "127.0.0.1:0"}, zerolog.Nop())
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() { errc <- s.Start() }()

	resp, err := http.Get(s.CallbackURL() + "?reference=r&userId=u")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cb, err := s.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r", cb.Reference)

	require.NoError(t, s.Shutdown(context.Background()))
	require.NoError(t, <-errc)

	_, err = s.Wait(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestWait_ContextCancelled(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
