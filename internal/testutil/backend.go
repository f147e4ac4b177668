// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package testutil provides an in-process fake of the HeartMind backend for
// tests that exercise the real API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jeranaias/heartmind/internal/model"
)

// Default credentials accepted by a new Backend.
const (
	Token    = "test-token"
	Email    = "ada@example.com"
	Password = "hunter22"
)

// Backend is a scripted HeartMind backend. Change exported fields through
// Update once the server is running.
type Backend struct {
	mu sync.Mutex

	User    model.User
	Journal []model.JournalEntry

	// Reply is returned by /api/ai-chat. ChatStatus, when non-zero, fails it.
	Reply      string
	ChatStatus int

	// MeStatus, when non-zero, fails /api/auth/me.
	MeStatus int

	CheckoutURL   string
	VerifySuccess bool
	VerifyMessage string

	calls     map[string]int
	histories [][]model.Message
	chatBody  [][]byte
	callbacks []string
	nextID    int

	srv *httptest.Server
}

// NewBackend starts a fake backend that is closed with the test.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		User:        model.User{ID: "u1", Name: "Ada", Email: Email, FreeMessages: 3},
		Reply:       "I hear you.",
		CheckoutURL: "https://checkout.example.com/pay/abc",
		calls:       make(map[string]int),
	}
	b.srv = httptest.NewServer(b.routes())
	t.Cleanup(b.srv.Close)
	return b
}

// Update runs fn with the backend locked.
func (b *Backend) Update(fn func(b *Backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// URL is the backend's base URL.
func (b *Backend) URL() string {
	return b.srv.URL
}

// Calls returns how often "METHOD /path" was hit. Journal deletes are
// counted under "DELETE /api/data/journal".
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// Histories returns every history sent to /api/ai-chat.
func (b *Backend) Histories() [][]model.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]model.Message(nil), b.histories...)
}

// ChatBodies returns the raw request bodies sent to /api/ai-chat.
func (b *Backend) ChatBodies() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.chatBody...)
}

// Callbacks returns every callback_url sent to create-session.
func (b *Backend) Callbacks() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.callbacks...)
}

// FreeMessages returns the server-side free count.
func (b *Backend) FreeMessages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.User.FreeMessages
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.count)

	r.Post("/api/auth/login", b.handleLogin)
	r.Post("/api/auth/signup", b.handleSignup)

	r.Group(func(r chi.Router) {
		r.Use(b.requireToken)
		r.Get("/api/auth/me", b.handleMe)
		r.Post("/api/auth/decrement-free", b.handleDecrement)
		r.Post("/api/ai-chat", b.handleChat)
		r.Get("/api/data/journal", b.handleListJournal)
		r.Post("/api/data/journal", b.handleCreateJournal)
		r.Delete("/api/data/journal/{id}", b.handleDeleteJournal)
		r.Post("/api/payment/create-session", b.handleCreateSession)
		r.Post("/api/payment/verify-payment", b.handleVerify)
	})
	return r
}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if strings.HasPrefix(path, "/api/data/journal/") {
			path = "/api/data/journal"
		}
		b.mu.Lock()
		b.calls[r.Method+" "+path]++
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct{ Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Bad request"})
		return
	}
	if req.Email != Email || req.Password != Password {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": Token})
}

func (b *Backend) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct{ Name, Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Bad request"})
		return
	}
	if req.Email == Email {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User already exists"})
		return
	}
	b.mu.Lock()
	b.User.Name, b.User.Email = req.Name, req.Email
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"token": Token})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status, user := b.MeStatus, b.User
	b.mu.Unlock()
	if status != 0 {
		writeJSON(w, status, map[string]string{"message": "Profile unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (b *Backend) handleDecrement(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	if b.User.FreeMessages > 0 {
		b.User.FreeMessages--
	}
	n := b.User.FreeMessages
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]int{"freeMessages": n})
}

func (b *Backend) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	var req struct {
		Messages []model.Message `json:"messages"`
	}
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Bad request"})
		return
	}
	b.mu.Lock()
	b.histories = append(b.histories, req.Messages)
	b.chatBody = append(b.chatBody, body)
	status, reply := b.ChatStatus, b.Reply
	b.mu.Unlock()
	if status != 0 {
		writeJSON(w, status, map[string]string{"message": "AI unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (b *Backend) handleListJournal(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	entries := append([]model.JournalEntry{}, b.Journal...)
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, entries)
}

func (b *Backend) handleCreateJournal(w http.ResponseWriter, r *http.Request) {
	var draft model.JournalDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Bad request"})
		return
	}
	b.mu.Lock()
	b.nextID++
	entry := model.JournalEntry{
		ID:        fmt.Sprintf("j%d", b.nextID),
		Entry:     draft.Entry,
		Mood:      draft.Mood,
		CreatedAt: time.Date(2025, 6, 1, 12, b.nextID, 0, 0, time.UTC),
	}
	b.Journal = append([]model.JournalEntry{entry}, b.Journal...)
	b.mu.Unlock()
	writeJSON(w, http.StatusCreated, entry)
}

func (b *Backend) handleDeleteJournal(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, e := range b.Journal {
		if e.ID == id {
			b.Journal = append(b.Journal[:i], b.Journal[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Entry not found"})
}

func (b *Backend) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		CallbackURL string `json:"callback_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "User not found."})
		return
	}
	b.mu.Lock()
	b.callbacks = append(b.callbacks, req.CallbackURL)
	checkout := b.CheckoutURL
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"url": checkout})
}

func (b *Backend) handleVerify(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.VerifySuccess {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": b.VerifyMessage})
		return
	}
	exp := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	b.User.SubscriptionExpiresAt = &exp
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": b.User})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
