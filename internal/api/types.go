// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "github.com/jeranaias/heartmind/internal/model"

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and signup.
type TokenResponse struct {
	Token string `json:"token"`
}

// =============================================================================
// CHAT
// =============================================================================

// ChatRequest carries the full ordered history on every turn.
type ChatRequest struct {
	Messages []model.Message `json:"messages"`
}

// ChatResponse is the assistant's complete reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// =============================================================================
// PAYMENT
// =============================================================================

// CreateSessionRequest starts a hosted checkout.
type CreateSessionRequest struct {
	UserID      string `json:"userId"`
	CallbackURL string `json:"callback_url"`
}

// CreateSessionResponse holds the checkout URL to open.
type CreateSessionResponse struct {
	URL string `json:"url"`
}

// VerifyRequest confirms a checkout by its provider reference.
type VerifyRequest struct {
	Reference string `json:"reference"`
	UserID    string `json:"userId"`
}

// VerifyResponse reports the outcome of a verification.
type VerifyResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

// errorBody is the error shape the backend uses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
