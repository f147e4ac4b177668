// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the HeartMind backend.
//
// Every call sends JSON, carries an X-Request-ID and, when the session holds
// one, an "Authorization: Bearer <token>" header. Each attempt is bounded by
// the configured timeout and transient failures (network errors, 5xx) are
// retried at most once.
//
// # Endpoints
//
//   - POST   /api/auth/login                Login
//   - POST   /api/auth/signup               Signup
//   - GET    /api/auth/me                   Me
//   - POST   /api/auth/decrement-free       DecrementFree
//   - POST   /api/ai-chat                   Chat
//   - GET    /api/data/journal              ListJournal
//   - POST   /api/data/journal              CreateJournal
//   - DELETE /api/data/journal/{id}         DeleteJournal
//   - POST   /api/payment/create-session    CreatePaymentSession
//   - POST   /api/payment/verify-payment    VerifyPayment
//
// # Errors
//
// Failures are returned as *ClientError with an ErrorType:
//
//	if api.IsAuth(err) {
//	    // show the login prompt
//	}
//	msg := api.ServerMessage(err) // "" when the server sent none
package api
