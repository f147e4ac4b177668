// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server runs the loopback listener that receives the payment
// provider's redirect.
//
// # Endpoints
//
//   - GET /payment-success?reference=..&userId=.. - deliver a Callback
//   - GET /health                                 - liveness check
//
// The listener only binds loopback addresses. Each callback is delivered
// once over Callbacks(); Wait blocks for the first one.
//
// # Usage
//
//	srv, err := server.New(server.Config{Addr: "127.0.0.1:8789"}, logger)
//	if err != nil {
//		return err
//	}
//	go srv.Start()
//	defer srv.Shutdown(context.Background())
//	cb, err := srv.Wait(ctx)
package server
