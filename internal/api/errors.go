// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeAuth
	ErrTypeNetwork
	ErrTypeTimeout
	ErrTypeServer
	ErrTypeBadRequest
	ErrTypeInvalidResponse
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeAuth:
		return "auth"
	case ErrTypeNetwork:
		return "network"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeServer:
		return "server"
	case ErrTypeBadRequest:
		return "bad request"
	case ErrTypeInvalidResponse:
		return "invalid response"
	default:
		return "unknown"
	}
}

// ClientError represents a failed backend call.
type ClientError struct {
	Type ErrorType
	// Op is "METHOD /path".
	Op string
	// Status is the HTTP status, 0 when no response was received.
	Status int
	// Message is the message the server put in the error body, if any.
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Type.String() + " error"
		if e.Status != 0 {
			msg += " (" + http.StatusText(e.Status) + ")"
		}
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches another *ClientError by Type so sentinels work with errors.Is.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Op == "" && t.Status == 0
}

// Sentinel errors for errors.Is checks.
var (
	ErrAuth    = &ClientError{Type: ErrTypeAuth}
	ErrNetwork = &ClientError{Type: ErrTypeNetwork}
	ErrTimeout = &ClientError{Type: ErrTypeTimeout}
	ErrServer  = &ClientError{Type: ErrTypeServer}
)

// TypeOf returns the ErrorType of err, or ErrTypeUnknown.
func TypeOf(err error) ErrorType {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ErrTypeUnknown
}

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return TypeOf(err) == ErrTypeAuth
}

// ServerMessage returns the message carried in the server's error body.
func ServerMessage(err error) string {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return ""
}

// typeForStatus maps an unsuccessful HTTP status to an ErrorType.
func typeForStatus(status int) ErrorType {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrTypeAuth
	case status >= 500:
		return ErrTypeServer
	case status >= 400:
		return ErrTypeBadRequest
	default:
		return ErrTypeInvalidResponse
	}
}

func (e *ClientError) retryable() bool {
	return e.Type == ErrTypeNetwork || e.Type == ErrTypeTimeout || e.Type == ErrTypeServer
}

func opName(method, path string) string {
	return fmt.Sprintf("%s %s", method, path)
}
