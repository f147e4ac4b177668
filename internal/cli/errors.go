// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/heartmind/internal/api"
	"github.com/jeranaias/heartmind/internal/config"
	"github.com/jeranaias/heartmind/internal/identity"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrNotLoggedIn is returned by commands that need a stored token.
var ErrNotLoggedIn = errors.New("not logged in; run `heartmind login` first")

// CommandError is a failure the user should read as-is.
type CommandError struct {
	Command string
	Message string
	Err     error
}

func (e *CommandError) Error() string {
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError wraps err with the message to display.
func NewCommandError(command, message string, err error) error {
	return &CommandError{Command: command, Message: message, Err: err}
}

// ValidationError is a bad argument or form field.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// UsageError reports a malformed command line.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Usage
}

// FormErrors turns a form validation failure into a ValidationError.
func FormErrors(err error) error {
	var fe *identity.FormError
	if !errors.As(err, &fe) {
		return err
	}
	return &ValidationError{Field: "form", Reason: fe.Error()}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as JSON in JSON mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		out := map[string]any{"success": false, "error": err.Error(), "error_type": errorType(err)}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

func errorType(err error) string {
	var ve *ValidationError
	var ue *UsageError
	switch {
	case errors.As(err, &ue):
		return "usage_error"
	case errors.As(err, &ve):
		return "validation_error"
	case errors.Is(err, ErrNotLoggedIn), errors.Is(err, identity.ErrNotAuthenticated):
		return "auth_error"
	}
	if t := api.TypeOf(err); t != api.ErrTypeUnknown {
		return strings.ReplaceAll(t.String(), " ", "_") + "_error"
	}
	return "generic_error"
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var ve *ValidationError
	var ue *UsageError
	var ce config.ValidateErrors
	switch {
	case errors.As(err, &ue), errors.As(err, &ve):
		return ExitUsageError
	case errors.As(err, &ce):
		return ExitConfigError
	case errors.Is(err, ErrNotLoggedIn), errors.Is(err, identity.ErrNotAuthenticated):
		return ExitAuthError
	}

	switch api.TypeOf(err) {
	case api.ErrTypeAuth:
		return ExitAuthError
	case api.ErrTypeNetwork:
		return ExitNetworkError
	case api.ErrTypeTimeout:
		return ExitTimeoutError
	}
	return ExitGeneralError
}

// serverMessageOr returns the backend's message for err, or fallback.
func serverMessageOr(err error, fallback string) string {
	if msg := api.ServerMessage(err); msg != "" {
		return msg
	}
	return fallback
}
