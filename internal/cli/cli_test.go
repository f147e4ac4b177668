// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/heartmind/internal/api"
	"github.com/jeranaias/heartmind/internal/config"
	"github.com/jeranaias/heartmind/internal/identity"
)

func TestParse(t *testing.T) {
	tests := []struct {
		argv    []string
		want    Command
		wantRaw []string
	}{
		{nil, CmdTUI, nil},
		{[]string{"login", "--email", "a@b.c"}, CmdLogin, []string{"--email", "a@b.c"}},
		{[]string{"register"}, CmdSignup, []string{}},
		{[]string{"journal", "add", "hello"}, CmdJournal, []string{"add", "hello"}},
		{[]string{"j"}, CmdJournal, []string{}},
		{[]string{"pay"}, CmdSubscribe, []string{}},
		{[]string{"s"}, CmdStatus, []string{}},
		{[]string{"--help"}, CmdHelp, []string{}},
		{[]string{"-v"}, CmdVersion, []string{}},
		{[]string{"nonsense"}, CmdUnknown, []string{}},
	}
	for _, tc := range tests {
		cmd, args := Parse(tc.argv)
		assert.Equal(t, tc.want, cmd, "argv %v", tc.argv)
		if tc.wantRaw != nil {
			assert.Equal(t, tc.wantRaw, args.Raw, "argv %v", tc.argv)
		}
	}
}

func TestParse_GlobalFlagsAnywhere(t *testing.T) {
	cmd, args := Parse([]string{"--debug", "status", "--json", "--config=/tmp/c.toml", "-q"})
	assert.Equal(t, CmdStatus, cmd)
	assert.True(t, args.Debug)
	assert.True(t, args.JSON)
	assert.True(t, args.Quiet)
	assert.Equal(t, "/tmp/c.toml", args.ConfigPath)
	assert.Empty(t, args.Raw)

	_, args = Parse([]string{"--config", "x.toml", "chat"})
	assert.Equal(t, "x.toml", args.ConfigPath)
	assert.Equal(t, "chat", args.Name)
}

func TestPrintUsageAndVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	assert.Contains(t, buf.String(), "heartmind journal add")
	assert.Contains(t, buf.String(), Version)

	buf.Reset()
	PrintVersion(&buf)
	assert.Contains(t, buf.String(), "heartmind version "+Version)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Usage: "x"}, ExitUsageError},
		{"validation", NewValidationError("f", "v", "bad"), ExitUsageError},
		{"config", config.ValidateErrors{{Field: "api.retries", Message: "bad"}}, ExitConfigError},
		{"not logged in", ErrNotLoggedIn, ExitAuthError},
		{"api auth", &api.ClientError{Type: api.ErrTypeAuth, Status: 401}, ExitAuthError},
		{"network wrapped", NewCommandError("x", "y", &api.ClientError{Type: api.ErrTypeNetwork}), ExitNetworkError},
		{"timeout", &api.ClientError{Type: api.ErrTypeTimeout}, ExitTimeoutError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExitCode(tc.err))
		})
	}
}

func TestDisplayError_JSON(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, &api.ClientError{Type: api.ErrTypeBadRequest, Status: 400, Message: "nope"}, true)
	assert.Contains(t, buf.String(), `"success": false`)
	assert.Contains(t, buf.String(), `"error_type": "bad_request_error"`)
}

func TestFormErrors(t *testing.T) {
	form := identity.SignupForm{Email: "not-an-email", Password: "123"}
	err := FormErrors(form.Validate())
	var ve *ValidationError
	if assert.ErrorAs(t, err, &ve) {
		assert.Contains(t, ve.Reason, "name is required")
		assert.Contains(t, ve.Reason, "email must be a valid email address")
		assert.Contains(t, ve.Reason, "password must be at least 6 characters")
	}
}
