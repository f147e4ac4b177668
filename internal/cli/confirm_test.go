// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Line(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("ada@example.com\r\nlast"), &out)

	assert.False(t, p.Interactive())
	line, err := p.Line("Email: ")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", line)
	assert.Equal(t, "Email: ", out.String())

	line, err = p.Line("")
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = p.Line("")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrompter_PasswordPiped(t *testing.T) {
	p := NewPrompter(strings.NewReader("secret1\n"), io.Discard)
	pw, err := p.Password("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret1", pw)
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range tests {
		var out bytes.Buffer
		p := NewPrompterWithMode(strings.NewReader(tc.input), &out, true)
		assert.Equal(t, tc.want, p.Confirm("Delete this journal entry?"), "input %q", tc.input)
		assert.Contains(t, out.String(), "Delete this journal entry? [y/N]: ")
	}
}

func TestPrompter_ConfirmNonInteractiveIsNo(t *testing.T) {
	p := NewPrompterWithMode(strings.NewReader("y\n"), io.Discard, false)
	assert.False(t, p.Confirm("Sure?"))
}

func TestRequireConfirmation(t *testing.T) {
	piped := NewPrompterWithMode(strings.NewReader(""), io.Discard, false)

	ok, err := RequireConfirmation(piped, true, "Sure?")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = RequireConfirmation(piped, false, "Sure?")
	var tty *TTYRequiredError
	assert.ErrorAs(t, err, &tty)

	tty2 := NewPrompterWithMode(strings.NewReader("y\n"), io.Discard, true)
	ok, err = RequireConfirmation(tty2, false, "Sure?")
	require.NoError(t, err)
	assert.True(t, ok)
}
