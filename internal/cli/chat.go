// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/heartmind/internal/chat"
	"github.com/jeranaias/heartmind/internal/config"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/payment"
)

// Paywall text shown instead of sending when access is blocked.
const (
	MsgPaywall        = payment.MsgPaywall
	MsgSubscribeLabel = payment.SubscribeLabel
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// LineReader reads one chat line at a time.
type LineReader interface {
	// ReadInput returns io.EOF when the user ends the session.
	ReadInput(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// ChatCLI is a LineReader with line editing and persistent history.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI opens a liner prompt and loads history from the config dir.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	c := &ChatCLI{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// ReadInput prompts for a line. Ctrl+C and Ctrl+D both end the session.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	return input, err
}

// AppendHistory records a sent line.
func (c *ChatCLI) AppendHistory(line string) {
	c.line.AppendHistory(line)
}

// Close saves history with 0600 permissions and restores the terminal.
func (c *ChatCLI) Close() error {
	if err := config.EnsureConfigDir(); err == nil {
		if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = c.line.WriteHistory(f)
			f.Close()
		}
	}
	return c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// HandleChat handles "chat": a line-mode conversation.
func HandleChat(ctx context.Context, env *Env, args Args) error {
	if err := env.requireLogin(); err != nil {
		return err
	}
	if err := env.App.Load(ctx); err != nil {
		return NewCommandError("chat", "Could not load your profile: "+serverMessageOr(err, err.Error()), err)
	}

	in := NewChatCLI()
	defer in.Close()
	return RunChat(ctx, env, in)
}

// RunChat runs the REPL until EOF, /quit or ctx ends.
func RunChat(ctx context.Context, env *Env, in LineReader) error {
	printer := &revealPrinter{w: env.Out}
	seq := env.App.NewSequencer(chat.Options{Mirror: printer})

	for _, m := range seq.Session().Messages() {
		printMessage(env.Out, m)
	}
	env.info("%s", DimStyle.Render("Type /help for commands, /quit to leave."))

	for ctx.Err() == nil {
		line, err := in.ReadInput("You: ")
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(env.Out)
			return nil
		}
		if err != nil {
			return err
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, "/") {
			quit, err := handleSlashCommand(ctx, env, seq, text)
			if err != nil {
				DisplayError(env.Err, err, false)
			}
			if quit {
				return nil
			}
			continue
		}
		in.AppendHistory(text)

		if _, decision := env.App.Decision(); !decision.CanChat {
			printPaywall(env)
			continue
		}

		printer.start()
		out := seq.Send(ctx, text)
		switch {
		case !out.Accepted:
			printer.abort()
			env.info("%s", WarningStyle.Render("Your profile is not loaded yet. Try again in a moment."))
			_, _ = env.App.Profile.Refresh(ctx)
		case out.Err != nil:
			last, _ := seq.Session().Last()
			printer.SetText(last.Text)
			printer.finish()
		default:
			printer.finish()
			if out.QuotaSynced {
				if _, decision := env.App.Decision(); !decision.CanChat {
					printPaywall(env)
				}
			}
		}
	}
	return nil
}

func handleSlashCommand(ctx context.Context, env *Env, seq *chat.Sequencer, cmd string) (quit bool, err error) {
	switch strings.ToLower(strings.Fields(cmd)[0]) {
	case "/quit", "/exit", "/q":
		return true, nil
	case "/help", "/?":
		env.printf("  /status     Show account and access\n")
		env.printf("  /history    Show this conversation\n")
		env.printf("  /subscribe  Start the subscription checkout\n")
		env.printf("  /quit       Leave\n")
	case "/status":
		return false, printStatus(env)
	case "/history":
		for _, m := range seq.Session().Messages() {
			printMessage(env.Out, m)
		}
	case "/subscribe":
		return false, runSubscribe(ctx, env, false)
	default:
		return false, NewValidationError("command", cmd, "unknown; try /help")
	}
	return false, nil
}

func printPaywall(env *Env) {
	env.printf("%s\n", WarningStyle.Render(MsgPaywall))
	env.printf("%s %s\n", SuccessStyle.Render(MsgSubscribeLabel+":"), "type /subscribe")
}

func printMessage(w io.Writer, m model.Message) {
	fmt.Fprintf(w, "%s %s\n", speakerLabel(m.Role), m.Text)
}

func speakerLabel(role model.Role) string {
	if role == model.RoleUser {
		return UserLabelStyle.Render(role.DisplayName() + ":")
	}
	return AssistantLabelStyle.Render(role.DisplayName() + ":")
}

// revealPrinter writes each reveal frame's new suffix, giving a typewriter
// effect on a plain terminal. Frames within a turn are prefixes of the reply.
type revealPrinter struct {
	w       io.Writer
	printed int
	active  bool
}

func (p *revealPrinter) start() {
	fmt.Fprintf(p.w, "%s ", speakerLabel(model.RoleAssistant))
	p.printed = 0
	p.active = true
}

func (p *revealPrinter) SetText(text string) {
	if !p.active || len(text) <= p.printed {
		return
	}
	io.WriteString(p.w, text[p.printed:])
	p.printed = len(text)
}

func (p *revealPrinter) finish() {
	if p.active {
		fmt.Fprintln(p.w)
	}
	p.active = false
}

func (p *revealPrinter) abort() {
	p.finish()
}
