// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jeranaias/heartmind/internal/journal"
	"github.com/jeranaias/heartmind/internal/model"
	"github.com/jeranaias/heartmind/internal/util"
)

const journalUsage = "heartmind journal [list | add [--mood M] [text] | delete <id|number> [--yes]]"

// HandleJournal handles "journal list|add|delete".
func HandleJournal(ctx context.Context, env *Env, args Args) error {
	if err := env.requireLogin(); err != nil {
		return err
	}
	p := args.Parser("yes", "y")

	switch p.Subcommand() {
	case "", "list", "ls":
		return journalList(ctx, env)
	case "add", "new", "write":
		return journalAdd(ctx, env, p)
	case "delete", "rm", "remove":
		return journalDelete(ctx, env, p)
	default:
		return &UsageError{Usage: journalUsage}
	}
}

func journalList(ctx context.Context, env *Env) error {
	entries, err := env.App.Journal.List(ctx)
	if err != nil {
		return NewCommandError("journal", "Could not load your journal: "+serverMessageOr(err, "network error"), err)
	}
	if env.JSON {
		return NewJSONResponse("journal list", entries).Write(env.Out)
	}
	if len(entries) == 0 {
		env.info("No journal entries yet. Add one with `heartmind journal add`.")
		return nil
	}

	width := TerminalWidth(env.Out) - 30
	for i, e := range entries {
		env.printf("%3d  %s  %s\n", i+1, DimStyle.Render(formatDate(e)), renderMood(e.Mood))
		env.printf("     %s\n", util.Truncate(util.FirstLine(e.Entry), width))
		env.printf("     %s\n", DimStyle.Render(e.ID))
	}
	return nil
}

func journalAdd(ctx context.Context, env *Env, p *ArgParser) error {
	text := p.JoinFrom(1)
	if text == "" {
		var err error
		if env.Prompt.Interactive() {
			text, err = env.Prompt.Line("Entry: ")
		} else {
			text, err = env.Prompt.ReadAll()
		}
		if err != nil {
			return err
		}
	}

	err := env.App.Journal.CreateText(ctx, text, p.Flag("mood", "m"))
	switch {
	case errors.Is(err, journal.ErrEmptyEntry):
		return NewValidationError("entry", "", "write something or pick a mood")
	case errors.Is(err, journal.ErrUnknownMood):
		return &ValidationError{Field: "mood", Reason: strings.TrimPrefix(err.Error(), journal.ErrUnknownMood.Error()+": ")}
	case err != nil:
		return NewCommandError("journal", "Could not save the entry: "+serverMessageOr(err, "network error"), err)
	}
	env.info("%s", SuccessStyle.Render("Saved."))
	return nil
}

func journalDelete(ctx context.Context, env *Env, p *ArgParser) error {
	ref := p.Positional(1)
	if ref == "" {
		return &UsageError{Usage: "heartmind journal delete <id|number> [--yes]"}
	}
	yes := p.BoolFlag("yes", "y")
	if !yes && !env.Prompt.Interactive() {
		return &TTYRequiredError{Operation: "confirm the delete (pass --yes)"}
	}

	// Resolve list numbers against a fresh list.
	if _, err := env.App.Journal.List(ctx); err != nil {
		env.App.Logger.Debug().Err(err).Msg("journal refresh before delete failed")
	}
	id := resolveEntry(env.App.Journal.Entries(), ref)
	if e, ok := env.App.Journal.Find(id); ok && !yes {
		env.printf("%s  %s\n", DimStyle.Render(formatDate(e)), util.Truncate(util.FirstLine(e.Entry), 60))
	}

	var confirm journal.Confirmer = env.Prompt
	if yes {
		confirm = journal.AlwaysConfirm
	}
	err := env.App.Journal.Delete(ctx, id, confirm)
	switch {
	case errors.Is(err, journal.ErrDeleteDeclined):
		env.info("Cancelled.")
		return nil
	case err != nil:
		return NewCommandError("journal", "Could not delete the entry: "+serverMessageOr(err, "network error"), err)
	}
	env.info("%s", SuccessStyle.Render("Deleted."))
	return nil
}

// resolveEntry maps a 1-based list number to an id. Anything else is taken
// as an id.
func resolveEntry(entries []model.JournalEntry, ref string) string {
	for _, e := range entries {
		if e.ID == ref {
			return ref
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(entries) {
		return entries[n-1].ID
	}
	return ref
}

func formatDate(e model.JournalEntry) string {
	if e.CreatedAt.IsZero() {
		return "----------"
	}
	return e.CreatedAt.Local().Format("2006-01-02 15:04")
}

func renderMood(m model.Mood) string {
	if m == model.MoodNone {
		return ""
	}
	return MoodStyle.Render(string(m))
}
