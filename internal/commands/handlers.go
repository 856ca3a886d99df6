// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat front ends.
package commands

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jeranaias/rulechat/internal/config"
	"github.com/jeranaias/rulechat/internal/storage"
)

// defaultHistoryCount is how many entries /history shows without an argument.
const defaultHistoryCount = 10

// =============================================================================
// NAVIGATION HANDLERS
// =============================================================================

// HandleHelp builds the command overview, optionally filtered to one category.
func HandleHelp(ctx *Context, args []string) Result {
	if ctx.Registry == nil {
		return Result{Output: "Help is unavailable."}
	}

	filter := ""
	if len(args) > 0 {
		filter = strings.ToLower(args[0])
	}

	byCategory := ctx.Registry.ByCategory()

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, category := range categories {
		if filter != "" && strings.ToLower(category) != filter {
			continue
		}
		cmds := byCategory[category]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

		b.WriteString("\n" + category + ":\n")
		for _, cmd := range cmds {
			usage := cmd.Name
			if cmd.Usage != "" {
				usage = cmd.Usage
			}
			fmt.Fprintf(&b, "  %-24s %s\n", usage, cmd.Description)
			if len(cmd.Aliases) > 0 {
				fmt.Fprintf(&b, "  %-24s aliases: %s\n", "", strings.Join(cmd.Aliases, ", "))
			}
		}
	}
	b.WriteString("\nAnything else you type is matched against the loaded rules.")

	return Result{Output: b.String()}
}

// HandleQuit signals the front end to exit.
func HandleQuit(ctx *Context, args []string) Result {
	return Result{Output: "Goodbye!", Quit: true}
}

// HandleClear signals the front end to clear its display.
// Session history is unaffected: it is append-only.
func HandleClear(ctx *Context, args []string) Result {
	return Result{ClearScreen: true}
}

// =============================================================================
// RULE HANDLERS
// =============================================================================

// HandleReload reloads the rule file through the store. A failed reload keeps
// the previously loaded rules serving, and says so.
func HandleReload(ctx *Context, args []string) Result {
	if ctx.Store == nil {
		return Result{Output: "No rule store available."}
	}

	collection, err := ctx.Store.Reload()
	if err != nil {
		kept := ctx.Store.Snapshot().Len()
		return Result{
			Output: fmt.Sprintf("Reload failed: %v\nKeeping the %d previously loaded rule(s).", err, kept),
			Err:    err,
		}
	}

	return Result{
		Output: fmt.Sprintf("Reloaded %d rule(s) from %s.", collection.Len(), ctx.Store.Source().Describe()),
	}
}

// HandleIntents lists the loaded intents in rule order, with pattern and
// response counts. Rule order matters: the matcher takes the first hit.
func HandleIntents(ctx *Context, args []string) Result {
	if ctx.Store == nil {
		return Result{Output: "No rule store available."}
	}

	collection := ctx.Store.Snapshot()
	if collection.Len() == 0 {
		return Result{Output: "No rules loaded."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Loaded intents (%d, in match order):\n", collection.Len())
	for i, rule := range collection {
		fmt.Fprintf(&b, "  %2d. %-20s %d pattern(s), %d response(s)\n",
			i+1, rule.Intent, len(rule.Patterns), len(rule.Responses))
	}

	return Result{Output: strings.TrimRight(b.String(), "\n")}
}

// =============================================================================
// CONVERSATION HANDLERS
// =============================================================================

// HandleHistory shows the most recent session history entries.
func HandleHistory(ctx *Context, args []string) Result {
	if ctx.Session == nil {
		return Result{Output: "No active session."}
	}

	n := defaultHistoryCount
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed <= 0 {
			return Result{
				Output: fmt.Sprintf("Invalid count '%s': expected a positive number.", args[0]),
				Err:    fmt.Errorf("invalid history count %q", args[0]),
			}
		}
		n = parsed
	}

	entries := ctx.Session.LastEntries(n)
	if len(entries) == 0 {
		return Result{Output: "No history yet."}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last %d entr%s:\n", len(entries), plural(len(entries), "y", "ies"))
	for _, entry := range entries {
		fmt.Fprintf(&b, "  [%s] %s: %s\n", entry.Timestamp.Format("03:04 PM"), entry.Role, entry.Text)
	}

	return Result{Output: strings.TrimRight(b.String(), "\n")}
}

// HandleSessions lists saved transcript sessions.
func HandleSessions(ctx *Context, args []string) Result {
	if ctx.Transcripts == nil {
		return Result{Output: "Transcript storage is disabled."}
	}

	metas, err := ctx.Transcripts.Sessions()
	if err != nil {
		return Result{Output: fmt.Sprintf("Failed to list sessions: %v", err), Err: err}
	}

	return Result{Output: storage.FormatSessionList(metas)}
}

// HandleSearch searches saved transcripts for matching turns.
func HandleSearch(ctx *Context, args []string) Result {
	if ctx.Transcripts == nil {
		return Result{Output: "Transcript storage is disabled."}
	}

	query := strings.Join(args, " ")
	records, err := ctx.Transcripts.SearchTurns(query)
	if err != nil {
		return Result{Output: fmt.Sprintf("Search failed: %v", err), Err: err}
	}
	if len(records) == 0 {
		return Result{Output: fmt.Sprintf("No turns matching '%s'.", query)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d turn(s) matching '%s':\n", len(records), query)
	for _, rec := range records {
		intent := rec.Intent
		if intent == "" {
			intent = "(fallback)"
		}
		fmt.Fprintf(&b, "  [%s] %s > %s  [%s]\n",
			rec.Timestamp.Format("2006-01-02 03:04 PM"), rec.Input, rec.Reply, intent)
	}

	return Result{Output: strings.TrimRight(b.String(), "\n")}
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// HandleConfig shows or edits configuration values by dot-notation key.
// With no arguments it lists every key; with a key it shows that value;
// with a key and value it sets, validates, and saves.
func HandleConfig(ctx *Context, args []string) Result {
	if ctx.Config == nil {
		return Result{Output: "No configuration loaded."}
	}

	switch len(args) {
	case 0:
		var b strings.Builder
		b.WriteString("Configuration:\n")
		for _, key := range config.GetAllKeys() {
			val, err := ctx.Config.Get(key)
			if err != nil {
				continue
			}
			fmt.Fprintf(&b, "  %-24s = %v\n", key, val)
		}
		return Result{Output: strings.TrimRight(b.String(), "\n")}

	case 1:
		val, err := ctx.Config.Get(args[0])
		if err != nil {
			return Result{Output: fmt.Sprintf("Unknown config key '%s'.", args[0]), Err: err}
		}
		return Result{Output: fmt.Sprintf("%s = %v", args[0], val)}

	default:
		// Validate against a copy first so a bad value never lands in the
		// live config.
		trial := ctx.Config.Clone()
		if err := trial.Set(args[0], args[1]); err != nil {
			return Result{Output: fmt.Sprintf("Failed to set '%s': %v", args[0], err), Err: err}
		}
		if err := trial.Validate(); err != nil {
			return Result{Output: fmt.Sprintf("Invalid value for '%s': %v", args[0], err), Err: err}
		}

		if err := ctx.Config.Set(args[0], args[1]); err != nil {
			return Result{Output: fmt.Sprintf("Failed to set '%s': %v", args[0], err), Err: err}
		}
		if err := config.Save(ctx.Config); err != nil {
			return Result{Output: fmt.Sprintf("Set %s = %s, but saving failed: %v", args[0], args[1], err), Err: err}
		}
		return Result{Output: fmt.Sprintf("Set %s = %s", args[0], args[1])}
	}
}

// HandleStatus reports the rule store, session, and storage state.
func HandleStatus(ctx *Context, args []string) Result {
	var b strings.Builder
	b.WriteString("rulechat status\n")

	if ctx.Store != nil {
		st := ctx.Store.GetStatus()
		b.WriteString("\nRules:\n")
		fmt.Fprintf(&b, "  Source:       %s\n", st.Source)
		fmt.Fprintf(&b, "  Loaded rules: %d\n", st.RuleCount)
		fmt.Fprintf(&b, "  Loaded at:    %s\n", st.LoadedAt.Format("2006-01-02 03:04:05 PM"))
		fmt.Fprintf(&b, "  Loads:        %d\n", st.Reloads)
		if st.LastError != "" {
			fmt.Fprintf(&b, "  Last error:   %s\n", st.LastError)
		}
	}

	if ctx.Session != nil {
		st := ctx.Session.GetStatus()
		b.WriteString("\nSession:\n")
		fmt.Fprintf(&b, "  ID:           %s\n", st.ID)
		fmt.Fprintf(&b, "  User:         %s (%s)\n", st.UserName, st.UserID)
		lastIntent := st.LastIntent
		if lastIntent == "" {
			lastIntent = "(none)"
		}
		fmt.Fprintf(&b, "  Last intent:  %s\n", lastIntent)
		fmt.Fprintf(&b, "  History:      %d entr%s\n", st.HistoryCount, plural(st.HistoryCount, "y", "ies"))
		fmt.Fprintf(&b, "  Duration:     %s\n", st.Duration.Round(time.Second))
	}

	if ctx.Transcripts != nil {
		b.WriteString("\nStorage:\n")
		fmt.Fprintf(&b, "  Transcripts:  %s\n", ctx.Transcripts.Path())
	} else {
		b.WriteString("\nStorage:\n  Transcripts:  disabled\n")
	}

	return Result{Output: strings.TrimRight(b.String(), "\n")}
}

// plural picks the singular or plural suffix for a count.
func plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
