// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - Full-screen terminal UI command for rulechat.
//
// Command: tui
// Short:   Full-screen terminal UI
// Aliases: ui
//
// The TUI shares all domain wiring with the line REPL; only the
// presentation differs.

package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rulechat/internal/rules"
	"github.com/jeranaias/rulechat/internal/session"
	"github.com/jeranaias/rulechat/internal/storage"
	"github.com/jeranaias/rulechat/internal/ui/chat"
)

// HandleTUI handles the "tui" command.
func HandleTUI(args Args) error {
	if err := RequiresTTY("run the terminal UI"); err != nil {
		return HandleError(err, args.JSON)
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	store, err := openStore(cfg)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	sess := session.New(cfg.User.ID, cfg.User.Name)

	var transcripts *storage.TranscriptStore
	if cfg.Storage.Transcripts {
		path := cfg.Storage.DatabasePath
		if path == "" {
			path, err = storage.DefaultPath()
		}
		if err == nil {
			transcripts, err = storage.Open(path)
		}
		if err != nil {
			fmt.Println(WarningStyle.Render("warning: ") + "transcript storage unavailable: " + err.Error())
			transcripts = nil
		} else {
			defer transcripts.Close()
		}
	}

	model := chat.New(cfg, store, sess, eng, transcripts)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// The watcher reports through the running program so reload notices
	// land inside the conversation instead of corrupting the alt screen.
	if cfg.Rules.Watch {
		watcher, werr := rules.NewWatcher(store, time.Duration(cfg.Rules.DebounceMs)*time.Millisecond)
		if werr == nil {
			watcher.OnReload = func(count int) {
				program.Send(chat.RulesReloadedMsg{Count: count})
			}
			watcher.OnError = func(err error) {
				program.Send(chat.RulesReloadErrMsg{Err: err})
			}
			if werr = watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
		if werr != nil {
			fmt.Println(WarningStyle.Render("warning: ") + "rule file watching unavailable: " + werr.Error())
		}
	}

	final, err := program.Run()
	if err != nil {
		return HandleError(WrapError(err, "terminal UI"), args.JSON)
	}

	if m, ok := final.(chat.Model); ok {
		printExitSummary(sess, m.Turns())
	}
	return nil
}
