// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive terminal chat for rulechat.
//
// Command: chat
// Short:   Interactive chat in the terminal (default command)
//
// Examples:
//   rulechat                      Start chatting
//   rulechat chat --quiet         Start without the welcome banner
//   rulechat --rules demo.json    Chat against a specific rule file
//
// The chat loop reads a line, dispatches slash commands to the command
// registry, and matches everything else against the loaded rules. Input
// history persists across runs in ~/.rulechat/chat_history.

package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/rulechat/internal/commands"
	"github.com/jeranaias/rulechat/internal/config"
	"github.com/jeranaias/rulechat/internal/rules"
	"github.com/jeranaias/rulechat/internal/session"
	"github.com/jeranaias/rulechat/internal/storage"
)

// historyFileName is the input history file inside the config directory.
const historyFileName = "chat_history"

// =============================================================================
// LINE INPUT
// =============================================================================

// ChatCLI wraps liner to provide line editing, input history, and tab
// completion for the chat loop.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line reader with persistent history and tab
// completion backed by the command completer.
func NewChatCLI(completer *commands.Completer) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	if completer != nil {
		line.SetCompleter(func(input string) []string {
			return completer.CompleteValues(input)
		})
	}

	c := &ChatCLI{line: line}

	// History is best-effort: a missing config dir just means no recall.
	if dir, err := config.ConfigDir(); err == nil {
		c.historyFile = filepath.Join(dir, historyFileName)
		if f, err := os.Open(c.historyFile); err == nil {
			c.line.ReadHistory(f)
			f.Close()
		}
	}

	return c
}

// ReadInput reads one line of input, recording non-empty lines in history.
// Returns liner.ErrPromptAborted on Ctrl-C and io.EOF on Ctrl-D.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	text, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		c.line.AppendHistory(text)
	}
	return text, nil
}

// SaveHistory writes the input history back to disk.
func (c *ChatCLI) SaveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close restores the terminal state. Must be called before exit.
func (c *ChatCLI) Close() {
	c.line.Close()
}

// =============================================================================
// CHAT COMMAND HANDLER
// =============================================================================

// HandleChat handles the "chat" command: the interactive REPL.
func HandleChat(args Args) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	store, err := openStore(cfg)
	if err != nil {
		return HandleError(err, args.JSON)
	}

	// Live reload is best-effort: a watcher failure degrades to manual
	// /reload rather than refusing to chat.
	if cfg.Rules.Watch {
		watcher, werr := rules.NewWatcher(store, time.Duration(cfg.Rules.DebounceMs)*time.Millisecond)
		if werr == nil {
			watcher.OnReload = func(count int) {
				fmt.Println(DimStyle.Render(fmt.Sprintf("(rules reloaded: %d active)", count)))
			}
			watcher.OnError = func(err error) {
				fmt.Println(WarningStyle.Render("warning: ") + "rule reload failed, keeping previous rules: " + err.Error())
			}
			if werr = watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
		if werr != nil {
			fmt.Println(WarningStyle.Render("warning: ") + "rule file watching unavailable: " + werr.Error())
		}
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

	registry := commands.NewRegistry()
	parser := commands.NewParser(registry)
	cmdCtx := commands.NewContext(cfg, store, sess, transcripts, eng)
	cmdCtx.Registry = registry

	completer := commands.NewCompleter(registry)
	completer.IntentsFn = func() []string { return store.Snapshot().Intents() }
	completer.ConfigFn = config.GetAllKeys

	input := NewChatCLI(completer)
	defer func() {
		input.SaveHistory()
		input.Close()
	}()

	// Restore the terminal before dying on SIGINT/SIGTERM outside the
	// prompt; Ctrl-C at the prompt surfaces as ErrPromptAborted instead.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		input.SaveHistory()
		input.Close()
		fmt.Println()
		os.Exit(ExitSuccess)
	}()

	if !args.Quiet {
		printWelcome(cfg, store)
	}

	prompt := RenderConditional(PromptStyle, "you>") + " "
	turns := 0

	for {
		text, err := input.ReadInput(prompt)
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Println(ErrorStyle.Render("input error: ") + err.Error())
			break
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		// Bare exit/quit work without the slash
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			break
		}

		if commands.IsCommand(text) {
			result := registry.Execute(cmdCtx, parser.Parse(text))
			if result.Err != nil {
				// A failed result may carry its own wording in Output;
				// print the failure as a single line either way.
				notice := result.Output
				if notice == "" {
					notice = result.Err.Error()
				}
				fmt.Println(ErrorStyle.Render("error: ") + notice)
			} else {
				if result.ClearScreen {
					clearScreen()
				}
				if result.Output != "" {
					fmt.Println(result.Output)
				}
			}
			if result.Quit {
				break
			}
			continue
		}

		now := time.Now()
		turn, err := eng.RunTurn(text, sess, store.Snapshot(), now)

		sess.AppendHistory(session.RoleUser, text, now)
		sess.AppendHistory(session.RoleBot, turn.Reply, now)

		fmt.Println(RenderReply(turn.Reply, turn.Fallback))
		if err != nil {
			fmt.Println(DimStyle.Render("note: " + err.Error()))
		}

		if transcripts != nil {
			saveErr := transcripts.SaveTurn(storage.TurnRecord{
				SessionID: sess.ID,
				UserName:  sess.UserName,
				Input:     text,
				Reply:     turn.Reply,
				Intent:    turn.Intent,
				Fallback:  turn.Fallback,
				Timestamp: now,
			})
			if saveErr != nil {
				fmt.Println(DimStyle.Render("note: transcript not saved: " + saveErr.Error()))
			}
		}

		turns++
	}

	printExitSummary(sess, turns)
	return nil
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

// clearScreen clears the terminal and homes the cursor.
func clearScreen() {
	fmt.Print("\033[2J\033[H")
}

// printWelcome prints the chat banner with the loaded rule summary.
func printWelcome(cfg *config.Config, store *rules.Store) {
	collection := store.Snapshot()

	fmt.Println()
	fmt.Println(TitleStyle.Render("rulechat " + Version))
	fmt.Printf("Hello, %s. %s from %s.\n",
		cfg.User.Name,
		ruleCountSummary(collection.Len()),
		store.Source().Describe())
	fmt.Println(DimStyle.Render("Type /help for commands, or just say something. Ctrl-D exits."))
	fmt.Println()
}

// ruleCountSummary phrases the rule count for the banner.
func ruleCountSummary(n int) string {
	if n == 1 {
		return "1 rule loaded"
	}
	return fmt.Sprintf("%d rules loaded", n)
}

// printExitSummary prints a short summary when the chat loop ends.
func printExitSummary(sess *session.Session, turns int) {
	st := sess.GetStatus()

	fmt.Println()
	fmt.Println(SectionStyle.Render("Session summary"))
	fmt.Printf("  %s %d\n", RenderLabel("Turns:", 12), turns)
	fmt.Printf("  %s %s\n", RenderLabel("Duration:", 12), st.Duration.Round(time.Second))
	if st.LastIntent != "" {
		fmt.Printf("  %s %s\n", RenderLabel("Last intent:", 12), st.LastIntent)
	}
	fmt.Println("Goodbye!")
}
