// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution.
//
// This test file covers argument parsing and exit code mapping. The
// interactive chat loop needs a TTY and is exercised manually.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jeranaias/rulechat/internal/rules"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"get"},
			wantSub: "get",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"get", "--rules", "demo.json"},
			wantSub: "get",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("rules") != "demo.json" {
					t.Errorf("Flag(rules) = %q, want %q", p.Flag("rules"), "demo.json")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"get", "--select=random"},
			wantSub: "get",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("select") != "random" {
					t.Errorf("Flag(select) = %q, want %q", p.Flag("select"), "random")
				}
			},
		},
		{
			name:    "boolean flag",
			args:    []string{"get", "--json"},
			wantSub: "get",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be true")
				}
			},
		},
		{
			name:    "explicit boolean value",
			args:    []string{"get", "--json=false"},
			wantSub: "get",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("json") {
					t.Error("BoolFlag(json) should be false")
				}
			},
		},
		{
			name:    "multiple positional args",
			args:    []string{"ask", "what", "time", "is", "it"},
			wantSub: "ask",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 5 {
					t.Errorf("PositionalCount() = %d, want 5", p.PositionalCount())
				}
				joined := strings.Join(p.PositionalFrom(1), " ")
				if joined != "what time is it" {
					t.Errorf("PositionalFrom(1) joined = %q, want %q", joined, "what time is it")
				}
			},
		},
		{
			name:    "mixed flags and positional",
			args:    []string{"ask", "--name", "Alice", "hello", "there"},
			wantSub: "ask",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("name") != "Alice" {
					t.Errorf("Flag(name) = %q, want %q", p.Flag("name"), "Alice")
				}
				if p.Positional(1) != "hello" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "hello")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

func TestArgParser_FlagIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		flagName   string
		defaultVal int
		want       int
	}{
		{
			name:       "flag present",
			args:       []string{"cmd", "--count", "10"},
			flagName:   "count",
			defaultVal: 5,
			want:       10,
		},
		{
			name:       "flag missing uses default",
			args:       []string{"cmd"},
			flagName:   "count",
			defaultVal: 5,
			want:       5,
		},
		{
			name:       "invalid int uses default",
			args:       []string{"cmd", "--count", "abc"},
			flagName:   "count",
			defaultVal: 5,
			want:       5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			got := parser.FlagIntOrDefault(tt.flagName, tt.defaultVal)
			if got != tt.want {
				t.Errorf("FlagIntOrDefault(%q, %d) = %d, want %d", tt.flagName, tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestArgParser_HasFlag(t *testing.T) {
	parser := NewArgParser([]string{"cmd", "--quiet", "--rules", "demo.json"})

	if !parser.HasFlag("quiet") {
		t.Error("HasFlag(quiet) should be true")
	}
	if !parser.HasFlag("rules") {
		t.Error("HasFlag(rules) should be true")
	}
	if parser.HasFlag("nonexistent") {
		t.Error("HasFlag(nonexistent) should be false")
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"YES", true, false},
		{"1", true, false},
		{"on", true, false},
		{"false", false, false},
		{"no", false, false},
		{"0", false, false},
		{" off ", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		got, err := ParseBoolString(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBoolString(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBoolString(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// =============================================================================
// TOP-LEVEL PARSE TESTS (cli.go)
// =============================================================================

// withArgs runs fn with os.Args temporarily replaced.
func withArgs(t *testing.T, argv []string, fn func()) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"rulechat"}, argv...)
	defer func() { os.Args = old }()
	fn()
}

func TestParse_Commands(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantCmd  Command
		validate func(*testing.T, Args)
	}{
		{
			name:    "no args defaults to chat",
			argv:    []string{},
			wantCmd: CmdChat,
		},
		{
			name:    "explicit chat",
			argv:    []string{"chat"},
			wantCmd: CmdChat,
		},
		{
			name:    "ask joins query words",
			argv:    []string{"ask", "hello", "there"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "hello there" {
					t.Errorf("Query = %q, want %q", a.Query, "hello there")
				}
			},
		},
		{
			name:    "unknown token becomes an ask query",
			argv:    []string{"what", "time", "is", "it"},
			wantCmd: CmdAsk,
			validate: func(t *testing.T, a Args) {
				if a.Query != "what time is it" {
					t.Errorf("Query = %q, want %q", a.Query, "what time is it")
				}
			},
		},
		{
			name:    "global flags before command",
			argv:    []string{"--rules", "demo.json", "--json", "status"},
			wantCmd: CmdStatus,
			validate: func(t *testing.T, a Args) {
				if a.RulesPath != "demo.json" {
					t.Errorf("RulesPath = %q, want %q", a.RulesPath, "demo.json")
				}
				if !a.JSON {
					t.Error("JSON should be true")
				}
			},
		},
		{
			name:    "global flags with equals",
			argv:    []string{"--select=random", "--name=Alice", "intents"},
			wantCmd: CmdIntents,
			validate: func(t *testing.T, a Args) {
				if a.Selection != "random" {
					t.Errorf("Selection = %q, want %q", a.Selection, "random")
				}
				if a.UserName != "Alice" {
					t.Errorf("UserName = %q, want %q", a.UserName, "Alice")
				}
			},
		},
		{
			name:    "no-watch flag",
			argv:    []string{"--no-watch", "chat"},
			wantCmd: CmdChat,
			validate: func(t *testing.T, a Args) {
				if a.Watch != "off" {
					t.Errorf("Watch = %q, want %q", a.Watch, "off")
				}
			},
		},
		{
			name:    "config get",
			argv:    []string{"config", "responses.selection"},
			wantCmd: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.ConfigKey != "responses.selection" {
					t.Errorf("ConfigKey = %q", a.ConfigKey)
				}
				if a.ConfigVal != "" {
					t.Errorf("ConfigVal = %q, want empty", a.ConfigVal)
				}
			},
		},
		{
			name:    "config set",
			argv:    []string{"config", "responses.selection", "random"},
			wantCmd: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.ConfigKey != "responses.selection" || a.ConfigVal != "random" {
					t.Errorf("ConfigKey/Val = %q/%q", a.ConfigKey, a.ConfigVal)
				}
			},
		},
		{
			name:    "setup subcommand",
			argv:    []string{"setup", "rules"},
			wantCmd: CmdSetup,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "rules" {
					t.Errorf("Subcommand = %q, want %q", a.Subcommand, "rules")
				}
			},
		},
		{
			name:    "setup quick flag is not a subcommand",
			argv:    []string{"setup", "--quick"},
			wantCmd: CmdSetup,
			validate: func(t *testing.T, a Args) {
				if a.Subcommand != "" {
					t.Errorf("Subcommand = %q, want empty", a.Subcommand)
				}
				if !NewArgParser(a.Raw).BoolFlag("quick") {
					t.Error("quick flag lost from Raw")
				}
			},
		},
		{
			name:    "config set multi-word value",
			argv:    []string{"config", "user.name", "Ada", "Lovelace"},
			wantCmd: CmdConfig,
			validate: func(t *testing.T, a Args) {
				if a.ConfigKey != "user.name" || a.ConfigVal != "Ada Lovelace" {
					t.Errorf("ConfigKey/Val = %q/%q", a.ConfigKey, a.ConfigVal)
				}
			},
		},
		{
			name:    "version aliases",
			argv:    []string{"--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "help",
			argv:    []string{"help"},
			wantCmd: CmdHelp,
		},
		{
			name:    "tui",
			argv:    []string{"tui"},
			wantCmd: CmdTUI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.argv, func() {
				cmd, args := Parse()
				if cmd != tt.wantCmd {
					t.Errorf("Parse() command = %d, want %d", cmd, tt.wantCmd)
				}
				if tt.validate != nil {
					tt.validate(t, args)
				}
			})
		})
	}
}

// =============================================================================
// EXIT CODE TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: ExitSuccess,
		},
		{
			name: "validation error",
			err:  NewValidationError("selection", "bogus", "unknown strategy"),
			want: ExitUsageError,
		},
		{
			name: "not found error",
			err:  NewNotFoundError("session", "abc123"),
			want: ExitNotFoundError,
		},
		{
			name: "malformed rules",
			err:  fmt.Errorf("loading: %w", rules.ErrMalformedRules),
			want: ExitRulesError,
		},
		{
			name: "unreadable rules",
			err:  fmt.Errorf("loading: %w", rules.ErrSourceUnavailable),
			want: ExitRulesError,
		},
		{
			name: "config error by message",
			err:  errors.New("invalid configuration: bad theme"),
			want: ExitConfigError,
		},
		{
			name: "generic error",
			err:  errors.New("something broke"),
			want: ExitGeneralError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommandError_Unwrap(t *testing.T) {
	inner := rules.ErrMalformedRules
	err := NewCommandError("ask", "load", "rule file rejected", inner)

	if !errors.Is(err, rules.ErrMalformedRules) {
		t.Error("CommandError should unwrap to the underlying error")
	}
	if !strings.Contains(err.Error(), "ask load failed") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestWrapError(t *testing.T) {
	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should be nil")
	}

	base := errors.New("boom")
	wrapped := WrapError(base, "doing thing")
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match the base error")
	}
	if wrapped.Error() != "doing thing: boom" {
		t.Errorf("unexpected message: %s", wrapped.Error())
	}
}

// =============================================================================
// TERMINAL HELPERS (terminal.go)
// =============================================================================

func TestWrapText(t *testing.T) {
	// Short lines pass through untouched
	if got := WrapText("hello", 80); got != "hello" {
		t.Errorf("WrapText(hello) = %q", got)
	}

	// Long lines wrap at word boundaries
	in := "the quick brown fox jumps over the lazy dog"
	got := WrapText(in, 20)
	for i, line := range strings.Split(got, "\n") {
		if len(line) > 20 {
			t.Errorf("line %d too long: %q", i, line)
		}
	}
	if strings.ReplaceAll(got, "\n", " ") != in {
		t.Errorf("wrapping lost words: %q", got)
	}

	// Existing newlines are preserved
	got = WrapText("a\nb", 80)
	if got != "a\nb" {
		t.Errorf("WrapText(a\\nb) = %q", got)
	}
}

func TestRenderStatus(t *testing.T) {
	if !strings.Contains(RenderStatus("ok"), "[OK]") {
		t.Error("RenderStatus(ok) should contain [OK]")
	}
	if !strings.Contains(RenderStatus("fail"), "[FAIL]") {
		t.Error("RenderStatus(fail) should contain [FAIL]")
	}
	if !strings.Contains(RenderStatus("weird"), "[WEIRD]") {
		t.Error("RenderStatus(weird) should upcase unknown statuses")
	}
}
