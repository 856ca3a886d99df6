// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line interface for rulechat.
//
// CLI: Comprehensive help and examples for all commands
//
// This file handles:
// - Command-line argument parsing
// - Command dispatch to the right handler
// - Global flags shared by every command
// - Usage and version information
//
// Global flags:
//   --rules PATH     Override the rule file for this run
//   --name NAME      Override the display name used in {name}
//   --select MODE    Response selection: first, random, round-robin
//   --watch          Force rule file watching on
//   --no-watch       Force rule file watching off
//   --json           Machine-readable output where supported
//   --quiet          Suppress the welcome banner

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/rulechat/internal/config"
	"github.com/jeranaias/rulechat/internal/engine"
	"github.com/jeranaias/rulechat/internal/rules"
)

// Build information, injected at build time via -ldflags.
var (
	// Version is the rulechat version
	Version = "dev"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
	// BuildDate is the build timestamp
	BuildDate = "unknown"
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// Command represents a parsed top-level command.
type Command int

const (
	// CmdChat starts the interactive terminal chat (the default)
	CmdChat Command = iota
	// CmdTUI starts the full-screen terminal UI
	CmdTUI
	// CmdAsk runs a single query and exits
	CmdAsk
	// CmdIntents lists the loaded intents
	CmdIntents
	// CmdStatus shows configuration and rule status
	CmdStatus
	// CmdConfig gets or sets configuration values
	CmdConfig
	// CmdSetup writes a starter configuration and rule file
	CmdSetup
	// CmdVersion shows version information
	CmdVersion
	// CmdHelp shows usage information
	CmdHelp
)

// Args holds parsed command arguments.
type Args struct {
	// Global flags
	JSON      bool   // --json: machine-readable output
	Quiet     bool   // --quiet: suppress the welcome banner
	RulesPath string // --rules: override rule file path
	UserName  string // --name: override {name} display name
	Selection string // --select: response selection strategy
	Watch     string // --watch/--no-watch: "on", "off", or "" (use config)

	// Command-specific values
	Query      string // ask: the question text
	Subcommand string // setup: subcommand
	ConfigKey  string // config: key to get or set
	ConfigVal  string // config: value to set

	// Raw holds the leftover arguments for the command
	Raw []string
}

// usageText is the full help output.
const usageText = `rulechat - rule-driven conversational responder

Version: %s

USAGE:
    rulechat [command] [flags]

COMMANDS:
    chat            Interactive chat in the terminal (default)
    tui             Full-screen terminal UI
    ask QUERY       Answer a single query and exit
    intents         List the loaded intents in match order
    status          Show configuration and rule status
    config [K] [V]  Show, get, or set configuration values
    setup           Write a starter configuration and rule file
    version         Show version information
    help            Show this help

GLOBAL FLAGS:
    --rules PATH    Use PATH as the rule file for this run
    --name NAME     Display name substituted for {name}
    --select MODE   Response selection: first, random, round-robin
    --watch         Reload the rule file automatically when it changes
    --no-watch      Disable automatic reloading for this run
    --json          Machine-readable output where supported
    --quiet         Suppress the welcome banner

EXAMPLES:
    rulechat                          Start chatting
    rulechat ask hello there          One-shot query
    rulechat ask --json what time     One-shot query, JSON output
    rulechat --rules demo.json chat   Chat against a specific rule file
    rulechat config responses.selection random
    rulechat setup                    First-run setup

Anything after an unknown command is treated as an ask query:
    rulechat what time is it

CONFIGURATION:
    Config file: ~/.rulechat/config.toml (or config.json)
    Rule file:   ~/.rulechat/rules.json (JSON or TOML)

ENVIRONMENT:
    RULECHAT_RULES       Override the rule file path
    RULECHAT_USER_NAME   Override the display name
    RULECHAT_SELECTION   Override the selection strategy
    NO_COLOR             Disable colored output
`

// PrintUsage prints the usage information.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("rulechat %s\n", Version)
	fmt.Printf("  commit: %s\n", GitCommit)
	fmt.Printf("  built:  %s\n", BuildDate)
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	argv := os.Args[1:]
	args := Args{}

	rest := parseGlobalFlags(argv, &args)
	args.Raw = rest

	if len(rest) == 0 {
		return CmdChat, args
	}

	cmd := rest[0]
	switch cmd {
	case "chat", "c":
		args.Raw = rest[1:]
		return CmdChat, args

	case "tui", "ui":
		args.Raw = rest[1:]
		return CmdTUI, args

	case "ask", "a":
		args.Query = JoinPositionalArgs(NewArgParser(rest[1:]), 0)
		args.Raw = rest[1:]
		return CmdAsk, args

	case "intents", "list":
		args.Raw = rest[1:]
		return CmdIntents, args

	case "status", "s":
		args.Raw = rest[1:]
		return CmdStatus, args

	case "config", "cfg":
		p := NewArgParser(rest[1:])
		args.ConfigKey = p.Positional(0)
		args.ConfigVal = JoinPositionalArgs(p, 1)
		args.Raw = rest[1:]
		return CmdConfig, args

	case "setup", "init":
		// Subcommand() skips flags, so "setup --quick" stays bare.
		args.Subcommand = NewArgParser(rest[1:]).Subcommand()
		args.Raw = rest[1:]
		return CmdSetup, args

	case "version", "-v", "--version":
		return CmdVersion, args

	case "help", "-h", "--help":
		return CmdHelp, args

	default:
		// Unknown first token: treat the whole remainder as an ask
		// query, so "rulechat what time is it" just works.
		args.Query = JoinPositionalArgs(NewArgParser(rest), 0)
		return CmdAsk, args
	}
}

// parseGlobalFlags extracts global flags from argv and returns the
// remaining arguments in their original order.
func parseGlobalFlags(argv []string, args *Args) []string {
	rest := make([]string, 0, len(argv))

	i := 0
	for i < len(argv) {
		arg := argv[i]
		switch {
		case arg == "--json":
			args.JSON = true
			i++
		case arg == "--quiet" || arg == "-q":
			args.Quiet = true
			i++
		case arg == "--rules" && i+1 < len(argv):
			args.RulesPath = argv[i+1]
			i += 2
		case strings.HasPrefix(arg, "--rules="):
			args.RulesPath = strings.TrimPrefix(arg, "--rules=")
			i++
		case arg == "--name" && i+1 < len(argv):
			args.UserName = argv[i+1]
			i += 2
		case strings.HasPrefix(arg, "--name="):
			args.UserName = strings.TrimPrefix(arg, "--name=")
			i++
		case arg == "--watch":
			args.Watch = "on"
			i++
		case arg == "--no-watch":
			args.Watch = "off"
			i++
		case arg == "--select" && i+1 < len(argv):
			args.Selection = argv[i+1]
			i += 2
		case strings.HasPrefix(arg, "--select="):
			args.Selection = strings.TrimPrefix(arg, "--select=")
			i++
		default:
			rest = append(rest, arg)
			i++
		}
	}

	return rest
}

// =============================================================================
// SHARED COMMAND WIRING
// =============================================================================

// loadConfig loads the configuration and applies command-line overrides.
// Flag values win over environment values, which win over the file.
func loadConfig(args Args) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, WrapError(err, "loading configuration")
	}

	if args.RulesPath != "" {
		cfg.Rules.Path = args.RulesPath
	}
	if args.UserName != "" {
		cfg.User.Name = args.UserName
	}
	if args.Selection != "" {
		cfg.Responses.Selection = args.Selection
	}
	switch args.Watch {
	case "on":
		cfg.Rules.Watch = true
	case "off":
		cfg.Rules.Watch = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openStore builds a rule store for the configured rule file.
// The initial load happens here, so a missing or malformed file fails fast.
func openStore(cfg *config.Config) (*rules.Store, error) {
	return rules.NewStore(rules.NewFileSource(cfg.Rules.Path))
}

// newEngine builds a turn engine from the configured selection strategy.
func newEngine(cfg *config.Config) (*engine.Engine, error) {
	var selector engine.Selector
	if strings.EqualFold(cfg.Responses.Selection, "random") && cfg.Responses.RandomSeed != 0 {
		selector = engine.NewRandomSelector(cfg.Responses.RandomSeed)
	} else {
		var err error
		selector, err = engine.SelectorFor(cfg.Responses.Selection)
		if err != nil {
			return nil, err
		}
	}
	return engine.New(selector), nil
}

// =============================================================================
// VERSION AND HELP HANDLERS
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion(args Args) error {
	if args.JSON {
		out := map[string]interface{}{
			"version": Version,
			"commit":  GitCommit,
			"built":   BuildDate,
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	PrintVersion()
	return nil
}

// HandleHelp handles the "help" command.
func HandleHelp(args Args) error {
	PrintUsage()
	return nil
}
