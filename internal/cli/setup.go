// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - First-run setup for rulechat.
//
// Command: setup
// Short:   Write a starter configuration and rule file
// Aliases: init
//
// Examples:
//   rulechat setup            Interactive setup
//   rulechat setup --quick    Non-interactive setup with defaults
//   rulechat setup rules      (Re)write the starter rule file only
//
// Setup never overwrites an existing rule file; delete it first if you
// want the starter rules back.

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/rulechat/internal/config"
	"github.com/jeranaias/rulechat/internal/util"
)

// starterRulesJSON is the rule file written on first run. It exercises
// both placeholders and multi-pattern rules so new users see the full
// shape of a rule.
const starterRulesJSON = `[
  {
    "intent": "greet",
    "patterns": ["hello", "hi", "hey"],
    "responses": ["Hello, {name}!", "Hi there, {name}!"]
  },
  {
    "intent": "time",
    "patterns": ["time", "clock"],
    "responses": ["It is {time}."]
  },
  {
    "intent": "farewell",
    "patterns": ["bye", "goodbye", "see you"],
    "responses": ["Goodbye, {name}! Talk soon."]
  },
  {
    "intent": "thanks",
    "patterns": ["thank", "thanks"],
    "responses": ["You're welcome, {name}."]
  }
]
`

// HandleSetup handles the "setup" command.
// Modes:
//   - setup: interactive setup
//   - setup --quick: defaults only, no prompts
//   - setup rules: starter rule file only
//   - setup config: configuration file only
func HandleSetup(args Args) error {
	quick := NewArgParser(args.Raw).BoolFlag("quick")

	switch args.Subcommand {
	case "":
		if quick || !CanPrompt() {
			return runQuickSetup()
		}
		return runInteractiveSetup()
	case "quick":
		return runQuickSetup()
	case "rules":
		return writeStarterRules(true)
	case "config":
		return writeConfig(config.Default())
	default:
		return fmt.Errorf("unknown setup subcommand: %s", args.Subcommand)
	}
}

// runQuickSetup writes defaults without prompting.
func runQuickSetup() error {
	cfg := config.Default()
	if err := writeConfig(cfg); err != nil {
		return err
	}
	return writeStarterRules(false)
}

// runInteractiveSetup asks two questions and writes the results.
func runInteractiveSetup() error {
	fmt.Println()
	fmt.Println(TitleStyle.Render("rulechat setup"))
	fmt.Println(RenderSeparator(39))
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	cfg := config.Default()

	// Step 1: display name for {name}
	fmt.Printf("Display name [%s]: ", cfg.User.Name)
	if name, err := reader.ReadString('\n'); err == nil {
		if name = strings.TrimSpace(name); name != "" {
			cfg.User.Name = name
		}
	}

	// Step 2: response selection strategy
	fmt.Printf("Response selection (first/random/round-robin) [%s]: ", cfg.Responses.Selection)
	if sel, err := reader.ReadString('\n'); err == nil {
		if sel = strings.ToLower(strings.TrimSpace(sel)); sel != "" {
			cfg.Responses.Selection = sel
		}
	}

	if err := writeConfig(cfg); err != nil {
		return err
	}
	if err := writeStarterRules(false); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(SuccessStyle.Render("Setup complete.") + " Run 'rulechat' to start chatting.")
	return nil
}

// writeConfig finalizes and saves the configuration file.
func writeConfig(cfg *config.Config) error {
	if err := cfg.SetDefaults(); err != nil {
		return WrapError(err, "preparing configuration")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return WrapError(err, "saving configuration")
	}

	path, err := config.ConfigPathTOML()
	if err == nil {
		fmt.Printf("%s %s\n", SuccessStyle.Render("Wrote"), path)
	}
	return nil
}

// writeStarterRules writes the starter rule file. When overwrite is
// false an existing file is left alone.
func writeStarterRules(overwrite bool) error {
	path, err := config.DefaultRulesPath()
	if err != nil {
		return WrapError(err, "resolving rule file path")
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("%s %s (already exists)\n", DimStyle.Render("Kept"), path)
			return nil
		}
	}

	if err := util.AtomicWriteFile(path, []byte(starterRulesJSON), 0644); err != nil {
		return WrapError(err, "writing starter rules")
	}

	fmt.Printf("%s %s\n", SuccessStyle.Render("Wrote"), path)
	return nil
}
