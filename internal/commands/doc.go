// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat front ends.
//
// This package handles parsing and executing slash commands in the chat
// interface, providing autocomplete and command registration.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - ParseResult: Parsed command with name and arguments
//   - Result: What a handler returns to the front end
//   - Completer: Tab completion for commands and arguments
//
// # Built-in Commands
//
//   - /help: Show available commands
//   - /reload: Reload the rule file from disk
//   - /intents: List loaded intents
//   - /history: Show recent conversation history
//   - /sessions: List saved transcript sessions
//   - /status: Show detailed status information
//
// # Usage
//
// Parse and execute a command:
//
//	result := parser.Parse(input)
//	if result.IsCommand {
//	    out := registry.Execute(ctx, result)
//	    fmt.Println(out.Output)
//	}
//
// Get completions:
//
//	completions := completer.Complete("/re", 3)
//	// Returns /reload
package commands
