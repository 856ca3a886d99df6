// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the rulechat command-line interface.
//
// The package owns argument parsing, command dispatch, and the
// interactive chat loop. Every top-level command follows the same
// shape: Parse() classifies os.Args into a Command plus Args, main
// calls the matching Handle* function, and the handler returns an
// error whose exit code comes from GetExitCode.
//
// # Key Types
//
//   - Command: parsed top-level command (chat, ask, status, ...)
//   - Args: global flags plus command-specific values
//   - ArgParser: unified flag/positional parsing for subcommands
//   - ChatCLI: liner-backed line input with history and completion
//
// # Commands
//
//   - chat: interactive REPL (the default command)
//   - tui: full-screen terminal UI
//   - ask: one-shot query for scripting
//   - intents, status, config, setup, version, help
//
// # Output Conventions
//
// Handlers print human-readable output styled with lipgloss, or JSON
// when --json is set. Colors honor NO_COLOR, FORCE_COLOR, and TTY
// detection. Errors are never printed and swallowed: handlers return
// them so main can exit with the right code.
package cli
