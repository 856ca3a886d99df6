// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the full-screen chat view for the rulechat TUI.
//
// The view is a Bubble Tea model wired to the same pieces as the line
// REPL: the rule store, the turn engine, the session, and the slash
// command registry. A conversation renders into a scrollable viewport
// with a single-line input below it and a status bar at the bottom.
//
// # Layout
//
//	header     title, user, rule count
//	viewport   conversation history
//	input      textinput with prompt
//	statusbar  selection mode, last intent, key hints
//
// Slash commands go through the shared commands.Registry, so /help,
// /reload, /config and friends behave identically in both interfaces.
package chat
