// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// messages.go - Conversation message types for the chat view.
package chat

import (
	"time"

	"github.com/jeranaias/rulechat/internal/session"
)

// roleSystem marks messages produced by slash commands and internal
// notices rather than conversation turns.
const roleSystem = "system"

// Message is one entry in the rendered conversation.
type Message struct {
	Role      string // session.RoleUser, session.RoleBot, or roleSystem
	Text      string
	Timestamp time.Time
	Fallback  bool // true when a bot message is the fallback reply
}

// userMessage builds a user message.
func userMessage(text string, when time.Time) Message {
	return Message{Role: session.RoleUser, Text: text, Timestamp: when}
}

// botMessage builds a bot message.
func botMessage(text string, fallback bool, when time.Time) Message {
	return Message{Role: session.RoleBot, Text: text, Fallback: fallback, Timestamp: when}
}

// systemMessage builds a system notice.
func systemMessage(text string) Message {
	return Message{Role: roleSystem, Text: text, Timestamp: time.Now()}
}

// RulesReloadedMsg reports a successful background rule reload.
// Sent into the program by the file watcher.
type RulesReloadedMsg struct {
	Count int
}

// RulesReloadErrMsg reports a failed background rule reload. The store
// keeps serving the previous rules when this arrives.
type RulesReloadErrMsg struct {
	Err error
}
