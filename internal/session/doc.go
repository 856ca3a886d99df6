// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks per-user conversational state for rulechat.
//
// A Session is created once at startup, carries the user's identity,
// the last matched intent, and the conversation history, and is
// discarded when the process exits. It is owned by exactly one
// conversation loop at a time.
//
// # Key Types
//
//   - Session: per-user state (identity, last intent, history)
//   - Entry: one history record (role, text, timestamp)
//   - Status: point-in-time view for the /status directive
//
// # Usage
//
//	sess := session.New("user123", "User")
//	sess.RecordIntent("greet")
//	sess.AppendHistory(session.RoleUser, "hi there", time.Now())
package session
