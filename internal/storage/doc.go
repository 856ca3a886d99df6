// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides transcript persistence for rulechat.
//
// Completed turns are written to a local SQLite database, one row per
// turn, so conversations can be reviewed after the process exits. The
// store is strictly a front-end concern: the turn pipeline never writes
// to it, and disabling transcripts changes nothing about matching or
// rendering.
//
// # Key Types
//
//   - TranscriptStore: SQLite-backed turn log
//   - TurnRecord: one persisted turn
//   - SessionMeta: lightweight per-session metadata for listing
//
// # Usage
//
//	store, err := storage.Open(dbPath)
//	defer store.Close()
//	err = store.SaveTurn(rec)
//	turns, err := store.RecentTurns(sessionID, 20)
//
// # Storage Location
//
// The default database lives at ~/.rulechat/transcripts.db.
package storage
