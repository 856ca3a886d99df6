// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// session.go - Per-user conversational state.
package session

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// HISTORY ENTRIES
// =============================================================================

// Role identifies who produced a history entry.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Entry is one record in the conversation history.
type Entry struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// =============================================================================
// SESSION
// =============================================================================

// Session holds per-user conversational context for one process run.
//
// UserID and UserName are fixed at creation. LastIntent is overwritten
// on each successful match. History is append-only and is populated
// only through explicit AppendHistory calls - the turn pipeline never
// appends on its own.
//
// A Session is exclusively owned by the single active conversation
// loop, so it carries no lock. Do not share one across goroutines.
type Session struct {
	// ID uniquely identifies this session (one per process run)
	ID string

	// UserID and UserName identify the user; immutable after New
	UserID   string
	UserName string

	// LastIntent is the intent of the most recent successful match,
	// empty until the first match
	LastIntent string

	// History is the append-only conversation log
	History []Entry

	// StartTime is when the session was created
	StartTime time.Time
}

// New creates a session for the given user with no matched intent and
// an empty history.
func New(userID, userName string) *Session {
	return &Session{
		ID:        "sess_" + uuid.NewString(),
		UserID:    userID,
		UserName:  userName,
		History:   make([]Entry, 0),
		StartTime: time.Now(),
	}
}

// RecordIntent overwrites the last matched intent.
func (s *Session) RecordIntent(intent string) {
	s.LastIntent = intent
}

// AppendHistory appends one entry to the conversation log.
// This is the only mutation path for History; callers decide when a
// turn is worth recording.
func (s *Session) AppendHistory(role, text string, when time.Time) {
	s.History = append(s.History, Entry{
		Role:      role,
		Text:      text,
		Timestamp: when,
	})
}

// LastEntries returns up to n entries from the end of the history,
// oldest first. n <= 0 returns the whole history.
func (s *Session) LastEntries(n int) []Entry {
	if n <= 0 || n >= len(s.History) {
		return s.History
	}
	return s.History[len(s.History)-n:]
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status is a point-in-time view of the session for display.
type Status struct {
	ID           string
	UserID       string
	UserName     string
	LastIntent   string
	HistoryCount int
	StartTime    time.Time
	Duration     time.Duration
}

// GetStatus returns the current session status.
func (s *Session) GetStatus() Status {
	return Status{
		ID:           s.ID,
		UserID:       s.UserID,
		UserName:     s.UserName,
		LastIntent:   s.LastIntent,
		HistoryCount: len(s.History),
		StartTime:    s.StartTime,
		Duration:     time.Since(s.StartTime),
	}
}
