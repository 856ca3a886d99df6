// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// transcripts.go - SQLite-backed turn transcript store.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/rulechat/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrStoreClosed is returned for operations on a closed store.
	ErrStoreClosed = errors.New("transcript store is closed")

	// ErrSessionNotFound is returned when a session has no recorded turns.
	ErrSessionNotFound = errors.New("session not found")
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// TurnRecord is one persisted conversation turn.
type TurnRecord struct {
	ID        int64
	SessionID string
	UserName  string
	Input     string // Raw user input as typed
	Reply     string // Rendered reply or the fallback
	Intent    string // Matched intent, empty when unmatched
	Fallback  bool   // True when Reply is the fallback text
	Timestamp time.Time
}

// SessionMeta summarizes one recorded session for listing.
type SessionMeta struct {
	SessionID string
	UserName  string
	TurnCount int
	FirstTurn time.Time
	LastTurn  time.Time
	Preview   string // First input of the session, truncated
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// TranscriptStore logs completed turns to a SQLite database.
type TranscriptStore struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS turns (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	user_name  TEXT NOT NULL,
	input      TEXT NOT NULL,
	reply      TEXT NOT NULL,
	intent     TEXT NOT NULL DEFAULT '',
	fallback   INTEGER NOT NULL DEFAULT 0,
	ts         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(session_id, ts);
`

// Open opens (and creates, if needed) a transcript database at path.
func Open(path string) (*TranscriptStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create transcript directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript database: %w", err)
	}

	// Single writer; the store is used from one conversation loop
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize transcript schema: %w", err)
	}

	return &TranscriptStore{db: db, path: path}, nil
}

// DefaultPath returns the default transcript database location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rulechat", "transcripts.db"), nil
}

// Close closes the underlying database.
func (s *TranscriptStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file location.
func (s *TranscriptStore) Path() string {
	return s.path
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// SaveTurn appends one completed turn. A zero Timestamp is filled with
// the current time.
func (s *TranscriptStore) SaveTurn(rec TurnRecord) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	fallback := 0
	if rec.Fallback {
		fallback = 1
	}

	_, err := s.db.Exec(
		`INSERT INTO turns (session_id, user_name, input, reply, intent, fallback, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.UserName, rec.Input, rec.Reply, rec.Intent, fallback, rec.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// =============================================================================
// QUERY OPERATIONS
// =============================================================================

// RecentTurns returns up to limit turns of a session, oldest first.
// limit <= 0 returns the whole session.
func (s *TranscriptStore) RecentTurns(sessionID string, limit int) ([]TurnRecord, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	query := `SELECT id, session_id, user_name, input, reply, intent, fallback, ts
		  FROM turns WHERE session_id = ? ORDER BY ts DESC, id DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []TurnRecord
	for rows.Next() {
		rec, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read turns: %w", err)
	}

	// Reverse into chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Sessions returns metadata for every recorded session, most recent
// activity first.
func (s *TranscriptStore) Sessions() ([]SessionMeta, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT session_id, user_name, COUNT(*), MIN(ts), MAX(ts)
		FROM turns GROUP BY session_id ORDER BY MAX(ts) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var metas []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var first, last int64
		if err := rows.Scan(&meta.SessionID, &meta.UserName, &meta.TurnCount, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		meta.FirstTurn = time.Unix(first, 0)
		meta.LastTurn = time.Unix(last, 0)
		metas = append(metas, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	// Fill previews from the first input of each session
	for i := range metas {
		var preview string
		err := s.db.QueryRow(
			`SELECT input FROM turns WHERE session_id = ? ORDER BY ts ASC, id ASC LIMIT 1`,
			metas[i].SessionID,
		).Scan(&preview)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to read session preview: %w", err)
		}
		metas[i].Preview = util.TruncateRunes(preview, 50)
	}

	return metas, nil
}

// SearchTurns returns turns whose input or reply contains the query,
// case-insensitive, across all sessions.
func (s *TranscriptStore) SearchTurns(query string) ([]TurnRecord, error) {
	if s.db == nil {
		return nil, ErrStoreClosed
	}

	like := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.Query(
		`SELECT id, session_id, user_name, input, reply, intent, fallback, ts
		 FROM turns WHERE lower(input) LIKE ? OR lower(reply) LIKE ?
		 ORDER BY ts ASC, id ASC`, like, like)
	if err != nil {
		return nil, fmt.Errorf("failed to search turns: %w", err)
	}
	defer rows.Close()

	var turns []TurnRecord
	for rows.Next() {
		rec, err := scanTurn(rows)
		if err != nil {
			return nil, err
		}
		turns = append(turns, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search results: %w", err)
	}
	return turns, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// DeleteSession removes all turns of one session.
func (s *TranscriptStore) DeleteSession(sessionID string) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	res, err := s.db.Exec(`DELETE FROM turns WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return nil
}

// Clear removes all recorded turns.
func (s *TranscriptStore) Clear() error {
	if s.db == nil {
		return ErrStoreClosed
	}
	if _, err := s.db.Exec(`DELETE FROM turns`); err != nil {
		return fmt.Errorf("failed to clear transcripts: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// scanTurn reads one turn row.
func scanTurn(rows *sql.Rows) (TurnRecord, error) {
	var rec TurnRecord
	var fallback int
	var ts int64
	if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.UserName, &rec.Input,
		&rec.Reply, &rec.Intent, &fallback, &ts); err != nil {
		return TurnRecord{}, fmt.Errorf("failed to scan turn row: %w", err)
	}
	rec.Fallback = fallback != 0
	rec.Timestamp = time.Unix(ts, 0)
	return rec, nil
}

// FormatSessionList formats session metadata as a display table.
func FormatSessionList(metas []SessionMeta) string {
	if len(metas) == 0 {
		return "No recorded sessions."
	}

	var sb strings.Builder
	sb.WriteString("Sessions:\n")
	sb.WriteString("-----------------------------------------------------\n")
	for _, m := range metas {
		sb.WriteString(m.SessionID + "  " +
			m.LastTurn.Format("2006-01-02 15:04") + "  " +
			util.IntToString(m.TurnCount) + " turns  " +
			m.Preview + "\n")
	}
	return sb.String()
}
