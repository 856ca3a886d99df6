// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"
	"time"
)

// TestNew tests initial session state: no intent, empty history.
func TestNew(t *testing.T) {
	sess := New("user123", "Alice")

	if sess.UserID != "user123" {
		t.Errorf("UserID = %q, want user123", sess.UserID)
	}
	if sess.UserName != "Alice" {
		t.Errorf("UserName = %q, want Alice", sess.UserName)
	}
	if sess.LastIntent != "" {
		t.Errorf("LastIntent = %q, want empty", sess.LastIntent)
	}
	if len(sess.History) != 0 {
		t.Errorf("History has %d entries, want 0", len(sess.History))
	}
	if sess.ID == "" {
		t.Error("ID is empty")
	}
}

// TestRecordIntent tests that the last intent is overwritten, not
// accumulated.
func TestRecordIntent(t *testing.T) {
	sess := New("user123", "Alice")

	sess.RecordIntent("greet")
	if sess.LastIntent != "greet" {
		t.Errorf("LastIntent = %q, want greet", sess.LastIntent)
	}

	sess.RecordIntent("farewell")
	if sess.LastIntent != "farewell" {
		t.Errorf("LastIntent = %q, want farewell", sess.LastIntent)
	}
}

// TestAppendHistory tests that history grows only through explicit
// appends and preserves order.
func TestAppendHistory(t *testing.T) {
	sess := New("user123", "Alice")
	now := time.Now()

	sess.AppendHistory(RoleUser, "hi there", now)
	sess.AppendHistory(RoleBot, "Hello, Alice!", now)

	if len(sess.History) != 2 {
		t.Fatalf("History has %d entries, want 2", len(sess.History))
	}
	if sess.History[0].Role != RoleUser || sess.History[0].Text != "hi there" {
		t.Errorf("first entry = %+v", sess.History[0])
	}
	if sess.History[1].Role != RoleBot {
		t.Errorf("second entry role = %q, want bot", sess.History[1].Role)
	}

	// RecordIntent never touches history
	sess.RecordIntent("greet")
	if len(sess.History) != 2 {
		t.Errorf("RecordIntent changed history length to %d", len(sess.History))
	}
}

// TestLastEntries tests history tail selection.
func TestLastEntries(t *testing.T) {
	sess := New("user123", "Alice")
	now := time.Now()
	sess.AppendHistory(RoleUser, "one", now)
	sess.AppendHistory(RoleBot, "two", now)
	sess.AppendHistory(RoleUser, "three", now)

	tests := []struct {
		name  string
		n     int
		count int
		first string
	}{
		{name: "all_when_zero", n: 0, count: 3, first: "one"},
		{name: "all_when_negative", n: -1, count: 3, first: "one"},
		{name: "tail_of_two", n: 2, count: 2, first: "two"},
		{name: "more_than_available", n: 10, count: 3, first: "one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sess.LastEntries(tt.n)
			if len(got) != tt.count {
				t.Fatalf("got %d entries, want %d", len(got), tt.count)
			}
			if got[0].Text != tt.first {
				t.Errorf("first = %q, want %q", got[0].Text, tt.first)
			}
		})
	}
}

// TestGetStatus tests the status snapshot.
func TestGetStatus(t *testing.T) {
	sess := New("user123", "Alice")
	sess.RecordIntent("greet")
	sess.AppendHistory(RoleUser, "hi", time.Now())

	st := sess.GetStatus()
	if st.UserName != "Alice" || st.LastIntent != "greet" || st.HistoryCount != 1 {
		t.Errorf("status = %+v", st)
	}
	if st.Duration < 0 {
		t.Errorf("negative duration %v", st.Duration)
	}
}
