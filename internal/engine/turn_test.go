// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/rulechat/internal/rules"
	"github.com/jeranaias/rulechat/internal/session"
)

// TestProcessTurn_Match tests the full pipeline on a matching input.
func TestProcessTurn_Match(t *testing.T) {
	eng := New(FirstSelector{})
	sess := session.New("user123", "Alice")
	now := time.Date(2025, 6, 1, 15, 7, 0, 0, time.UTC)

	reply, err := eng.ProcessTurn("  Hi There  ", sess, testCollection(), now)
	if err != nil {
		t.Fatalf("ProcessTurn error: %v", err)
	}
	if !strings.Contains(reply, "Alice") {
		t.Errorf("reply %q does not contain user name", reply)
	}
	if sess.LastIntent != "greet" {
		t.Errorf("LastIntent = %q, want greet", sess.LastIntent)
	}
}

// TestProcessTurn_NoMatch tests the fallback reply and untouched session.
func TestProcessTurn_NoMatch(t *testing.T) {
	eng := New(FirstSelector{})
	sess := session.New("user123", "Alice")

	reply, err := eng.ProcessTurn("unknown command", sess, testCollection(), time.Now())
	if err != nil {
		t.Fatalf("ProcessTurn error: %v", err)
	}
	if reply != FallbackReply {
		t.Errorf("reply = %q, want fallback", reply)
	}
	if sess.LastIntent != "" {
		t.Errorf("LastIntent = %q, want empty after no match", sess.LastIntent)
	}
}

// TestProcessTurn_EmptyCollection tests that every input falls back and
// nothing crashes when no rules are loaded.
func TestProcessTurn_EmptyCollection(t *testing.T) {
	eng := New(FirstSelector{})
	sess := session.New("user123", "Alice")

	for _, input := range []string{"hello", "", "   ", "exit strategy", "{name}"} {
		reply, err := eng.ProcessTurn(input, sess, rules.Collection{}, time.Now())
		if err != nil {
			t.Fatalf("ProcessTurn(%q) error: %v", input, err)
		}
		if reply != FallbackReply {
			t.Errorf("ProcessTurn(%q) = %q, want fallback", input, reply)
		}
	}
}

// TestProcessTurn_EmptyTemplateDegrades tests that a matched rule with
// no responses yields the fallback plus a loggable error, never a panic,
// and still records the intent.
func TestProcessTurn_EmptyTemplateDegrades(t *testing.T) {
	collection := rules.Collection{
		{Intent: "hollow", Patterns: []string{"hollow"}, Responses: []string{}},
	}
	eng := New(FirstSelector{})
	sess := session.New("user123", "Alice")

	reply, err := eng.ProcessTurn("feeling hollow today", sess, collection, time.Now())
	if reply != FallbackReply {
		t.Errorf("reply = %q, want fallback", reply)
	}
	if !errors.Is(err, ErrEmptyTemplate) {
		t.Errorf("err = %v, want ErrEmptyTemplate", err)
	}
	if sess.LastIntent != "hollow" {
		t.Errorf("LastIntent = %q; a matched rule counts even when it cannot render", sess.LastIntent)
	}
}

// TestRunTurn_Outcome tests the detailed turn record used by
// transcript and history callers.
func TestRunTurn_Outcome(t *testing.T) {
	eng := New(FirstSelector{})
	sess := session.New("user123", "Alice")

	turn, err := eng.RunTurn("  HELLO  ", sess, testCollection(), time.Now())
	if err != nil {
		t.Fatalf("RunTurn error: %v", err)
	}
	if turn.Input != "hello" {
		t.Errorf("Input = %q, want normalized form", turn.Input)
	}
	if !turn.Matched || turn.Fallback {
		t.Errorf("turn = %+v, want matched non-fallback", turn)
	}
	if turn.Intent != "greet" {
		t.Errorf("Intent = %q, want greet", turn.Intent)
	}

	turn, err = eng.RunTurn("qwerty", sess, testCollection(), time.Now())
	if err != nil {
		t.Fatalf("RunTurn error: %v", err)
	}
	if turn.Matched || !turn.Fallback {
		t.Errorf("turn = %+v, want unmatched fallback", turn)
	}
	if turn.Intent != "" {
		t.Errorf("Intent = %q, want empty", turn.Intent)
	}
}

// TestProcessTurn_DoesNotAppendHistory tests that the pipeline never
// auto-appends to the conversation history; that hook is explicit.
func TestProcessTurn_DoesNotAppendHistory(t *testing.T) {
	eng := New(FirstSelector{})
	sess := session.New("user123", "Alice")

	_, _ = eng.ProcessTurn("hello", sess, testCollection(), time.Now())
	if len(sess.History) != 0 {
		t.Errorf("ProcessTurn appended %d history entries", len(sess.History))
	}
}

// TestProcessTurn_LastIntentOverwritten tests successive matches.
func TestProcessTurn_LastIntentOverwritten(t *testing.T) {
	eng := New(FirstSelector{})
	sess := session.New("user123", "Alice")

	_, _ = eng.ProcessTurn("hello", sess, testCollection(), time.Now())
	_, _ = eng.ProcessTurn("bye for now", sess, testCollection(), time.Now())
	if sess.LastIntent != "farewell" {
		t.Errorf("LastIntent = %q, want farewell", sess.LastIntent)
	}

	// An unmatched turn leaves the previous intent in place.
	_, _ = eng.ProcessTurn("zzz", sess, testCollection(), time.Now())
	if sess.LastIntent != "farewell" {
		t.Errorf("LastIntent = %q, unmatched turn must not clear it", sess.LastIntent)
	}
}
