// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rulechat/internal/config"
	"github.com/jeranaias/rulechat/internal/engine"
	"github.com/jeranaias/rulechat/internal/rules"
	"github.com/jeranaias/rulechat/internal/session"
)

const testRulesJSON = `[
  {"intent": "greet", "patterns": ["hello", "hi"], "responses": ["Hello, {name}!"]},
  {"intent": "time", "patterns": ["time"], "responses": ["It is {time}."]}
]`

// newTestModel builds a chat view over a temp rule file, sized and
// ready to accept input.
func newTestModel(t *testing.T) Model {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(testRulesJSON), 0644); err != nil {
		t.Fatalf("writing rules: %v", err)
	}

	store, err := rules.NewStore(rules.NewFileSource(path))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	cfg := config.Default()
	cfg.Rules.Path = path
	cfg.Storage.Transcripts = false
	cfg.UI.ShowTimestamps = false

	sess := session.New("u1", "Alice")
	m := New(cfg, store, sess, engine.New(nil), nil)

	// Size the view so the viewport exists
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

// sendLine types a line into the model and presses Enter.
func sendLine(t *testing.T, m Model, text string) Model {
	t.Helper()
	m.input.SetValue(text)
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model)
}

func TestModel_TurnAppendsBothSides(t *testing.T) {
	m := newTestModel(t)
	m = sendLine(t, m, "hello there")

	msgs := m.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if msgs[0].Role != session.RoleUser || msgs[0].Text != "hello there" {
		t.Errorf("first message = %+v", msgs[0])
	}
	if msgs[1].Role != session.RoleBot || msgs[1].Text != "Hello, Alice!" {
		t.Errorf("second message = %+v", msgs[1])
	}
	if msgs[1].Fallback {
		t.Error("matched turn should not be marked fallback")
	}
	if m.Turns() != 1 {
		t.Errorf("Turns() = %d, want 1", m.Turns())
	}
}

func TestModel_FallbackMarked(t *testing.T) {
	m := newTestModel(t)
	m = sendLine(t, m, "xyzzy")

	msgs := m.Messages()
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	if !msgs[1].Fallback {
		t.Error("unmatched turn should be marked fallback")
	}
	if msgs[1].Text != engine.FallbackReply {
		t.Errorf("reply = %q, want fallback text", msgs[1].Text)
	}
	if m.statusMsg != "no match" {
		t.Errorf("statusMsg = %q, want %q", m.statusMsg, "no match")
	}
}

func TestModel_SessionHistoryRecorded(t *testing.T) {
	m := newTestModel(t)
	m = sendLine(t, m, "hello")

	entries := m.sess.LastEntries(10)
	if len(entries) != 2 {
		t.Fatalf("history entries = %d, want 2", len(entries))
	}
	if entries[0].Role != session.RoleUser || entries[1].Role != session.RoleBot {
		t.Errorf("history roles = %s, %s", entries[0].Role, entries[1].Role)
	}
}

func TestModel_SlashCommandOutput(t *testing.T) {
	m := newTestModel(t)
	m = sendLine(t, m, "/intents")

	msgs := m.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if msgs[0].Role != roleSystem {
		t.Errorf("role = %q, want system", msgs[0].Role)
	}
	if !strings.Contains(msgs[0].Text, "greet") || !strings.Contains(msgs[0].Text, "time") {
		t.Errorf("intents output missing intents: %q", msgs[0].Text)
	}
}

func TestModel_UnknownCommandShowsError(t *testing.T) {
	m := newTestModel(t)
	m = sendLine(t, m, "/bogus")

	msgs := m.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if !strings.HasPrefix(msgs[0].Text, "error: ") {
		t.Errorf("expected error notice, got %q", msgs[0].Text)
	}
	if !strings.Contains(msgs[0].Text, "try /help") {
		t.Errorf("expected the unknown-command hint, got %q", msgs[0].Text)
	}
}

func TestModel_HelpCommand(t *testing.T) {
	m := newTestModel(t)
	m = sendLine(t, m, "/help")

	msgs := m.Messages()
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(msgs))
	}
	if strings.Contains(msgs[0].Text, "unavailable") {
		t.Fatalf("help not wired to the registry: %q", msgs[0].Text)
	}
	for _, want := range []string{"/reload", "/intents", "/history"} {
		if !strings.Contains(msgs[0].Text, want) {
			t.Errorf("help output missing %s:\n%s", want, msgs[0].Text)
		}
	}
}

func TestModel_QuitCommand(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("/quit")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if !m.quitting {
		t.Error("model should be quitting after /quit")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestModel_ClearKeyEmptiesConversation(t *testing.T) {
	m := newTestModel(t)
	m = sendLine(t, m, "hello")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	m = updated.(Model)

	if len(m.Messages()) != 0 {
		t.Errorf("messages = %d, want 0 after clear", len(m.Messages()))
	}

	// Session history is append-only and unaffected by clearing the view
	if len(m.sess.LastEntries(10)) != 2 {
		t.Error("clear should not touch session history")
	}
}

func TestModel_EmptyInputIgnored(t *testing.T) {
	m := newTestModel(t)
	m = sendLine(t, m, "   ")

	if len(m.Messages()) != 0 {
		t.Errorf("messages = %d, want 0 for blank input", len(m.Messages()))
	}
}

func TestModel_WatcherMessages(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(RulesReloadedMsg{Count: 3})
	m = updated.(Model)
	msgs := m.Messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0].Text, "3 rule(s) active") {
		t.Errorf("reload notice missing: %+v", msgs)
	}

	updated, _ = m.Update(RulesReloadErrMsg{Err: errors.New("boom")})
	m = updated.(Model)
	msgs = m.Messages()
	if len(msgs) != 2 || !strings.Contains(msgs[1].Text, "keeping previous rules") {
		t.Errorf("reload failure notice missing: %+v", msgs)
	}
}

func TestModel_ViewRendersLayout(t *testing.T) {
	m := newTestModel(t)
	m = sendLine(t, m, "hello")

	view := m.View()
	if !strings.Contains(view, "rulechat") {
		t.Error("view missing header title")
	}
	if !strings.Contains(view, "Hello, Alice!") {
		t.Error("view missing bot reply")
	}
	if !strings.Contains(view, "2 rule(s)") {
		t.Error("view missing rule count")
	}
}

func TestModel_ViewBeforeSizing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(testRulesJSON), 0644); err != nil {
		t.Fatal(err)
	}
	store, err := rules.NewStore(rules.NewFileSource(path))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Rules.Path = path

	m := New(cfg, store, session.New("u1", "Alice"), engine.New(nil), nil)
	if m.View() != "Initializing..." {
		t.Errorf("unsized view = %q", m.View())
	}
}
