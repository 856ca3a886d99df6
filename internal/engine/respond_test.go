// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/rulechat/internal/rules"
	"github.com/jeranaias/rulechat/internal/session"
)

// clockTimeRe matches the rendered {time} shape: HH:MM AM/PM with a
// leading-zero hour.
var clockTimeRe = regexp.MustCompile(`\b(0[1-9]|1[0-2]):[0-5][0-9] (AM|PM)\b`)

// TestRender_Placeholders tests {name} and {time} substitution.
func TestRender_Placeholders(t *testing.T) {
	rule := rules.Rule{
		Intent:    "greet",
		Patterns:  []string{"hello"},
		Responses: []string{"Hello, {name}! It's {time}."},
	}
	sess := session.New("user123", "Alice")
	now := time.Date(2025, 6, 1, 15, 7, 0, 0, time.UTC)

	got, err := NewRenderer(FirstSelector{}).Render(rule, sess, now)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}

	if !strings.Contains(got, "Alice") {
		t.Errorf("rendered %q does not contain user name", got)
	}
	if !strings.Contains(got, "It's") {
		t.Errorf("rendered %q lost literal text around placeholders", got)
	}
	if !strings.Contains(got, "03:07 PM") {
		t.Errorf("rendered %q does not contain expected clock time", got)
	}
	if !clockTimeRe.MatchString(got) {
		t.Errorf("rendered %q has no HH:MM AM/PM token", got)
	}
}

// TestRender_TimeFormat tests the 12-hour clock edge cases.
func TestRender_TimeFormat(t *testing.T) {
	tests := []struct {
		name     string
		hour     int
		minute   int
		expected string
	}{
		{name: "morning_leading_zero", hour: 9, minute: 5, expected: "09:05 AM"},
		{name: "noon", hour: 12, minute: 0, expected: "12:00 PM"},
		{name: "midnight", hour: 0, minute: 30, expected: "12:30 AM"},
		{name: "afternoon", hour: 15, minute: 7, expected: "03:07 PM"},
		{name: "just_before_midnight", hour: 23, minute: 59, expected: "11:59 PM"},
	}

	rule := rules.Rule{Intent: "time", Responses: []string{"{time}"}}
	sess := session.New("user123", "Alice")
	renderer := NewRenderer(FirstSelector{})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(2025, 6, 1, tt.hour, tt.minute, 0, 0, time.UTC)
			got, err := renderer.Render(rule, sess, now)
			if err != nil {
				t.Fatalf("Render returned error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

// TestRender_UnknownPlaceholderVerbatim tests that unrecognized
// placeholders pass through untouched.
func TestRender_UnknownPlaceholderVerbatim(t *testing.T) {
	rule := rules.Rule{
		Intent:    "greet",
		Responses: []string{"Hey {name}, your {mood} is noted at {time}."},
	}
	sess := session.New("user123", "Bob")

	got, err := NewRenderer(FirstSelector{}).Render(rule, sess, time.Now())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !strings.Contains(got, "{mood}") {
		t.Errorf("rendered %q should keep {mood} verbatim", got)
	}
}

// TestRender_FirstResponseFixed tests the deliberate fixed-selection
// policy: index 0 wins even when more variants are declared.
func TestRender_FirstResponseFixed(t *testing.T) {
	rule := rules.Rule{
		Intent:    "greet",
		Responses: []string{"first variant", "second variant", "third variant"},
	}
	sess := session.New("user123", "Alice")
	renderer := NewRenderer(FirstSelector{})

	for i := 0; i < 5; i++ {
		got, err := renderer.Render(rule, sess, time.Now())
		if err != nil {
			t.Fatalf("Render returned error: %v", err)
		}
		if got != "first variant" {
			t.Fatalf("iteration %d rendered %q, want the first variant", i, got)
		}
	}
}

// TestRender_EmptyTemplate tests the ErrEmptyTemplate condition instead
// of indexing past the end.
func TestRender_EmptyTemplate(t *testing.T) {
	rule := rules.Rule{Intent: "hollow", Patterns: []string{"x"}}
	sess := session.New("user123", "Alice")

	_, err := NewRenderer(FirstSelector{}).Render(rule, sess, time.Now())
	if err == nil {
		t.Fatal("expected an error for a rule with no responses")
	}
	if !errors.Is(err, ErrEmptyTemplate) {
		t.Errorf("error %v is not ErrEmptyTemplate", err)
	}
	if !strings.Contains(err.Error(), "hollow") {
		t.Errorf("error %q does not name the rule's intent", err.Error())
	}
}

// =============================================================================
// SELECTOR TESTS
// =============================================================================

// TestRoundRobinSelector tests rotation across calls.
func TestRoundRobinSelector(t *testing.T) {
	sel := &RoundRobinSelector{}
	got := []int{sel.Select(3), sel.Select(3), sel.Select(3), sel.Select(3)}
	want := []int{0, 1, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation = %v, want %v", got, want)
		}
	}
}

// TestRandomSelector_InRange tests that selections stay in bounds and a
// fixed seed is reproducible.
func TestRandomSelector_InRange(t *testing.T) {
	a := NewRandomSelector(42)
	b := NewRandomSelector(42)
	for i := 0; i < 100; i++ {
		x := a.Select(4)
		if x < 0 || x >= 4 {
			t.Fatalf("selection %d out of range", x)
		}
		if y := b.Select(4); y != x {
			t.Fatalf("same seed diverged: %d != %d", x, y)
		}
	}
}

// TestSelectorFor tests configuration-name resolution.
func TestSelectorFor(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "default_empty", value: ""},
		{name: "first", value: "first"},
		{name: "random", value: "random"},
		{name: "round_robin", value: "round-robin"},
		{name: "round_robin_alias", value: "RoundRobin"},
		{name: "unknown", value: "weighted", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := SelectorFor(tt.value)
			if tt.wantErr {
				if err == nil {
					t.Errorf("SelectorFor(%q) expected error", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectorFor(%q) error: %v", tt.value, err)
			}
			if sel == nil {
				t.Fatalf("SelectorFor(%q) returned nil selector", tt.value)
			}
		})
	}
}

// TestSelectorFor_DefaultIsDeterministic tests that the empty config
// value resolves to the fixed first-response policy.
func TestSelectorFor_DefaultIsDeterministic(t *testing.T) {
	sel, err := SelectorFor("")
	if err != nil {
		t.Fatalf("SelectorFor(\"\") error: %v", err)
	}
	if _, ok := sel.(FirstSelector); !ok {
		t.Errorf("default selector is %T, want FirstSelector", sel)
	}
}
