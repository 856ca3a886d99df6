// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// respond.go - Response template selection and placeholder rendering.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jeranaias/rulechat/internal/rules"
	"github.com/jeranaias/rulechat/internal/session"
)

// ErrEmptyTemplate indicates a matched rule has no response templates.
// The turn degrades to the fallback reply; the process never aborts
// over a single malformed rule.
var ErrEmptyTemplate = errors.New("rule has no response templates")

// timeFormat renders a 12-hour clock with a leading-zero hour and an
// uppercase AM/PM marker, e.g. "03:07 PM".
const timeFormat = "03:04 PM"

// =============================================================================
// RESPONSE SELECTION
// =============================================================================

// Selector picks which of a rule's response templates to render.
// Implementations receive the template count (always >= 1) and return
// an index in [0, n).
//
// The default is FirstSelector: deterministic, reproducible replies.
// Alternative strategies are opt-in via configuration and must never
// become the default silently.
type Selector interface {
	Select(n int) int
}

// FirstSelector always picks the first declared template (index 0),
// even when more variants exist. This is the fixed default policy.
type FirstSelector struct{}

// Select returns 0.
func (FirstSelector) Select(int) int { return 0 }

// RandomSelector picks a uniformly random template.
type RandomSelector struct {
	rng *rand.Rand
}

// NewRandomSelector creates a random selector. A nil-seeded selector
// uses the current time.
func NewRandomSelector(seed int64) *RandomSelector {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomSelector{rng: rand.New(rand.NewSource(seed))}
}

// Select returns a random index in [0, n).
func (s *RandomSelector) Select(n int) int { return s.rng.Intn(n) }

// RoundRobinSelector cycles through templates across turns. The cursor
// is shared across rules; rotation order within one rule's variants is
// still stable.
type RoundRobinSelector struct {
	next int
}

// Select returns the next index in rotation.
func (s *RoundRobinSelector) Select(n int) int {
	i := s.next % n
	s.next++
	return i
}

// SelectorFor returns the selector named by a configuration value.
// Valid names: "first" (default, also the empty string), "random",
// "round-robin".
func SelectorFor(name string) (Selector, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "first":
		return FirstSelector{}, nil
	case "random":
		return NewRandomSelector(0), nil
	case "round-robin", "roundrobin":
		return &RoundRobinSelector{}, nil
	default:
		return nil, fmt.Errorf("unknown selection strategy %q (valid: first, random, round-robin)", name)
	}
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer expands response templates against session context and a
// caller-supplied clock reading.
type Renderer struct {
	selector Selector
}

// NewRenderer creates a renderer with the given selection strategy.
// A nil selector falls back to FirstSelector.
func NewRenderer(selector Selector) *Renderer {
	if selector == nil {
		selector = FirstSelector{}
	}
	return &Renderer{selector: selector}
}

// Render picks a response template and substitutes placeholders:
// {name} becomes the session user name, then {time} becomes the given
// time on a 12-hour clock ("03:07 PM"). Each pass is a literal text
// replacement in that fixed order. Unrecognized placeholders are left
// verbatim.
//
// A rule with no response templates returns ErrEmptyTemplate.
func (r *Renderer) Render(rule rules.Rule, sess *session.Session, now time.Time) (string, error) {
	if !rule.HasResponses() {
		return "", fmt.Errorf("%w: intent %q", ErrEmptyTemplate, rule.Intent)
	}

	response := rule.Responses[r.selector.Select(len(rule.Responses))]
	response = strings.ReplaceAll(response, "{name}", sess.UserName)
	response = strings.ReplaceAll(response, "{time}", now.Format(timeFormat))
	return response, nil
}
