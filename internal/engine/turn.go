// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// turn.go - The single entry point combining normalize, match, render,
// and session update.
package engine

import (
	"time"

	"github.com/jeranaias/rulechat/internal/rules"
	"github.com/jeranaias/rulechat/internal/session"
)

// FallbackReply is returned whenever no rule matches or a matched rule
// cannot be rendered.
const FallbackReply = "I'm sorry, I didn't understand that. Could you please rephrase?"

// =============================================================================
// ENGINE
// =============================================================================

// Engine processes conversation turns against a rule snapshot.
// One input is fully processed before the next is accepted; the engine
// itself keeps no mutable state beyond the renderer's selector.
type Engine struct {
	renderer *Renderer
}

// New creates an engine with the given response selection strategy.
// nil selects the deterministic first-response default.
func New(selector Selector) *Engine {
	return &Engine{renderer: NewRenderer(selector)}
}

// Turn is the full outcome of one processed input, for callers that
// record transcripts or history.
type Turn struct {
	// Input is the normalized form actually matched against
	Input string

	// Reply is the rendered response or the fallback
	Reply string

	// Intent is the matched rule's intent, empty when unmatched
	Intent string

	// Matched is true when a rule was selected
	Matched bool

	// Fallback is true when Reply is the fallback text, either
	// because nothing matched or the matched rule had no templates
	Fallback bool
}

// ProcessTurn normalizes the raw input, matches it against the rule
// snapshot, renders the reply, and records the matched intent on the
// session. It returns the reply text; when a matched rule has no
// response templates the reply is the fallback and the ErrEmptyTemplate
// error is returned alongside it so the caller can log the rule.
func (e *Engine) ProcessTurn(raw string, sess *session.Session, collection rules.Collection, now time.Time) (string, error) {
	turn, err := e.RunTurn(raw, sess, collection, now)
	return turn.Reply, err
}

// RunTurn is ProcessTurn with the full turn outcome.
//
// The session's last intent is updated as a side effect of a successful
// match, before rendering - a rule that matches but cannot render still
// counts as the last matched intent, mirroring the matching/rendering
// split in the data model.
func (e *Engine) RunTurn(raw string, sess *session.Session, collection rules.Collection, now time.Time) (Turn, error) {
	turn := Turn{Input: Normalize(raw)}

	rule, ok := Match(turn.Input, collection)
	if !ok {
		turn.Reply = FallbackReply
		turn.Fallback = true
		return turn, nil
	}

	turn.Matched = true
	turn.Intent = rule.Intent
	sess.RecordIntent(rule.Intent)

	reply, err := e.renderer.Render(rule, sess, now)
	if err != nil {
		turn.Reply = FallbackReply
		turn.Fallback = true
		return turn, err
	}

	turn.Reply = reply
	return turn, nil
}
