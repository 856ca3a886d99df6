// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine implements rulechat's turn pipeline: input
// normalization, rule matching, and response rendering.
//
// Matching is deterministic substring containment - no scoring, no
// ranking, no word boundaries. The first rule in collection order with
// any pattern contained in the normalized input wins, so "hi" matching
// inside "this is great" is expected behavior, not a bug.
//
// # Key Types
//
//   - Engine: combines matching and rendering into ProcessTurn
//   - Renderer: expands {name} and {time} placeholders in templates
//   - Selector: response selection seam (first, random, round-robin)
//   - Turn: the full outcome of one processed input
//
// # Usage
//
//	eng := engine.New(engine.FirstSelector{})
//	reply, err := eng.ProcessTurn("Hi there", sess, store.Snapshot(), time.Now())
//
// A turn never aborts the conversation: unmatched input and rules with
// no response templates both degrade to the fixed fallback reply, the
// latter with an ErrEmptyTemplate the caller can log.
package engine
