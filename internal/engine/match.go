// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// match.go - Input normalization and first-match-wins rule selection.
package engine

import (
	"strings"

	"github.com/jeranaias/rulechat/internal/rules"
)

// =============================================================================
// NORMALIZATION
// =============================================================================

// Normalize lowercases the input and trims surrounding whitespace.
// It runs once per input, before matching, and is idempotent:
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(input string) string {
	return strings.TrimSpace(strings.ToLower(input))
}

// =============================================================================
// MATCHING
// =============================================================================

// Match scans rules in collection order and, within each rule, patterns
// in declared order. A pattern matches when its lowercased form is a
// substring of the already-normalized input. The first rule with any
// matching pattern is returned immediately; remaining patterns and
// later rules are not examined.
//
// Returns ok=false when nothing matches or the collection is empty.
func Match(input string, collection rules.Collection) (rules.Rule, bool) {
	for _, rule := range collection {
		for _, pattern := range rule.Patterns {
			if strings.Contains(input, strings.ToLower(pattern)) {
				return rule, true
			}
		}
	}
	return rules.Rule{}, false
}
