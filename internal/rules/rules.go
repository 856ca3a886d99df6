// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// rules.go - Rule and Collection types for the rulechat matching engine.
package rules

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSourceUnavailable indicates the rules source could not be read
	// (missing file, permission denied, unreadable device).
	ErrSourceUnavailable = errors.New("rules source unavailable")

	// ErrMalformedRules indicates the source was readable but its content
	// does not have the required shape (bad syntax, missing or mistyped
	// intent/patterns/responses fields).
	ErrMalformedRules = errors.New("malformed rules")
)

// =============================================================================
// RULE TYPES
// =============================================================================

// Rule maps a named intent to its trigger patterns and response templates.
//
// Intent is a display label and is not required to be unique across the
// collection. Patterns and Responses keep their declared order: pattern
// order decides which pattern of a rule is checked first, response order
// decides which template the default selector picks.
type Rule struct {
	// Intent is the category label (e.g., "greet")
	Intent string `json:"intent" toml:"intent"`

	// Patterns are case-insensitive substring triggers
	Patterns []string `json:"patterns" toml:"patterns"`

	// Responses are templates with optional {name} and {time} placeholders
	Responses []string `json:"responses" toml:"responses"`
}

// HasResponses reports whether the rule can be rendered at all.
// A rule with no responses still matches; callers must guard rendering.
func (r Rule) HasResponses() bool {
	return len(r.Responses) > 0
}

// Collection is the ordered rule set active for matching. It is loaded
// as one atomic unit and treated as immutable once handed out: reload
// replaces the whole collection, never edits it in place.
type Collection []Rule

// Intents returns the intent labels in collection order, duplicates
// included. Used by the "list intents" directive.
func (c Collection) Intents() []string {
	intents := make([]string, 0, len(c))
	for _, rule := range c {
		intents = append(intents, rule.Intent)
	}
	return intents
}

// Len returns the number of rules in the collection.
func (c Collection) Len() int {
	return len(c)
}

// =============================================================================
// STRUCTURAL VALIDATION
// =============================================================================

// rawRule mirrors Rule with pointer fields so decoding can tell a field
// that is absent (or null) apart from one that is present but empty.
// The structural contract requires all three fields to be present;
// empty strings and empty arrays are accepted silently.
type rawRule struct {
	Intent    *string   `json:"intent" toml:"intent"`
	Patterns  *[]string `json:"patterns" toml:"patterns"`
	Responses *[]string `json:"responses" toml:"responses"`
}

// toRule converts a decoded rawRule into a Rule, enforcing field presence.
// The index is only used for error detail.
func (r rawRule) toRule(index int) (Rule, error) {
	if r.Intent == nil {
		return Rule{}, fmt.Errorf("%w: rule %d: missing field 'intent'", ErrMalformedRules, index)
	}
	if r.Patterns == nil {
		return Rule{}, fmt.Errorf("%w: rule %d (%s): missing field 'patterns'", ErrMalformedRules, index, *r.Intent)
	}
	if r.Responses == nil {
		return Rule{}, fmt.Errorf("%w: rule %d (%s): missing field 'responses'", ErrMalformedRules, index, *r.Intent)
	}
	return Rule{
		Intent:    *r.Intent,
		Patterns:  *r.Patterns,
		Responses: *r.Responses,
	}, nil
}

// buildCollection converts decoded raw rules into a Collection,
// preserving declaration order.
func buildCollection(raw []rawRule) (Collection, error) {
	collection := make(Collection, 0, len(raw))
	for i, rr := range raw {
		rule, err := rr.toRule(i)
		if err != nil {
			return nil, err
		}
		collection = append(collection, rule)
	}
	return collection, nil
}
