// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rules provides the rule collection that drives rulechat's
// intent matching, including loading, validation, atomic hot reload,
// and file watching.
//
// # Key Types
//
//   - Rule: intent label with trigger patterns and response templates
//   - Collection: ordered, immutable set of rules loaded as one unit
//   - Source: seam for "load rules from somewhere" (FileSource for disk)
//   - Store: owner of the active Collection with atomic snapshot swap
//   - Watcher: fsnotify-driven auto reload of a rules file
//
// # Usage
//
// Load rules and serve snapshots:
//
//	store, err := rules.NewStore(rules.NewFileSource(path))
//	snap := store.Snapshot()
//
// Reload keeps the old collection on failure:
//
//	if _, err := store.Reload(); err != nil {
//	    // previous snapshot still active
//	}
//
// # File Formats
//
// JSON rules files are a top-level array of objects with intent,
// patterns, and responses fields. TOML rules files use [[rules]]
// tables with the same three fields. A missing or mistyped field is
// ErrMalformedRules; an unreadable file is ErrSourceUnavailable.
package rules
