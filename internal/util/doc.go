// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small shared helpers for rulechat: atomic file
// writes for config and rules files, rune-safe truncation for display,
// and integer formatting.
package util
