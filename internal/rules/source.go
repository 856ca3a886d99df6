// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// source.go - Rule source loading for JSON and TOML rule files.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// SOURCE INTERFACE
// =============================================================================

// Source loads a complete rule collection from somewhere. Load must not
// mutate any previously returned Collection: a failed load leaves every
// earlier result untouched, which is what makes Store.Reload safe.
type Source interface {
	// Load reads and decodes the full rule collection.
	Load() (Collection, error)

	// Describe returns a human-readable description of the source
	// for error messages and the status display.
	Describe() string
}

// =============================================================================
// FILE SOURCE
// =============================================================================

// FileSource loads rules from a JSON or TOML file on disk.
// The format is picked by file extension; anything that is not .toml
// is decoded as JSON, matching how the original rules file shipped.
type FileSource struct {
	// Path is the rules file location
	Path string
}

// NewFileSource creates a file-backed rule source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Describe returns the file path for display.
func (s *FileSource) Describe() string {
	return s.Path
}

// Load reads and decodes the rules file.
// Read failures are ErrSourceUnavailable; decode and shape failures are
// ErrMalformedRules. No semantic validation happens here: empty pattern
// lists, empty responses, duplicate intents and empty strings all load.
func (s *FileSource) Load() (Collection, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, s.Path, err)
	}

	if strings.EqualFold(filepath.Ext(s.Path), ".toml") {
		return decodeTOML(data, s.Path)
	}
	return decodeJSON(data, s.Path)
}

// =============================================================================
// DECODERS
// =============================================================================

// decodeJSON decodes the canonical format: a top-level array of rule
// records.
func decodeJSON(data []byte, path string) (Collection, error) {
	var raw []rawRule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRules, path, err)
	}
	return buildCollection(raw)
}

// tomlRuleFile is the TOML container shape: repeated [[rules]] tables.
type tomlRuleFile struct {
	Rules []rawRule `toml:"rules"`
}

// decodeTOML decodes the TOML format. A file without any [[rules]]
// tables is malformed rather than an empty collection - an empty rule
// set must be declared as an empty array in JSON, not by an empty file.
func decodeTOML(data []byte, path string) (Collection, error) {
	var file tomlRuleFile
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedRules, path, err)
	}
	if !md.IsDefined("rules") {
		return nil, fmt.Errorf("%w: %s: missing [[rules]] tables", ErrMalformedRules, path)
	}
	return buildCollection(file.Rules)
}
