// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for rulechat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.rulechat/config.toml
//   - ~/.rulechat/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/rulechat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rulechat configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// User identity used for sessions
	User UserConfig `toml:"user" json:"user"`

	// Rule file configuration
	Rules RulesConfig `toml:"rules" json:"rules"`

	// Response rendering configuration
	Responses ResponsesConfig `toml:"responses" json:"responses"`

	// Transcript storage configuration
	Storage StorageConfig `toml:"storage" json:"storage"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// UserConfig identifies the person on the other side of the conversation.
type UserConfig struct {
	// ID is a stable identifier for the user. If not set, it is derived
	// from the system username.
	ID string `toml:"id" json:"id"`
	// Name is the display name substituted for the {name} placeholder.
	Name string `toml:"name" json:"name"`
}

// RulesConfig contains rule file loading configuration.
type RulesConfig struct {
	// Path is the location of the rule file (.json or .toml).
	Path string `toml:"path" json:"path"`
	// Watch enables automatic reloading when the rule file changes on disk.
	Watch bool `toml:"watch" json:"watch"`
	// DebounceMs is the settle window for file change events in milliseconds.
	// Editors often produce several events per save; changes inside the
	// window coalesce into a single reload.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms"`
}

// ResponsesConfig contains response selection configuration.
type ResponsesConfig struct {
	// Selection picks how a response is chosen from a rule's response list:
	// "first", "random", or "round-robin".
	Selection string `toml:"selection" json:"selection"`
	// RandomSeed seeds the random selector for reproducible runs.
	// Zero means seed from the current time.
	RandomSeed int64 `toml:"random_seed" json:"random_seed"`
}

// StorageConfig contains transcript persistence configuration.
type StorageConfig struct {
	// Transcripts enables saving conversation turns to the local database.
	Transcripts bool `toml:"transcripts" json:"transcripts"`
	// DatabasePath is the transcript database location
	// (empty = default ~/.rulechat/transcripts.db).
	DatabasePath string `toml:"database_path" json:"database_path"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowTimestamps displays per-message timestamps in the chat view
	ShowTimestamps bool `toml:"show_timestamps" json:"show_timestamps"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		User: UserConfig{
			ID:   "",
			Name: "friend",
		},

		Rules: RulesConfig{
			Path:       "", // resolved to ~/.rulechat/rules.json by SetDefaults
			Watch:      true,
			DebounceMs: 250,
		},

		Responses: ResponsesConfig{
			Selection:  "first",
			RandomSeed: 0,
		},

		Storage: StorageConfig{
			Transcripts:  false,
			DatabasePath: "",
		},

		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: false,
			CompactMode:    false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the rulechat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rulechat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultRulesPath returns the default rule file location.
func DefaultRulesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rules.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// SECURITY: Config files should be 0600 (owner read/write only).
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err // File doesn't exist or not accessible
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finalize(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finalize(cfg)
			}
		}
	}

	// No config file on disk: finalize the defaults.
	cfg, err = finalize(cfg)
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finalize applies env overrides, migration, defaults, and validation.
func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	if err := cfg.SetDefaults(); err != nil {
		return nil, fmt.Errorf("config defaults failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Log warning but don't fail - permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finalize(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// SECURITY: Creates config files with 0600 permissions (owner read/write only).
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// SECURITY: Ensure permissions are correct even if file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	// Write header comment
	fmt.Fprintln(file, "# rulechat configuration file")
	fmt.Fprintln(file, "# Generated by rulechat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureConfigDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidSelections lists the accepted response selection strategies.
var ValidSelections = []string{"first", "random", "round-robin"}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Validate response selection strategy
	validSelections := map[string]bool{"first": true, "random": true, "round-robin": true}
	if !validSelections[strings.ToLower(c.Responses.Selection)] {
		errs = append(errs, ValidationError{
			Field:   "responses.selection",
			Message: fmt.Sprintf("invalid selection '%s', must be one of: %s", c.Responses.Selection, strings.Join(ValidSelections, ", ")),
		})
	}

	// Validate rule file path and extension
	if c.Rules.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "rules.path",
			Message: "rule file path must not be empty",
		})
	} else {
		ext := strings.ToLower(filepath.Ext(c.Rules.Path))
		if ext != ".json" && ext != ".toml" {
			errs = append(errs, ValidationError{
				Field:   "rules.path",
				Message: fmt.Sprintf("unsupported rule file extension '%s', must be .json or .toml", ext),
			})
		}
	}

	// Validate debounce window (0 disables debouncing; cap keeps reloads timely)
	if c.Rules.DebounceMs < 0 || c.Rules.DebounceMs > 10000 {
		errs = append(errs, ValidationError{
			Field:   "rules.debounce_ms",
			Message: fmt.Sprintf("debounce_ms must be 0-10000, got %d", c.Rules.DebounceMs),
		})
	}

	// Validate user name (substituted into responses, must not be blank)
	if strings.TrimSpace(c.User.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "user.name",
			Message: "user name must not be blank",
		})
	}

	// Validate UI theme
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value configuration fields.
func (c *Config) SetDefaults() error {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}

	// User defaults: derive the ID from the system username when unset.
	if c.User.ID == "" {
		if u := os.Getenv("USER"); u != "" {
			c.User.ID = u
		} else if u := os.Getenv("USERNAME"); u != "" {
			c.User.ID = u
		} else {
			c.User.ID = "local"
		}
	}
	if c.User.Name == "" {
		c.User.Name = defaults.User.Name
	}

	// Rules defaults
	if c.Rules.Path == "" {
		path, err := DefaultRulesPath()
		if err != nil {
			return err
		}
		c.Rules.Path = path
	}
	if c.Rules.DebounceMs == 0 {
		c.Rules.DebounceMs = defaults.Rules.DebounceMs
	}

	// Responses defaults
	if c.Responses.Selection == "" {
		c.Responses.Selection = defaults.Responses.Selection
	}

	// Storage defaults: DatabasePath stays empty here; the storage layer
	// resolves its own default so ad-hoc opens work without a config.

	// UI defaults
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}

	return nil
}

// Migrate handles migration from old configuration formats to new ones.
func (c *Config) Migrate() error {
	// Normalize selection spellings from earlier releases
	switch strings.ToLower(c.Responses.Selection) {
	case "roundrobin", "round_robin":
		c.Responses.Selection = "round-robin"
	case "fixed":
		c.Responses.Selection = "first"
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RULECHAT_RULES: overrides rules.path
//   - RULECHAT_USER_ID: overrides user.id
//   - RULECHAT_USER_NAME: overrides user.name
//   - RULECHAT_SELECTION: overrides responses.selection
//   - RULECHAT_WATCH: set to "1" or "true" to enable rule file watching
//   - RULECHAT_TRANSCRIPTS: set to "0" or "false" to disable transcript storage
//   - RULECHAT_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	// RULECHAT_RULES
	if path := os.Getenv("RULECHAT_RULES"); path != "" {
		c.Rules.Path = path
	}

	// RULECHAT_USER_ID
	if id := os.Getenv("RULECHAT_USER_ID"); id != "" {
		c.User.ID = id
	}

	// RULECHAT_USER_NAME
	if name := os.Getenv("RULECHAT_USER_NAME"); name != "" {
		c.User.Name = name
	}

	// RULECHAT_SELECTION
	if sel := os.Getenv("RULECHAT_SELECTION"); sel != "" {
		c.Responses.Selection = sel
	}

	// RULECHAT_WATCH
	if watch := os.Getenv("RULECHAT_WATCH"); watch != "" {
		c.Rules.Watch = watch == "1" || strings.ToLower(watch) == "true"
	}

	// RULECHAT_TRANSCRIPTS
	if transcripts := os.Getenv("RULECHAT_TRANSCRIPTS"); transcripts != "" {
		c.Storage.Transcripts = transcripts == "1" || strings.ToLower(transcripts) == "true"
	}

	// RULECHAT_THEME
	if theme := os.Getenv("RULECHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "responses.selection").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, return the value
		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		// Otherwise, navigate into the struct
		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation (e.g., "responses.selection").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})

		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		// If this is the last part, set the value
		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}

	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	// Handle string input with type conversion
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal := strVal == "1" || strings.ToLower(strVal) == "true" || strings.ToLower(strVal) == "yes"
			field.SetBool(boolVal)
			return nil
		}
	}

	// Direct assignment for matching types
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}

	// Type conversion for compatible types
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"user.id",
		"user.name",
		"rules.path",
		"rules.watch",
		"rules.debounce_ms",
		"responses.selection",
		"responses.random_seed",
		"storage.transcripts",
		"storage.database_path",
		"ui.theme",
		"ui.show_timestamps",
		"ui.compact_mode",
	}
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the config for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

