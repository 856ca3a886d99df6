// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the chat front ends.
package commands

import (
	"github.com/jeranaias/rulechat/internal/config"
	"github.com/jeranaias/rulechat/internal/engine"
	"github.com/jeranaias/rulechat/internal/rules"
	"github.com/jeranaias/rulechat/internal/session"
	"github.com/jeranaias/rulechat/internal/storage"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/history [n]")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) Result

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string

	// Completer for custom completion
	Completer func() []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeEnum                  // One of predefined values
	ArgTypeIntent                // Intent name from the loaded rule set
	ArgTypeConfig                // Config key
)

// =============================================================================
// COMMAND RESULT
// =============================================================================

// Result is what a command handler returns to the front end.
// Front ends decide how to render Output (plain text for the REPL,
// a system message for the TUI).
type Result struct {
	// Output is text to display to the user
	Output string

	// Quit signals the front end to exit
	Quit bool

	// ClearScreen signals the front end to clear its display
	ClearScreen bool

	// Err is set when the command failed
	Err error
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Execute runs a parsed command against the given context.
// Unknown commands and argument validation failures produce an error Result
// rather than a Go error, so front ends can display them uniformly.
func (r *Registry) Execute(ctx *Context, parsed ParseResult) Result {
	if parsed.Command == nil {
		return Result{
			Output: "Unknown command: " + parsed.CommandName + " (try /help)",
			Err:    &ValidationError{Command: parsed.CommandName, Message: "unknown command"},
		}
	}
	if err := ValidateArgs(parsed.Command, parsed.Args); err != nil {
		return Result{Output: err.Error(), Err: err}
	}
	return parsed.Command.Handler(ctx, parsed.Args)
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation commands
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Usage:       "/help [category]",
		Args: []ArgDef{
			{
				Name:        "category",
				Required:    false,
				Type:        ArgTypeEnum,
				Values:      []string{"navigation", "conversation", "rules", "settings"},
				Description: "Help category",
			},
		},
		Category: "Navigation",
		Handler:  handleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit rulechat",
		Category:    "Navigation",
		Handler:     handleQuit,
	})

	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear the screen",
		Category:    "Navigation",
		Handler:     handleClear,
	})

	// Rule commands
	r.Register(&Command{
		Name:        "/reload",
		Aliases:     []string{"/r"},
		Description: "Reload the rule file from disk",
		Category:    "Rules",
		Handler:     handleReload,
	})

	r.Register(&Command{
		Name:        "/intents",
		Aliases:     []string{"/list"},
		Description: "List loaded intents",
		Category:    "Rules",
		Handler:     handleIntents,
	})

	// Conversation commands
	r.Register(&Command{
		Name:        "/history",
		Description: "Show recent conversation history",
		Usage:       "/history [n]",
		Args: []ArgDef{
			{Name: "n", Required: false, Type: ArgTypeString, Description: "Number of entries to show"},
		},
		Category: "Conversation",
		Handler:  handleHistory,
	})

	r.Register(&Command{
		Name:        "/sessions",
		Description: "List saved transcript sessions",
		Category:    "Conversation",
		Handler:     handleSessions,
	})

	r.Register(&Command{
		Name:        "/search",
		Description: "Search saved transcripts",
		Usage:       "/search <query>",
		Args: []ArgDef{
			{Name: "query", Required: true, Type: ArgTypeString, Description: "Text to search for"},
		},
		Category: "Conversation",
		Handler:  handleSearch,
	})

	// Settings commands
	r.Register(&Command{
		Name:        "/config",
		Description: "Show or edit configuration",
		Usage:       "/config [key] [value]",
		Args: []ArgDef{
			{Name: "key", Required: false, Type: ArgTypeConfig, Description: "Config key to show/set"},
			{Name: "value", Required: false, Type: ArgTypeString, Description: "New value"},
		},
		Category: "Settings",
		Handler:  handleConfig,
	})

	r.Register(&Command{
		Name:        "/status",
		Description: "Show detailed status information",
		Category:    "Settings",
		Handler:     handleStatus,
	})
}

// =============================================================================
// HANDLER INDIRECTION
// =============================================================================

func handleHelp(ctx *Context, args []string) Result {
	return HandleHelp(ctx, args)
}

func handleQuit(ctx *Context, args []string) Result {
	return HandleQuit(ctx, args)
}

func handleClear(ctx *Context, args []string) Result {
	return HandleClear(ctx, args)
}

func handleReload(ctx *Context, args []string) Result {
	return HandleReload(ctx, args)
}

func handleIntents(ctx *Context, args []string) Result {
	return HandleIntents(ctx, args)
}

func handleHistory(ctx *Context, args []string) Result {
	return HandleHistory(ctx, args)
}

func handleSessions(ctx *Context, args []string) Result {
	return HandleSessions(ctx, args)
}

func handleSearch(ctx *Context, args []string) Result {
	return HandleSearch(ctx, args)
}

func handleConfig(ctx *Context, args []string) Result {
	return HandleConfig(ctx, args)
}

func handleStatus(ctx *Context, args []string) Result {
	return HandleStatus(ctx, args)
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application state for command handlers.
// It follows the dependency injection pattern, allowing handlers to access
// services without direct coupling to the application structure.
//
// All fields are optional and may be nil - handlers should check before use.
type Context struct {
	// Config provides access to application configuration
	Config *config.Config

	// Store holds the current rule collection
	Store *rules.Store

	// Session is the active conversation state
	Session *session.Session

	// Transcripts handles conversation persistence
	Transcripts *storage.TranscriptStore

	// Engine processes conversation turns
	Engine *engine.Engine

	// Registry backs the /help output. Set by the front end.
	Registry *Registry
}

// NewContext creates a new command context with the given dependencies.
// All parameters are optional and can be nil.
func NewContext(cfg *config.Config, store *rules.Store, sess *session.Session, transcripts *storage.TranscriptStore, eng *engine.Engine) *Context {
	return &Context{
		Config:      cfg,
		Store:       store,
		Session:     sess,
		Transcripts: transcripts,
		Engine:      eng,
	}
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Display text (may include formatting)
	Display string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int
}
