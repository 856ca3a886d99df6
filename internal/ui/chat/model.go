// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// model.go - Bubble Tea model for the chat view.
package chat

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rulechat/internal/commands"
	"github.com/jeranaias/rulechat/internal/config"
	"github.com/jeranaias/rulechat/internal/engine"
	"github.com/jeranaias/rulechat/internal/rules"
	"github.com/jeranaias/rulechat/internal/session"
	"github.com/jeranaias/rulechat/internal/storage"
	"github.com/jeranaias/rulechat/internal/ui/styles"
)

// Layout constants: fixed rows reserved around the viewport.
const (
	headerHeight = 2
	inputHeight  = 2
	statusHeight = 1
)

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// Domain wiring, shared with the line REPL
	cfg         *config.Config
	store       *rules.Store
	eng         *engine.Engine
	sess        *session.Session
	transcripts *storage.TranscriptStore

	// Slash command dispatch
	registry *commands.Registry
	parser   *commands.Parser
	cmdCtx   *commands.Context

	// UI components
	viewport viewport.Model
	input    textinput.Model
	keyMap   KeyMap

	// Conversation
	messages  []Message
	turns     int
	statusMsg string
	quitting  bool
}

// New creates a chat view wired to the given domain objects.
// transcripts may be nil when storage is disabled.
func New(cfg *config.Config, store *rules.Store, sess *session.Session, eng *engine.Engine, transcripts *storage.TranscriptStore) Model {
	input := textinput.New()
	input.Placeholder = "Say something, or /help"
	input.Prompt = "you> "
	input.CharLimit = 512
	input.Focus()

	registry := commands.NewRegistry()
	cmdCtx := commands.NewContext(cfg, store, sess, transcripts, eng)
	cmdCtx.Registry = registry

	return Model{
		theme:       styles.New(cfg.UI.Theme),
		cfg:         cfg,
		store:       store,
		eng:         eng,
		sess:        sess,
		transcripts: transcripts,
		registry:    registry,
		parser:      commands.NewParser(registry),
		cmdCtx:      cmdCtx,
		input:       input,
		keyMap:      DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Messages returns the rendered conversation. Used by tests and by the
// exit summary.
func (m Model) Messages() []Message {
	return m.messages
}

// Turns returns the number of completed conversation turns.
func (m Model) Turns() int {
	return m.turns
}
