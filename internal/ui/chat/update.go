// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// update.go - Message handling for the chat view.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rulechat/internal/commands"
	"github.com/jeranaias/rulechat/internal/session"
	"github.com/jeranaias/rulechat/internal/storage"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := msg.Height - headerHeight - inputHeight - statusHeight
		if contentHeight < 1 {
			contentHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width, contentHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = contentHeight
		}
		m.input.Width = msg.Width - len(m.input.Prompt) - 2
		m.refreshViewport(true)
		return m, nil

	case RulesReloadedMsg:
		m.messages = append(m.messages, systemMessage(
			fmt.Sprintf("Rules reloaded: %d rule(s) active.", msg.Count)))
		m.refreshViewport(true)
		return m, nil

	case RulesReloadErrMsg:
		m.messages = append(m.messages, systemMessage(
			"Reload failed, keeping previous rules: "+msg.Err.Error()))
		m.refreshViewport(true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Clear):
			m.messages = nil
			m.statusMsg = ""
			m.refreshViewport(true)
			return m, nil

		case key.Matches(msg, m.keyMap.Submit):
			return m.submit()

		case key.Matches(msg, m.keyMap.PageUp):
			m.viewport.ViewUp()
			return m, nil

		case key.Matches(msg, m.keyMap.PageDown):
			m.viewport.ViewDown()
			return m, nil

		case key.Matches(msg, m.keyMap.Top):
			m.viewport.GotoTop()
			return m, nil

		case key.Matches(msg, m.keyMap.Bottom):
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles Enter: dispatch a slash command or run a turn.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.SetValue("")

	if commands.IsCommand(text) {
		return m.runCommand(text)
	}
	return m.runTurn(text)
}

// runCommand dispatches one slash command through the shared registry.
func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	result := m.registry.Execute(m.cmdCtx, m.parser.Parse(text))

	if result.Err != nil {
		// A failed result may carry its own wording in Output; render
		// the failure as a single notice either way.
		notice := result.Output
		if notice == "" {
			notice = result.Err.Error()
		}
		m.messages = append(m.messages, systemMessage("error: "+notice))
	} else {
		if result.ClearScreen {
			m.messages = nil
			m.statusMsg = ""
		}
		if result.Output != "" {
			m.messages = append(m.messages, systemMessage(result.Output))
		}
	}

	m.refreshViewport(true)

	if result.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// runTurn matches one line of input against the rules and appends both
// sides of the exchange to the conversation.
func (m Model) runTurn(text string) (tea.Model, tea.Cmd) {
	now := time.Now()
	turn, err := m.eng.RunTurn(text, m.sess, m.store.Snapshot(), now)

	m.sess.AppendHistory(session.RoleUser, text, now)
	m.sess.AppendHistory(session.RoleBot, turn.Reply, now)

	m.messages = append(m.messages,
		userMessage(text, now),
		botMessage(turn.Reply, turn.Fallback, now))
	if err != nil {
		m.messages = append(m.messages, systemMessage("note: "+err.Error()))
	}

	if turn.Fallback {
		m.statusMsg = "no match"
	} else {
		m.statusMsg = "intent: " + turn.Intent
	}
	m.turns++

	if m.transcripts != nil {
		// Best-effort: a storage hiccup must not break the conversation.
		if saveErr := m.transcripts.SaveTurn(storage.TurnRecord{
			SessionID: m.sess.ID,
			UserName:  m.sess.UserName,
			Input:     text,
			Reply:     turn.Reply,
			Intent:    turn.Intent,
			Fallback:  turn.Fallback,
			Timestamp: now,
		}); saveErr != nil {
			m.messages = append(m.messages, systemMessage("note: transcript not saved: "+saveErr.Error()))
		}
	}

	m.refreshViewport(true)
	return m, nil
}

// refreshViewport re-renders the conversation into the viewport.
func (m *Model) refreshViewport(gotoBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}
