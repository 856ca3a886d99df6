// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// view.go - Rendering for the chat view.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rulechat/internal/session"
)

// timestampFormat matches the clock format used in rendered replies.
const timestampFormat = "03:04 PM"

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

// renderHeader renders the title row with the loaded rule summary.
func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("rulechat")
	meta := m.theme.HeaderMeta.Render(fmt.Sprintf("  %s | %d rule(s) | %s",
		m.cfg.User.Name,
		m.store.Snapshot().Len(),
		m.store.Source().Describe()))

	row := title + meta
	return m.theme.Header.Width(m.width).Render(row)
}

// renderInput renders the input row above the status bar.
func (m Model) renderInput() string {
	return m.theme.InputBox.Width(m.width).Render(m.input.View())
}

// renderStatusBar renders the bottom status row.
func (m Model) renderStatusBar() string {
	left := m.theme.StatusKey.Render(" "+m.cfg.Responses.Selection+" ") +
		m.theme.StatusValue.Render(fmt.Sprintf(" %d turn(s) ", m.turns))

	if m.statusMsg != "" {
		if m.statusMsg == "no match" {
			left += m.theme.StatusWarn.Render(" " + m.statusMsg + " ")
		} else {
			left += m.theme.StatusValue.Render(" " + m.statusMsg + " ")
		}
	}

	hints := m.theme.StatusValue.Render(" Enter send | C-l clear | C-c quit ")

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(hints)
	if gap < 1 {
		return m.theme.StatusBar.Width(m.width).Render(left)
	}
	filler := m.theme.StatusBar.Render(strings.Repeat(" ", gap))
	return left + filler + hints
}

// renderMessages renders the whole conversation for the viewport.
func (m Model) renderMessages() string {
	if len(m.messages) == 0 {
		return m.theme.HeaderMeta.Render("No messages yet. Say hello, or type /help.")
	}

	wrap := lipgloss.NewStyle().Width(m.viewport.Width)

	var b strings.Builder
	for i, msg := range m.messages {
		if i > 0 && !m.cfg.UI.CompactMode {
			b.WriteString("\n")
		}
		b.WriteString(wrap.Render(m.renderMessage(msg)))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMessage renders one message with its role label.
func (m Model) renderMessage(msg Message) string {
	stamp := ""
	if m.cfg.UI.ShowTimestamps {
		stamp = m.theme.Timestamp.Render("["+msg.Timestamp.Format(timestampFormat)+"] ")
	}

	switch msg.Role {
	case session.RoleUser:
		return stamp + m.theme.UserLabel.Render("you: ") + m.theme.UserText.Render(msg.Text)
	case session.RoleBot:
		text := m.theme.BotText.Render(msg.Text)
		if msg.Fallback {
			text = m.theme.FallbackText.Render(msg.Text)
		}
		return stamp + m.theme.BotLabel.Render("bot: ") + text
	default:
		return stamp + m.theme.SystemText.Render(msg.Text)
	}
}
