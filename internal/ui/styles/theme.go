// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the rulechat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the chat view.
// It is built once from the configured theme name and shared by every
// render pass.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel    lipgloss.Style
	UserText     lipgloss.Style
	BotLabel     lipgloss.Style
	BotText      lipgloss.Style
	FallbackText lipgloss.Style
	SystemText   lipgloss.Style
	Timestamp    lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputPrompt lipgloss.Style
	InputBox    lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style
	StatusWarn  lipgloss.Style
}

// palette is the small set of colors a theme varies on.
type palette struct {
	accent    string
	user      string
	bot       string
	fallback  string
	system    string
	dim       string
	text      string
	statusBg  string
	statusFg  string
}

var darkPalette = palette{
	accent:   "39",  // cyan
	user:     "213", // pink
	bot:      "82",  // bright green
	fallback: "214", // orange
	system:   "75",  // blue
	dim:      "242",
	text:     "252",
	statusBg: "236",
	statusFg: "250",
}

var lightPalette = palette{
	accent:   "25",  // darker blue
	user:     "125", // magenta
	bot:      "28",  // green
	fallback: "130", // brown/orange
	system:   "26",  // blue
	dim:      "245",
	text:     "235",
	statusBg: "254",
	statusFg: "238",
}

// New builds a theme from its configured name: "dark", "light", or
// "auto". Auto follows the terminal's reported background.
func New(name string) *Theme {
	isDark := true
	switch name {
	case "light":
		isDark = false
	case "auto":
		isDark = termenv.HasDarkBackground()
	}

	p := darkPalette
	if !isDark {
		p = lightPalette
	}

	return &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),

		Header: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color(p.dim)),
		HeaderTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.accent)),
		HeaderMeta: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.dim)),

		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.user)),
		UserText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.text)),
		BotLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.bot)),
		BotText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.text)),
		FallbackText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.fallback)),
		SystemText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.system)),
		Timestamp: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.dim)),

		InputPrompt: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(p.accent)),
		InputBox: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color(p.dim)),

		StatusBar: lipgloss.NewStyle().
			Background(lipgloss.Color(p.statusBg)).
			Foreground(lipgloss.Color(p.statusFg)),
		StatusKey: lipgloss.NewStyle().
			Background(lipgloss.Color(p.statusBg)).
			Foreground(lipgloss.Color(p.accent)).
			Bold(true),
		StatusValue: lipgloss.NewStyle().
			Background(lipgloss.Color(p.statusBg)).
			Foreground(lipgloss.Color(p.statusFg)),
		StatusWarn: lipgloss.NewStyle().
			Background(lipgloss.Color(p.statusBg)).
			Foreground(lipgloss.Color(p.fallback)).
			Bold(true),
	}
}
