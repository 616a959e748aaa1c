// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/ayane-chat/internal/model"
)

// ThinkingSpinner is shown while a reply streams.
var ThinkingSpinner = spinner.Spinner{
	Frames: []string{"|", "/", "-", "\\"},
	FPS:    time.Second / 10,
}

// Theme holds the styled components for the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Empty state
	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	Prompt       lipgloss.Style
	PromptNumber lipgloss.Style

	// Transcript
	AssistantBadge lipgloss.Style
	UserBadge      lipgloss.Style
	MessageBody    lipgloss.Style
	Selected       lipgloss.Style
	Stats          lipgloss.Style
	Interrupted    lipgloss.Style

	// Playback control
	ListenEnabled  lipgloss.Style
	ListenDisabled lipgloss.Style

	// Composer
	ComposerBox     lipgloss.Style
	ComposerFocused lipgloss.Style
	SendEnabled     lipgloss.Style
	SendDisabled    lipgloss.Style
	Placeholder     lipgloss.Style

	// Status
	Thinking lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
	HelpSep  lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginBottom(1)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Prompt = lipgloss.NewStyle().
		Foreground(TextPrimary).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.PromptNumber = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.AssistantBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.UserBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(Pink)

	t.MessageBody = lipgloss.NewStyle().
		PaddingLeft(2)

	t.Selected = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Purple)

	t.Stats = lipgloss.NewStyle().
		Foreground(TextMuted).
		PaddingLeft(2)

	t.Interrupted = lipgloss.NewStyle().
		Foreground(Rose).
		Italic(true).
		PaddingLeft(2)

	t.ListenEnabled = lipgloss.NewStyle().
		Foreground(Cyan).
		PaddingLeft(2)

	t.ListenDisabled = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		PaddingLeft(2)

	t.ComposerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.ComposerFocused = t.ComposerBox.
		BorderForeground(Purple)

	t.SendEnabled = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.SendDisabled = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Thinking = lipgloss.NewStyle().
		Foreground(Purple).
		Italic(true)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.HelpSep = lipgloss.NewStyle().
		Foreground(Overlay)
}

// BadgeFor renders the role badge, icon plus display name.
func (t *Theme) BadgeFor(role model.Role) string {
	label := role.Icon() + " " + role.DisplayName()
	if role == model.RoleUser {
		return t.UserBadge.Render(label)
	}
	return t.AssistantBadge.Render(label)
}

// SetSize updates the theme dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// ContentWidth returns the usable transcript width.
func (t *Theme) ContentWidth() int {
	w := t.Width - 4
	if w < 20 {
		return 20
	}
	return w
}
