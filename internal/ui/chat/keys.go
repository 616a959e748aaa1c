// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines the keyboard bindings for the chat screen.
type KeyMap struct {
	Submit     key.Binding
	NewLine    key.Binding
	Prompt     key.Binding
	SelectPrev key.Binding
	SelectNext key.Binding
	Listen     key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Dismiss    key.Binding
	Quit       key.Binding
}

// promptKeys maps alt+N to suggested prompt N-1.
var promptKeys = map[string]int{
	"alt+1": 0,
	"alt+2": 1,
	"alt+3": 2,
	"alt+4": 3,
}

// DefaultKeyMap returns the default bindings. Most terminals send the same
// bytes for Enter and Shift+Enter, so Alt+Enter and Ctrl+J also insert a
// newline.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		NewLine: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j", "shift+enter"),
			key.WithHelp("alt+enter", "new line"),
		),
		Prompt: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4"),
			key.WithHelp("alt+1-4", "use prompt"),
		),
		SelectPrev: key.NewBinding(
			key.WithKeys("ctrl+up"),
			key.WithHelp("ctrl+↑/↓", "select reply"),
		),
		SelectNext: key.NewBinding(
			key.WithKeys("ctrl+down"),
		),
		Listen: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "listen"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup/pgdn", "scroll"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "dismiss"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NewLine, k.SelectPrev, k.Listen, k.PageUp, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.NewLine, k.Prompt},
		{k.SelectPrev, k.Listen},
		{k.PageUp, k.Dismiss, k.Quit},
	}
}
