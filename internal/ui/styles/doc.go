// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the ayane chat TUI.

All colors are Lip Gloss AdaptiveColor values so the UI follows the
terminal's light or dark background.

# Palette (colors.go)

  - Purple - assistant badge, headings, strong text, inline code
  - Pink - user badge
  - Blue - emphasis
  - Cyan - info toasts, focus
  - Emerald - success
  - Amber - warnings
  - Rose - errors

# Theme (theme.go)

Theme groups the lipgloss styles used by the transcript, composer, empty
state, help line and toasts:

	theme := styles.NewTheme()
	badge := theme.BadgeFor(model.RoleAssistant)

# Spinner

ThinkingSpinner is the bubbles spinner shown while a reply streams.
*/
package styles
