// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"github.com/charmbracelet/glamour/ansi"
	glamourStyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ayane-chat/internal/ui/styles"
)

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }
func uintPtr(u uint) *uint       { return &u }

// StyleConfig returns the glamour style for chat messages. It starts from
// glamour's dark style so anything not listed here keeps the base look.
func StyleConfig(dark bool, codeTheme string) ansi.StyleConfig {
	cfg := glamourStyles.DarkStyleConfig
	color := func(c lipgloss.AdaptiveColor) *string { return stringPtr(styles.Hex(c, dark)) }

	cfg.Document.Margin = uintPtr(0)
	cfg.Document.BlockPrefix = ""
	cfg.Document.BlockSuffix = ""
	cfg.Document.Color = color(styles.TextPrimary)

	// Headings: h1 is a banner, h2..h4 step down, h5/h6 use the base heading.
	cfg.Heading.Color = color(styles.Purple)
	cfg.Heading.Bold = boolPtr(true)

	cfg.H1 = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
		Prefix:          " ",
		Suffix:          " ",
		Color:           color(styles.TextInverse),
		BackgroundColor: color(styles.Purple),
		Bold:            boolPtr(true),
	}}
	cfg.H2 = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
		Color:     color(styles.Purple),
		Bold:      boolPtr(true),
		Underline: boolPtr(true),
	}}
	cfg.H3 = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
		Color: color(styles.Blue),
		Bold:  boolPtr(true),
	}}
	cfg.H4 = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
		Color:  color(styles.TextSecondary),
		Bold:   boolPtr(true),
		Italic: boolPtr(true),
	}}
	cfg.H5 = ansi.StyleBlock{}
	cfg.H6 = ansi.StyleBlock{}

	cfg.Strong = ansi.StylePrimitive{
		Color: color(styles.Purple),
		Bold:  boolPtr(true),
	}
	cfg.Emph = ansi.StylePrimitive{
		Color:  color(styles.Blue),
		Italic: boolPtr(true),
	}

	cfg.Code = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
		Color:           color(styles.Purple),
		BackgroundColor: color(styles.CodeBg),
	}}

	// Code blocks nested in lists or quotes are still rendered by glamour.
	cfg.CodeBlock.Chroma = nil
	cfg.CodeBlock.Theme = codeTheme
	cfg.CodeBlock.Margin = uintPtr(2)

	cfg.List.LevelIndent = 2
	cfg.Item.BlockPrefix = "• "
	cfg.Enumeration.BlockPrefix = ". "

	return cfg
}
