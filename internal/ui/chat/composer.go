// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/ayane-chat/internal/ui/styles"
)

// ComposerPlaceholder is shown while the draft is empty.
const ComposerPlaceholder = "Send a message... (Shift+Enter for new line)"

// SuggestedPrompts are offered while the conversation is empty.
var SuggestedPrompts = [4]string{
	"What is artificial intelligence?",
	"How does photosynthesis work?",
	"Explain quantum computing",
	"Tell me a fun fact",
}

// Composer is the draft editor. Its height follows the wrapped content,
// clamped to [minHeight, maxHeight]; past the maximum the textarea scrolls.
type Composer struct {
	textarea  textarea.Model
	minHeight int
	maxHeight int
	width     int
}

// NewComposer creates a focused composer.
func NewComposer(minHeight, maxHeight int, keys KeyMap) Composer {
	ta := textarea.New()
	ta.Placeholder = ComposerPlaceholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys(keys.NewLine.Keys()...))
	ta.FocusedStyle.CursorLine = ta.FocusedStyle.CursorLine.UnsetBackground()
	ta.FocusedStyle.Placeholder = ta.FocusedStyle.Placeholder.Foreground(styles.TextMuted).Italic(true)
	ta.Focus()

	c := Composer{textarea: ta}
	c.SetBounds(minHeight, maxHeight)
	return c
}

// SetBounds changes the height bounds.
func (c *Composer) SetBounds(minHeight, maxHeight int) {
	if minHeight < 1 {
		minHeight = 1
	}
	if maxHeight < minHeight {
		maxHeight = minHeight
	}
	c.minHeight, c.maxHeight = minHeight, maxHeight
	c.clamp()
}

// SetWidth sets the editable width.
func (c *Composer) SetWidth(width int) {
	if width < 10 {
		width = 10
	}
	c.width = width
	c.textarea.SetWidth(width)
	c.clamp()
}

// Update forwards msg to the textarea and re-clamps the height.
func (c *Composer) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	c.clamp()
	return cmd
}

// Value returns the draft.
func (c Composer) Value() string {
	return c.textarea.Value()
}

// SetValue replaces the draft, leaving the cursor at the end.
func (c *Composer) SetValue(s string) {
	c.textarea.SetValue(s)
	c.clamp()
}

// Reset clears the draft.
func (c *Composer) Reset() {
	c.textarea.Reset()
	c.clamp()
}

// Height returns the current visible height in rows.
func (c Composer) Height() int {
	return c.textarea.Height()
}

// Focus focuses the textarea.
func (c *Composer) Focus() tea.Cmd {
	return c.textarea.Focus()
}

// View renders the textarea.
func (c Composer) View() string {
	return c.textarea.View()
}

func (c *Composer) clamp() {
	rows := visualRows(c.textarea.Value(), c.width)
	if rows < c.minHeight {
		rows = c.minHeight
	}
	if rows > c.maxHeight {
		rows = c.maxHeight
	}
	if rows != c.textarea.Height() {
		c.textarea.SetHeight(rows)
	}
}

// visualRows counts the rows the textarea draws for text at width. Lines
// wrap at word boundaries, words wider than the row are broken, and the
// last row keeps a cell for the cursor. A width of zero counts logical
// lines only.
func visualRows(text string, width int) int {
	rows := 0
	for _, line := range strings.Split(text, "\n") {
		if width <= 0 {
			rows++
			continue
		}
		rows += wrappedRows(line, width)
	}
	return rows
}

// wrappedRows counts the soft-wrapped rows of a single logical line.
func wrappedRows(line string, width int) int {
	rows := 1
	rowWidth, rowRunes := 0, 0
	wordWidth, wordRunes := 0, 0

	for _, r := range line {
		if unicode.IsSpace(r) {
			// A space ends the pending word; word and space move down
			// together when they do not fit.
			if rowWidth+wordWidth+1 > width {
				rows++
				rowWidth, rowRunes = 0, 0
			}
			rowWidth += wordWidth + 1
			rowRunes += wordRunes + 1
			wordWidth, wordRunes = 0, 0
			continue
		}

		rw := runewidth.RuneWidth(r)
		wordWidth += rw
		wordRunes++
		if wordWidth+rw > width {
			if rowRunes > 0 {
				rows++
			}
			rowWidth, rowRunes = wordWidth, wordRunes
			wordWidth, wordRunes = 0, 0
		}
	}

	if rowWidth+wordWidth >= width {
		rows++
	}
	return rows
}
