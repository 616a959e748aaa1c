// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisualRows(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  int
	}{
		{"empty", "", 20, 1},
		{"one line", "hello", 20, 1},
		{"one short of width", strings.Repeat("a", 19), 20, 1},
		{"exact width keeps a cursor row", strings.Repeat("a", 20), 20, 2},
		{"wraps once", strings.Repeat("a", 21), 20, 2},
		{"long word broken", strings.Repeat("x", 45), 20, 3},
		{"word wrap", "aaaaaaaaaaa bbbbbbbbbbb ccccccccccc", 20, 3},
		{"words fit", "aaaa bbbb cccc", 20, 1},
		{"space at the edge", strings.Repeat("a", 19) + " b", 20, 2},
		{"logical lines", "a\nb\nc", 20, 3},
		{"wide runes", strings.Repeat("你", 15), 20, 2},
		{"no width", strings.Repeat("a", 100), 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, visualRows(tc.text, tc.width))
		})
	}
}

func TestComposer_HeightClamp(t *testing.T) {
	c := NewComposer(2, 5, DefaultKeyMap())
	c.SetWidth(20)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty uses min", "", 2},
		{"one line uses min", "hi", 2},
		{"grows with lines", "a\nb\nc", 3},
		{"grows with wrapping", strings.Repeat("x", 70), 4},
		{"word wrapped draft", "aaaaaaaaaaa bbbbbbbbbbb ccccccccccc", 3},
		{"line as wide as the composer", strings.Repeat("y", 20), 2},
		{"capped at max", strings.Repeat("line\n", 20), 5},
		{"shrinks back", "a", 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c.SetValue(tc.text)
			assert.Equal(t, tc.want, c.Height())
			assert.Equal(t, tc.text, c.Value())
		})
	}
}

func TestComposer_Bounds(t *testing.T) {
	c := NewComposer(0, -1, DefaultKeyMap())
	c.SetWidth(20)
	c.SetValue("a\nb")
	assert.Equal(t, 1, c.Height(), "invalid bounds collapse to a single row")

	c.SetBounds(3, 8)
	assert.Equal(t, 3, c.Height())
}

func TestComposer_Reset(t *testing.T) {
	c := NewComposer(2, 8, DefaultKeyMap())
	c.SetWidth(30)
	c.SetValue("a\nb\nc\nd")
	c.Reset()
	assert.Empty(t, c.Value())
	assert.Equal(t, 2, c.Height())
}
