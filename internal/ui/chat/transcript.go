// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/ayane-chat/internal/model"
	"github.com/jeranaias/ayane-chat/internal/playback"
)

// Empty state copy.
const (
	EmptyTitle    = "How can I help?"
	EmptySubtitle = "Ask Princess Ayane anything, or start with one of these:"
)

// Playback control labels.
const (
	ListenLabel  = "▶ Listen"
	PlayingLabel = "♪ Playing..."
)

// =============================================================================
// CLICK TARGETS
// =============================================================================

type targetKind int

const (
	targetPrompt targetKind = iota
	targetListen
)

// clickTarget maps a transcript content line to an action.
type clickTarget struct {
	line      int
	kind      targetKind
	prompt    int
	messageID string
}

// targetAt returns the target on content line, if any.
func targetAt(targets []clickTarget, line int) (clickTarget, bool) {
	for _, t := range targets {
		if t.line == line {
			return t, true
		}
	}
	return clickTarget{}, false
}

// lineBuilder tracks the line count of the content being built.
type lineBuilder struct {
	b     strings.Builder
	lines int
}

func (lb *lineBuilder) add(block string) {
	if lb.b.Len() > 0 {
		lb.b.WriteString("\n")
		lb.lines++
	}
	lb.b.WriteString(block)
	lb.lines += strings.Count(block, "\n")
}

// next returns the index of the line the next add will start on.
func (lb *lineBuilder) next() int {
	if lb.b.Len() == 0 {
		return 0
	}
	return lb.lines + 1
}

func (lb *lineBuilder) String() string {
	return lb.b.String()
}

// clipLines cuts every line of s to width columns. The viewport would
// otherwise wrap long code lines and shift the rows below them.
func clipLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if xansi.StringWidth(line) > width {
			lines[i] = xansi.Truncate(line, width, "…")
		}
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// RENDERING
// =============================================================================

// renderTranscript renders the viewport content and its click targets.
func (m *Model) renderTranscript() (string, []clickTarget) {
	if m.conversation.IsEmpty() {
		return m.renderEmptyState()
	}

	var lb lineBuilder
	var targets []clickTarget
	selectedID := m.selectedMessageID()

	for i, msg := range m.conversation.Messages {
		if i > 0 {
			lb.add("")
		}

		badge := m.theme.BadgeFor(msg.Role)
		if msg.ID == selectedID && m.pipeline != nil {
			badge = m.theme.Selected.Render(badge)
		}
		lb.add(badge)

		if body := m.renderBody(msg); body != "" {
			lb.add(m.theme.MessageBody.Render(body))
		}

		if !msg.IsAssistant() {
			continue
		}

		switch {
		case msg.IsStreaming:
			continue
		case msg.Failed:
			lb.add(m.theme.Interrupted.Render("⚠ reply interrupted"))
		case msg.Stats != nil:
			lb.add(m.theme.Stats.Render(formatStats(msg.Stats)))
		}

		if m.pipeline != nil && !msg.IsEmpty() {
			targets = append(targets, clickTarget{line: lb.next(), kind: targetListen, messageID: msg.ID})
			lb.add(m.renderListen(m.adapters.For(msg.ID)))
		}
	}

	return lb.String(), targets
}

// renderBody returns the rendered content of msg. Finished messages are
// cached by ID; the streaming message is rendered fresh every frame.
func (m *Model) renderBody(msg *model.Message) string {
	if msg.IsStreaming {
		if msg.IsEmpty() {
			return m.theme.Thinking.Render(m.spinner.View() + " Thinking...")
		}
		return m.renderer.Render(msg.Content) + m.theme.Thinking.Render(" ▍")
	}
	if cached, ok := m.renderCache[msg.ID]; ok {
		return cached
	}
	out := m.renderer.Render(msg.Content)
	m.renderCache[msg.ID] = out
	return out
}

func (m *Model) renderListen(a *playback.Adapter) string {
	if a.Enabled() {
		return m.theme.ListenEnabled.Render(ListenLabel)
	}
	return m.theme.ListenDisabled.Render(PlayingLabel)
}

func (m *Model) renderEmptyState() (string, []clickTarget) {
	var lb lineBuilder
	var targets []clickTarget

	lb.add(m.theme.Title.Render(EmptyTitle))
	lb.add(m.theme.Subtitle.Render(EmptySubtitle))
	lb.add("")
	for i, prompt := range SuggestedPrompts {
		targets = append(targets, clickTarget{line: lb.next(), kind: targetPrompt, prompt: i})
		number := m.theme.PromptNumber.Render(fmt.Sprintf("alt+%d", i+1))
		lb.add("  " + lipgloss.JoinHorizontal(lipgloss.Top, number, "  ", prompt))
	}
	return lb.String(), targets
}

// formatStats renders the per-reply statistics line.
func formatStats(s *model.Statistics) string {
	parts := []string{formatDuration(s.TotalDuration)}
	if s.TokenCount > 0 {
		parts = append(parts, fmt.Sprintf("%d tokens", s.TokenCount))
	}
	if s.TokensPerSecond > 0 {
		parts = append(parts, fmt.Sprintf("%.1f tok/s", s.TokensPerSecond))
	}
	if s.TimeToFirstTok > 0 {
		parts = append(parts, "first token "+formatDuration(s.TimeToFirstTok))
	}
	return strings.Join(parts, " · ")
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}
