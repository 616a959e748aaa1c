// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/jeranaias/ayane-chat/internal/model"
	"github.com/jeranaias/ayane-chat/internal/playback"
	"github.com/jeranaias/ayane-chat/internal/tts"
)

// =============================================================================
// SELECTION
// =============================================================================

// playable returns the assistant messages that have a Listen control.
func (m *Model) playable() []*model.Message {
	var out []*model.Message
	for _, msg := range m.conversation.AssistantMessages() {
		if !msg.IsStreaming && !msg.IsEmpty() {
			out = append(out, msg)
		}
	}
	return out
}

// selectedMessageID returns the selected assistant message, defaulting to
// the newest.
func (m *Model) selectedMessageID() string {
	msgs := m.playable()
	if len(msgs) == 0 {
		return ""
	}
	if m.selected < 0 || m.selected >= len(msgs) {
		return msgs[len(msgs)-1].ID
	}
	return msgs[m.selected].ID
}

// moveSelection shifts the selection by delta, clamped to the list.
func (m *Model) moveSelection(delta int) {
	msgs := m.playable()
	if len(msgs) == 0 {
		return
	}
	cur := m.selected
	if cur < 0 || cur >= len(msgs) {
		cur = len(msgs) - 1
	}
	cur += delta
	if cur < 0 {
		cur = 0
	}
	if cur >= len(msgs)-1 {
		cur = -1
	}
	m.selected = cur
}

// =============================================================================
// PLAYBACK
// =============================================================================

// Adapter returns the playback adapter of an assistant message.
func (m Model) Adapter(messageID string) *playback.Adapter {
	return m.adapters.For(messageID)
}

// play starts playback of messageID. It returns nil when playback is off,
// the message cannot be played, or its adapter is already playing.
func (m *Model) play(messageID string) tea.Cmd {
	if m.pipeline == nil {
		return nil
	}
	msg := m.conversation.GetMessage(messageID)
	if msg == nil || !msg.IsAssistant() || msg.IsStreaming || msg.IsEmpty() {
		return nil
	}

	adapter := m.adapters.For(messageID)
	if !adapter.Begin() {
		log.Debug("playback rejected, already playing", "message", messageID)
		return nil
	}
	m.refresh(false)

	pipeline := m.pipeline
	ctx := m.life.context()
	req := tts.Request{Text: msg.Content, VoiceID: m.cfg.Speech.VoiceID}

	return func() tea.Msg {
		return PlaybackDoneMsg{MessageID: messageID, Err: pipeline.Speak(ctx, req)}
	}
}

func (m Model) handlePlaybackDone(msg PlaybackDoneMsg) (tea.Model, tea.Cmd) {
	m.adapters.For(msg.MessageID).End(msg.Err)
	m.refresh(false)

	if msg.Err == nil {
		return m, nil
	}
	log.Error("speech failed", "message", msg.MessageID, "err", msg.Err)
	m.toasts.AddError(playback.FailureNotice)
	cmd := m.toastCmd()
	return m, cmd
}
