// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/jeranaias/ayane-chat/internal/llm"
)

// =============================================================================
// STREAMING BUFFER
// =============================================================================

// StreamingBuffer collects tokens between redraws. Tokens are written by
// Update as they arrive and flushed into the conversation on the next
// allowed frame, so content only ever grows.
type StreamingBuffer struct {
	mu         sync.Mutex
	buffer     strings.Builder
	tokenCount int
}

// NewStreamingBuffer creates an empty buffer.
func NewStreamingBuffer() *StreamingBuffer {
	return &StreamingBuffer{}
}

// Write appends a token.
func (sb *StreamingBuffer) Write(token string) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buffer.WriteString(token)
	sb.tokenCount++
}

// Flush returns and clears the buffered content.
func (sb *StreamingBuffer) Flush() (string, bool) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	if sb.buffer.Len() == 0 {
		return "", false
	}
	content := sb.buffer.String()
	sb.buffer.Reset()
	sb.tokenCount = 0
	return content, true
}

// Pending returns the number of buffered tokens.
func (sb *StreamingBuffer) Pending() int {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	return sb.tokenCount
}

// Reset drops buffered content.
func (sb *StreamingBuffer) Reset() {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	sb.buffer.Reset()
	sb.tokenCount = 0
}

// =============================================================================
// FRAME PACING
// =============================================================================

// streamFrameInterval caps redraws during streaming at ~30fps.
const streamFrameInterval = time.Second / 30

// StreamTickMsg flushes buffered tokens that arrived between frames.
type StreamTickMsg struct {
	Time time.Time
}

func streamTickCmd() tea.Cmd {
	return tea.Tick(streamFrameInterval, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

func newRedrawLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(streamFrameInterval), 1)
}

// =============================================================================
// PROGRAM SENDER
// =============================================================================

// Sender delivers messages into the running program. *tea.Program
// satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// senderRef is shared by pointer so the program's copy of Model and the
// caller's copy see the same sender.
type senderRef struct {
	mu sync.Mutex
	s  Sender
}

func (r *senderRef) set(s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.s = s
}

// Send forwards msg, dropping it when no program is attached.
func (r *senderRef) Send(msg tea.Msg) {
	r.mu.Lock()
	s := r.s
	r.mu.Unlock()
	if s != nil {
		s.Send(msg)
	}
}

// AttachProgram routes streamed tokens into p.
func (m Model) AttachProgram(p Sender) {
	m.sender.set(p)
}

// =============================================================================
// STREAM COMMAND
// =============================================================================

// streamCmd streams the reply for messageID. Tokens are sent to the program
// as they arrive; the returned message ends the turn.
func (m *Model) streamCmd(messageID string) tea.Cmd {
	streamer := m.streamer
	sender := m.sender
	parent := m.life.context()
	timeout := m.cfg.Chat.Timeout
	req := llm.Request{
		Model:        m.cfg.Chat.Model,
		SystemPrompt: m.cfg.Chat.SystemPrompt,
		Messages:     llm.FromHistory(m.conversation.History()),
	}

	return func() tea.Msg {
		if streamer == nil {
			return StreamErrorMsg{MessageID: messageID, Err: llm.ErrUnavailable}
		}

		ctx := parent
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(parent, timeout)
			defer cancel()
		}

		start := time.Now()
		completion := 0
		err := streamer.Stream(ctx, req, func(chunk llm.Chunk) {
			if chunk.Content != "" {
				sender.Send(StreamTokenMsg{MessageID: messageID, Token: chunk.Content})
			}
			if chunk.Done {
				completion = chunk.CompletionTokens
			}
		})
		if err != nil {
			log.Error("stream failed", "message", messageID, "provider", streamer.Name(), "err", err)
			return StreamErrorMsg{MessageID: messageID, Err: err}
		}

		log.Debug("stream complete", "message", messageID, "provider", streamer.Name(), "duration", time.Since(start), "tokens", completion)
		return StreamCompleteMsg{MessageID: messageID, CompletionTokens: completion}
	}
}
