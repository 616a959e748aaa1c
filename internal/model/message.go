// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the persona name shown on the role badge.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "Prince Miruzu"
	case RoleAssistant:
		return "Princess Ayane"
	default:
		return string(r)
	}
}

// Icon returns the badge glyph for the role.
func (r Role) Icon() string {
	switch r {
	case RoleUser:
		return "👤"
	case RoleAssistant:
		return "🤖"
	default:
		return "•"
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	ID        string
	Role      Role
	Timestamp time.Time
	Content   string

	// IsStreaming is true while tokens are still arriving.
	IsStreaming bool

	// Failed marks a reply whose stream ended with a transport error.
	Failed bool

	Stats *Statistics

	// PERFORMANCE: strings.Builder avoids quadratic copies while streaming
	streamContent strings.Builder
}

// NewMessage creates a message with a fresh ID and timestamp.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Timestamp: time.Now(),
		Content:   content,
	}
}

// NewUserMessage creates a user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an empty assistant message ready to stream.
func NewAssistantMessage() *Message {
	msg := NewMessage(RoleAssistant, "")
	msg.IsStreaming = true
	return msg
}

// =============================================================================
// STREAMING
// =============================================================================

// AppendToken appends a streamed token. Tokens arriving after the stream was
// finalized are dropped so content never changes once frozen.
func (m *Message) AppendToken(token string) {
	if !m.IsStreaming || token == "" {
		return
	}
	m.streamContent.WriteString(token)
	m.Content = m.streamContent.String()
}

// FinalizeStream freezes the message and attaches statistics.
func (m *Message) FinalizeStream(stats *Statistics) {
	if !m.IsStreaming {
		return
	}
	m.IsStreaming = false
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	if stats != nil {
		m.Stats = stats
	}
}

// MarkFailed finalizes the message and flags it as interrupted.
// Whatever content arrived before the failure is kept.
func (m *Message) MarkFailed() {
	m.FinalizeStream(nil)
	m.Failed = true
}

// =============================================================================
// HELPERS
// =============================================================================

// IsAssistant reports whether the message is an assistant reply.
func (m *Message) IsAssistant() bool {
	return m.Role == RoleAssistant
}

// IsEmpty reports whether the message has no visible content.
func (m *Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

// =============================================================================
// STATISTICS
// =============================================================================

// Statistics holds timing information for one streamed reply.
type Statistics struct {
	StartTime       time.Time
	FirstTokenAt    time.Time
	TimeToFirstTok  time.Duration
	TotalDuration   time.Duration
	TokenCount      int
	TokensPerSecond float64
}

// NewStatistics starts the clock for a reply.
func NewStatistics() *Statistics {
	return &Statistics{StartTime: time.Now()}
}

// RecordFirstToken notes the arrival of the first token. Later calls are no-ops.
func (s *Statistics) RecordFirstToken() {
	if !s.FirstTokenAt.IsZero() {
		return
	}
	s.FirstTokenAt = time.Now()
	s.TimeToFirstTok = s.FirstTokenAt.Sub(s.StartTime)
}

// RecordToken counts one streamed chunk.
func (s *Statistics) RecordToken() {
	s.RecordFirstToken()
	s.TokenCount++
}

// Finalize stops the clock. A positive tokenCount reported by the backend
// replaces the locally counted chunks.
func (s *Statistics) Finalize(tokenCount int) {
	s.TotalDuration = time.Since(s.StartTime)
	if tokenCount > 0 {
		s.TokenCount = tokenCount
	}
	if s.TotalDuration > 0 {
		s.TokensPerSecond = float64(s.TokenCount) / s.TotalDuration.Seconds()
	}
}
