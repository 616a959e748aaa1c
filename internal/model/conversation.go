// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is an ordered, append-only list of messages.
// Messages are never removed or reordered during a session.
type Conversation struct {
	ID        string
	CreatedAt time.Time
	Messages  []*Message
}

// Turn is the role/content pair sent to a chat backend.
type Turn struct {
	Role    Role
	Content string
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Messages:  make([]*Message, 0, 16),
	}
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// AddMessage appends a message.
func (c *Conversation) AddMessage(msg *Message) {
	c.Messages = append(c.Messages, msg)
}

// AddUserMessage appends a user message and returns it.
func (c *Conversation) AddUserMessage(content string) *Message {
	msg := NewUserMessage(content)
	c.AddMessage(msg)
	return msg
}

// AddAssistantMessage appends an empty streaming assistant message and
// returns it. Any reply still marked as streaming is finalized first so at
// most one message is in progress.
func (c *Conversation) AddAssistantMessage() *Message {
	if prev := c.InProgress(); prev != nil {
		prev.FinalizeStream(nil)
	}
	msg := NewAssistantMessage()
	c.AddMessage(msg)
	return msg
}

// GetLastMessage returns the newest message or nil.
func (c *Conversation) GetLastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

// GetMessage returns the message with the given ID or nil.
func (c *Conversation) GetMessage(id string) *Message {
	for _, msg := range c.Messages {
		if msg.ID == id {
			return msg
		}
	}
	return nil
}

// InProgress returns the message currently receiving tokens, if any.
func (c *Conversation) InProgress() *Message {
	last := c.GetLastMessage()
	if last != nil && last.IsStreaming {
		return last
	}
	return nil
}

// AppendToLast appends a token to the in-progress message.
func (c *Conversation) AppendToLast(token string) {
	if msg := c.InProgress(); msg != nil {
		msg.AppendToken(token)
	}
}

// FinalizeLast freezes the in-progress message.
func (c *Conversation) FinalizeLast(stats *Statistics) {
	if msg := c.InProgress(); msg != nil {
		msg.FinalizeStream(stats)
	}
}

// FailLast freezes the in-progress message and marks it interrupted.
func (c *Conversation) FailLast() {
	if msg := c.InProgress(); msg != nil {
		msg.MarkFailed()
	}
}

// =============================================================================
// QUERIES
// =============================================================================

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.Messages)
}

// IsEmpty reports whether the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// AssistantMessages returns assistant replies in order.
func (c *Conversation) AssistantMessages() []*Message {
	out := make([]*Message, 0, len(c.Messages)/2+1)
	for _, msg := range c.Messages {
		if msg.IsAssistant() {
			out = append(out, msg)
		}
	}
	return out
}

// History returns the role/content pairs to send to a chat backend, in
// insertion order. The in-progress reply and empty failed replies are
// skipped.
func (c *Conversation) History() []Turn {
	turns := make([]Turn, 0, len(c.Messages))
	for _, msg := range c.Messages {
		if msg.IsStreaming {
			continue
		}
		if msg.IsAssistant() && msg.IsEmpty() {
			continue
		}
		turns = append(turns, Turn{Role: msg.Role, Content: msg.Content})
	}
	return turns
}
