// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"fmt"

	"github.com/jeranaias/ayane-chat/internal/config"
	"github.com/jeranaias/ayane-chat/internal/model"
)

// =============================================================================
// REQUEST / CHUNK TYPES
// =============================================================================

// Message is one role/content pair sent to the backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a streamed chat request.
type Request struct {
	// Model overrides the streamer's configured model when non-empty.
	Model        string
	SystemPrompt string
	Messages     []Message
}

// Chunk is one increment of a streamed reply.
type Chunk struct {
	Content string
	Done    bool

	// CompletionTokens is reported by some backends on the final chunk.
	CompletionTokens int
}

// StreamCallback is called for each chunk, synchronously and in order.
type StreamCallback func(chunk Chunk)

// Streamer streams a reply for the given history.
type Streamer interface {
	// Stream blocks until the reply is complete or fails.
	Stream(ctx context.Context, req Request, callback StreamCallback) error

	// Name identifies the provider in logs and the status bar.
	Name() string
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

// New builds the Streamer selected by cfg.Provider.
func New(cfg config.ChatConfig) (Streamer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIStreamer(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	case config.ProviderOllama:
		return NewOllamaStreamer(&OllamaConfig{BaseURL: cfg.BaseURL, Model: cfg.Model}), nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

// FromHistory converts conversation turns into backend messages.
func FromHistory(turns []model.Turn) []Message {
	out := make([]Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, Message{Role: t.Role.String(), Content: t.Content})
	}
	return out
}

// withSystem prepends the system prompt when set.
func withSystem(req Request) []Message {
	if req.SystemPrompt == "" {
		return req.Messages
	}
	out := make([]Message, 0, len(req.Messages)+1)
	out = append(out, Message{Role: "system", Content: req.SystemPrompt})
	return append(out, req.Messages...)
}
