// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// OllamaConfig holds configuration options for the Ollama streamer.
type OllamaConfig struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434)
	BaseURL string

	// Model to use if the request does not name one.
	Model string

	// ConnectTimeout bounds dialing and waiting for response headers.
	ConnectTimeout time.Duration
}

// DefaultOllamaConfig returns the default Ollama configuration.
func DefaultOllamaConfig() *OllamaConfig {
	return &OllamaConfig{
		BaseURL:        "http://127.0.0.1:11434",
		Model:          "llama3.2",
		ConnectTimeout: 10 * time.Second,
	}
}

// =============================================================================
// STREAMER
// =============================================================================

// OllamaStreamer streams replies from Ollama's /api/chat.
// It is safe for concurrent use.
type OllamaStreamer struct {
	config     *OllamaConfig
	httpClient *http.Client
}

// NewOllamaStreamer creates a streamer, filling zero config values.
func NewOllamaStreamer(config *OllamaConfig) *OllamaStreamer {
	def := DefaultOllamaConfig()
	if config == nil {
		config = def
	}
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Model == "" {
		config.Model = def.Model
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = def.ConnectTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	// No overall client timeout: a reply may stream for minutes and is
	// bounded by the request context instead.
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = config.ConnectTimeout

	return &OllamaStreamer{
		config:     config,
		httpClient: &http.Client{Transport: transport},
	}
}

// Name implements Streamer.
func (s *OllamaStreamer) Name() string {
	return "ollama:" + s.config.Model
}

// ollamaChatRequest is the request body for /api/chat.
type ollamaChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

// ollamaError is the error body Ollama returns on failure.
type ollamaError struct {
	Error string `json:"error"`
}

// Stream implements Streamer.
func (s *OllamaStreamer) Stream(ctx context.Context, req Request, callback StreamCallback) error {
	modelName := req.Model
	if modelName == "" {
		modelName = s.config.Model
	}

	body, err := sonic.Marshal(ollamaChatRequest{
		Model:    modelName,
		Messages: withSystem(req),
		Stream:   true,
	})
	if err != nil {
		return &ClientError{Type: ErrTypeBadResponse, Message: "failed to marshal request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return &ClientError{Type: ErrTypeUnavailable, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var oe ollamaError
		detail := strings.TrimSpace(string(data))
		if sonic.Unmarshal(data, &oe) == nil && oe.Error != "" {
			detail = oe.Error
		}
		return classifyStatus(resp.StatusCode, detail)
	}

	log.Debug("ollama stream opened", "model", modelName, "messages", len(req.Messages))

	if err := NewStreamReader(resp.Body).Process(ctx, callback); err != nil {
		return classifyTransport(err)
	}
	return nil
}
