// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"
)

// OpenAIStreamer streams from an OpenAI-compatible chat completions API.
type OpenAIStreamer struct {
	client *openai.Client
	model  string
}

// NewOpenAIStreamer creates a streamer for baseURL (e.g.
// https://api.openai.com/v1). apiKey may be empty for local servers.
func NewOpenAIStreamer(baseURL, apiKey, model string) *OpenAIStreamer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return &OpenAIStreamer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Name implements Streamer.
func (s *OpenAIStreamer) Name() string {
	return "openai:" + s.model
}

// Stream implements Streamer.
func (s *OpenAIStreamer) Stream(ctx context.Context, req Request, callback StreamCallback) error {
	modelName := req.Model
	if modelName == "" {
		modelName = s.model
	}

	msgs := withSystem(req)
	openAIMessages := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		openAIMessages = append(openAIMessages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	stream, err := s.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    modelName,
		Messages: openAIMessages,
		Stream:   true,
	})
	if err != nil {
		return classifyOpenAI(err)
	}
	defer stream.Close()

	log.Debug("openai stream opened", "model", modelName, "messages", len(openAIMessages))

	completionTokens := 0
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return classifyOpenAI(err)
		}
		if resp.Usage != nil {
			completionTokens = resp.Usage.CompletionTokens
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if content := resp.Choices[0].Delta.Content; content != "" {
			callback(Chunk{Content: content})
		}
	}

	callback(Chunk{Done: true, CompletionTokens: completionTokens})
	return nil
}

// classifyOpenAI maps go-openai errors onto ClientError.
func classifyOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, "")
	}
	return classifyTransport(err)
}
