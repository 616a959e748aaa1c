// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package llm streams chat replies from a conversational backend.
//
// Two providers implement Streamer:
//
//   - OpenAIStreamer: any OpenAI-compatible /chat/completions endpoint,
//     through github.com/sashabaranov/go-openai.
//   - OllamaStreamer: Ollama's /api/chat NDJSON stream.
//
// Both deliver chunks to a callback in arrival order and return once the
// stream ends. Failures are *ClientError values classified by ErrorType.
//
// # Usage
//
//	s, err := llm.New(cfg.Chat)
//	err = s.Stream(ctx, llm.Request{Messages: history}, func(c llm.Chunk) {
//	    fmt.Print(c.Content)
//	})
package llm
