// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader parses Ollama's newline-delimited JSON stream.
type StreamReader struct {
	reader *bufio.Reader
}

// NewStreamReader creates a stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// ollamaChunk is one line of the /api/chat stream.
type ollamaChunk struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done      bool   `json:"done"`
	EvalCount int    `json:"eval_count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the final chunk, EOF, or context cancellation. A stream
// that ends without a done chunk still reports Done to the callback.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		chunk, err := s.readChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				callback(Chunk{Done: true})
				return nil
			}
			return err
		}
		if chunk == nil {
			continue
		}

		callback(*chunk)
		if chunk.Done {
			return nil
		}
	}
}

// readChunk reads and parses a single line. Blank and malformed lines yield
// a nil chunk.
func (s *StreamReader) readChunk() (*Chunk, error) {
	line, err := s.reader.ReadBytes('\n')
	if err != nil && (!errors.Is(err, io.EOF) || len(line) == 0) {
		return nil, err
	}

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}

	var raw ollamaChunk
	if err := sonic.Unmarshal(line, &raw); err != nil {
		log.Debug("skipping malformed stream line", "err", err)
		return nil, nil
	}
	if raw.Error != "" {
		return nil, &ClientError{Type: ErrTypeBadResponse, Message: raw.Error}
	}

	chunk := &Chunk{
		Content: raw.Message.Content,
		Done:    raw.Done,
	}
	if raw.Done {
		chunk.CompletionTokens = raw.EvalCount
	}
	return chunk, nil
}
