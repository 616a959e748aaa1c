// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tts

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
)

// ProxyConfig configures a synthesis endpoint that accepts
// {"text": ..., "voice_id": ...} and answers with raw audio.
type ProxyConfig struct {
	Endpoint string
	VoiceID  string

	// OutputFormat is assumed when the response declares no known type.
	OutputFormat string

	Timeout time.Duration
}

// ProxyClient posts synthesis requests to a proxy endpoint.
type ProxyClient struct {
	config     ProxyConfig
	httpClient *http.Client
}

// NewProxyClient creates a proxy client.
func NewProxyClient(cfg ProxyConfig) *ProxyClient {
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	return &ProxyClient{
		config:     cfg,
		httpClient: httpClient(cfg.Timeout),
	}
}

// Synthesize implements Synthesizer.
func (c *ProxyClient) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	if req.VoiceID == "" {
		req.VoiceID = c.config.VoiceID
	}

	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts: request failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := readAudio(resp, c.config.OutputFormat)
	if err != nil {
		return nil, err
	}
	log.Debug("speech synthesized", "provider", "proxy", "voice", req.VoiceID, "bytes", len(audio.Data))
	return audio, nil
}
