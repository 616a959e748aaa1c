// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tts

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
)

// ElevenLabsConfig holds configuration for the ElevenLabs REST API.
type ElevenLabsConfig struct {
	APIKey       string
	BaseURL      string
	VoiceID      string
	ModelID      string
	OutputFormat string

	// Voice settings
	Stability       float64
	SimilarityBoost float64

	Timeout time.Duration
}

// ElevenLabsClient calls POST /v1/text-to-speech/{voice_id}.
type ElevenLabsClient struct {
	config     ElevenLabsConfig
	httpClient *http.Client
}

type elVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elRequest struct {
	Text          string          `json:"text"`
	ModelID       string          `json:"model_id,omitempty"`
	VoiceSettings elVoiceSettings `json:"voice_settings"`
}

// NewElevenLabsClient creates a client, filling zero config values.
func NewElevenLabsClient(cfg ElevenLabsConfig) *ElevenLabsClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_turbo_v2_5"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	return &ElevenLabsClient{
		config:     cfg,
		httpClient: httpClient(cfg.Timeout),
	}
}

// Synthesize implements Synthesizer.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = c.config.VoiceID
	}

	body, err := sonic.Marshal(elRequest{
		Text:    req.Text,
		ModelID: c.config.ModelID,
		VoiceSettings: elVoiceSettings{
			Stability:       c.config.Stability,
			SimilarityBoost: c.config.SimilarityBoost,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("tts: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		c.config.BaseURL, url.PathEscape(voiceID), url.QueryEscape(c.config.OutputFormat))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tts: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/*")
	httpReq.Header.Set("xi-api-key", c.config.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts: request failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := readAudio(resp, c.config.OutputFormat)
	if err != nil {
		return nil, err
	}
	log.Debug("speech synthesized", "provider", "elevenlabs", "voice", voiceID,
		"bytes", len(audio.Data), "format", audio.Format, "took", time.Since(start))
	return audio, nil
}
