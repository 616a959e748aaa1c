// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tts requests synthesized speech from a text-to-speech backend.
//
// The response body is buffered whole and returned as Audio; decoding and
// playback live in the audio package.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/ayane-chat/internal/config"
)

// MaxAudioBytes caps a buffered synthesis response.
const MaxAudioBytes = 32 << 20

// Errors returned by synthesizers.
var (
	ErrEmptyText  = errors.New("tts: empty text")
	ErrEmptyAudio = errors.New("tts: backend returned no audio")
	ErrTooLarge   = errors.New("tts: audio response too large")
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tts: backend returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("tts: backend returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Request is one synthesis request.
type Request struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

// Audio is a buffered synthesis response.
type Audio struct {
	Data []byte

	// Format is an output format name such as "mp3_44100_128",
	// "ulaw_8000" or "pcm_24000".
	Format string

	ContentType string
}

// Synthesizer turns text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Audio, error)
}

// New builds the synthesizer selected by cfg.Provider.
func New(cfg config.SpeechConfig) (Synthesizer, error) {
	switch cfg.Provider {
	case config.SpeechElevenLabs:
		return NewElevenLabsClient(ElevenLabsConfig{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			VoiceID:         cfg.VoiceID,
			ModelID:         cfg.ModelID,
			OutputFormat:    cfg.OutputFormat,
			Stability:       cfg.Stability,
			SimilarityBoost: cfg.SimilarityBoost,
			Timeout:         cfg.Timeout,
		}), nil
	case config.SpeechProxy:
		return NewProxyClient(ProxyConfig{
			Endpoint:     cfg.Endpoint,
			VoiceID:      cfg.VoiceID,
			OutputFormat: cfg.OutputFormat,
			Timeout:      cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Provider)
	}
}

// readAudio checks the status and buffers the body of a synthesis response.
func readAudio(resp *http.Response, fallbackFormat string) (*Audio, error) {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAudioBytes+1))
	if err != nil {
		return nil, fmt.Errorf("tts: read audio: %w", err)
	}
	if len(data) > MaxAudioBytes {
		return nil, ErrTooLarge
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}

	contentType := resp.Header.Get("Content-Type")
	return &Audio{
		Data:        data,
		Format:      formatFor(contentType, fallbackFormat),
		ContentType: contentType,
	}, nil
}

// formatFor prefers what the response declares over the requested format.
func formatFor(contentType, fallback string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fallback
	}
	switch mediaType {
	case "audio/mpeg", "audio/mp3":
		if strings.HasPrefix(fallback, "mp3") {
			return fallback
		}
		return "mp3_44100_128"
	case "audio/basic":
		return "ulaw_8000"
	default:
		return fallback
	}
}

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
