// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tts

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ayane-chat/internal/config"
)

var fakeMP3 = []byte{0xFF, 0xFB, 0x90, 0x64, 0x00}

// =============================================================================
// PROXY CLIENT
// =============================================================================

func TestProxyClient_SendsTextAndVoice(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write(fakeMP3)
	}))
	defer srv.Close()

	c := NewProxyClient(ProxyConfig{Endpoint: srv.URL + "/api/text-to-speech", VoiceID: config.DefaultVoiceID})
	audio, err := c.Synthesize(context.Background(), Request{Text: "Octopuses have three hearts."})
	require.NoError(t, err)

	assert.Equal(t, "Octopuses have three hearts.", got.Text)
	assert.Equal(t, "EXAVITQu4vr4xnSDxMaL", got.VoiceID, "default voice is used when none is given")
	assert.Equal(t, fakeMP3, audio.Data)
	assert.Equal(t, "mp3_44100_128", audio.Format)
}

func TestProxyClient_VoiceOverride(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(body, &got)
		_, _ = w.Write(fakeMP3)
	}))
	defer srv.Close()

	c := NewProxyClient(ProxyConfig{Endpoint: srv.URL, VoiceID: config.DefaultVoiceID})
	_, err := c.Synthesize(context.Background(), Request{Text: "hi", VoiceID: "custom"})
	require.NoError(t, err)
	assert.Equal(t, "custom", got.VoiceID)
}

func TestProxyClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewProxyClient(ProxyConfig{Endpoint: srv.URL})
	audio, err := c.Synthesize(context.Background(), Request{Text: "hi"})

	assert.Nil(t, audio)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Contains(t, se.Error(), "quota exceeded")
}

func TestProxyClient_EmptyInputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewProxyClient(ProxyConfig{Endpoint: srv.URL})

	_, err := c.Synthesize(context.Background(), Request{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)

	_, err = c.Synthesize(context.Background(), Request{Text: "hi"})
	assert.ErrorIs(t, err, ErrEmptyAudio)
}

// =============================================================================
// ELEVENLABS CLIENT
// =============================================================================

func TestElevenLabsClient_Request(t *testing.T) {
	var body elRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "ulaw_8000", r.URL.Query().Get("output_format"))
		assert.Equal(t, "xi-test", r.Header.Get("xi-api-key"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, sonic.Unmarshal(data, &body))

		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0xFF, 0x7F, 0x00})
	}))
	defer srv.Close()

	c := NewElevenLabsClient(ElevenLabsConfig{
		APIKey:          "xi-test",
		BaseURL:         srv.URL + "/",
		VoiceID:         "voice-1",
		OutputFormat:    "ulaw_8000",
		Stability:       0.4,
		SimilarityBoost: 0.8,
	})
	audio, err := c.Synthesize(context.Background(), Request{Text: "Explain quantum computing"})
	require.NoError(t, err)

	assert.Equal(t, "Explain quantum computing", body.Text)
	assert.Equal(t, "eleven_turbo_v2_5", body.ModelID)
	assert.InDelta(t, 0.4, body.VoiceSettings.Stability, 1e-9)
	assert.InDelta(t, 0.8, body.VoiceSettings.SimilarityBoost, 1e-9)
	assert.Equal(t, "ulaw_8000", audio.Format)
}

func TestElevenLabsClient_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":{"status":"invalid_api_key"}}`)
	}))
	defer srv.Close()

	c := NewElevenLabsClient(ElevenLabsConfig{BaseURL: srv.URL, VoiceID: "v"})
	_, err := c.Synthesize(context.Background(), Request{Text: "hi"})

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

// =============================================================================
// HELPERS
// =============================================================================

func TestFormatFor(t *testing.T) {
	tests := []struct {
		contentType string
		fallback    string
		want        string
	}{
		{"audio/mpeg", "mp3_22050_32", "mp3_22050_32"},
		{"audio/mpeg", "pcm_24000", "mp3_44100_128"},
		{"audio/basic", "mp3_44100_128", "ulaw_8000"},
		{"application/octet-stream", "pcm_16000", "pcm_16000"},
		{"", "pcm_16000", "pcm_16000"},
	}

	for _, tc := range tests {
		t.Run(tc.contentType+"/"+tc.fallback, func(t *testing.T) {
			assert.Equal(t, tc.want, formatFor(tc.contentType, tc.fallback))
		})
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	cfg := config.Default().Speech

	s, err := New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ElevenLabsClient{}, s)

	cfg.Provider = config.SpeechProxy
	cfg.Endpoint = "http://localhost:3000/api/text-to-speech"
	s, err = New(cfg)
	require.NoError(t, err)
	assert.IsType(t, &ProxyClient{}, s)

	cfg.Provider = "morse"
	_, err = New(cfg)
	assert.Error(t, err)
}
