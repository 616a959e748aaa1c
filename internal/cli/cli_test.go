// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ayane-chat/internal/audio"
	"github.com/jeranaias/ayane-chat/internal/config"
	"github.com/jeranaias/ayane-chat/internal/llm"
	"github.com/jeranaias/ayane-chat/internal/playback"
	"github.com/jeranaias/ayane-chat/internal/tts"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeStreamer struct {
	chunks []string
	err    error
	req    llm.Request
}

func (f *fakeStreamer) Stream(_ context.Context, req llm.Request, cb llm.StreamCallback) error {
	f.req = req
	for _, c := range f.chunks {
		cb(llm.Chunk{Content: c})
	}
	if f.err != nil {
		return f.err
	}
	cb(llm.Chunk{Done: true})
	return nil
}

func (f *fakeStreamer) Name() string { return "fake" }

type fakeSynth struct{ err error }

func (f fakeSynth) Synthesize(context.Context, tts.Request) (*tts.Audio, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &tts.Audio{Data: make([]byte, 1600), Format: "pcm_16000"}, nil
}

type fakeDevice struct{ plays int }

func (d *fakeDevice) Play(context.Context, *audio.Clip) error {
	d.plays++
	return nil
}

// =============================================================================
// FLAG OVERRIDES
// =============================================================================

func TestOptions_Apply(t *testing.T) {
	tests := []struct {
		name  string
		opts  options
		check func(t *testing.T, cfg *config.Config)
	}{
		{
			name: "no flags keep config",
			opts: options{},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "https://api.example.com/v1", cfg.Chat.BaseURL)
				assert.Equal(t, "file-model", cfg.Chat.Model)
			},
		},
		{
			name: "provider switch drops provider settings",
			opts: options{provider: "Ollama"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, config.ProviderOllama, cfg.Chat.Provider)
				assert.Empty(t, cfg.Chat.BaseURL)
				assert.Empty(t, cfg.Chat.Model)
			},
		},
		{
			name: "same provider keeps settings",
			opts: options{provider: "openai"},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "https://api.example.com/v1", cfg.Chat.BaseURL)
			},
		},
		{
			name: "model voice and logging",
			opts: options{provider: "ollama", model: "llama3.1", voice: "voice-1", logFile: "/tmp/a.log", debug: true},
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "llama3.1", cfg.Chat.Model)
				assert.Equal(t, "voice-1", cfg.Speech.VoiceID)
				assert.Equal(t, "/tmp/a.log", cfg.Log.File)
				assert.Equal(t, "debug", cfg.Log.Level)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Chat.BaseURL = "https://api.example.com/v1"
			cfg.Chat.Model = "file-model"
			tc.opts.apply(cfg)
			tc.check(t, cfg)
		})
	}
}

func TestOptions_LogPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	cfg := config.Default()

	path, err := (&options{}).logPath(cfg)
	require.NoError(t, err)
	assert.Empty(t, path, "logs are discarded without --debug")

	path, err = (&options{debug: true}).logPath(cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ayane", "ayane.log"), path)

	cfg.Log.File = "/var/log/ayane.log"
	path, err = (&options{debug: true}).logPath(cfg)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/ayane.log", path)
}

func TestOptions_WatchPath(t *testing.T) {
	dir := t.TempDir()

	path, ok := (&options{configPath: filepath.Join(dir, "config.toml")}).watchPath()
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "config.toml"), path)

	_, ok = (&options{configPath: filepath.Join(dir, "missing", "config.toml")}).watchPath()
	assert.False(t, ok)
}

// =============================================================================
// ASK
// =============================================================================

func TestRunAsk_Raw(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"Octopuses ", "have ", "three hearts."}}
	cfg := config.Default()
	cfg.Chat.SystemPrompt = "Be brief."

	var out bytes.Buffer
	err := runAsk(context.Background(), &out, streamer, cfg, "Tell me a fun fact", false)
	require.NoError(t, err)

	assert.Equal(t, "Octopuses have three hearts.\n", out.String())
	assert.Equal(t, "Be brief.", streamer.req.SystemPrompt)
	assert.Equal(t, cfg.Chat.Model, streamer.req.Model)
	require.Len(t, streamer.req.Messages, 1)
	assert.Equal(t, llm.Message{Role: "user", Content: "Tell me a fun fact"}, streamer.req.Messages[0])
}

func TestRunAsk_Rendered(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"Plants use **light**", " and `CO2`."}}

	var out bytes.Buffer
	err := runAsk(context.Background(), &out, streamer, config.Default(), "How does photosynthesis work?", true)
	require.NoError(t, err)

	plain := xansi.Strip(out.String())
	assert.Contains(t, plain, "light")
	assert.Contains(t, plain, "CO2")
	assert.NotContains(t, plain, "**")
}

func TestRunAsk_Error(t *testing.T) {
	streamer := &fakeStreamer{chunks: []string{"half"}, err: llm.ErrUnavailable}

	var out bytes.Buffer
	err := runAsk(context.Background(), &out, streamer, config.Default(), "hi", false)

	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrUnavailable))
	assert.Contains(t, err.Error(), llm.Describe(llm.ErrUnavailable))
	assert.Equal(t, "half\n", out.String(), "partial output is terminated")
}

// =============================================================================
// SPEAK
// =============================================================================

func TestRunSpeak(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		assert.ErrorIs(t, runSpeak(context.Background(), nil, "hello"), errSpeechDisabled)
	})

	t.Run("empty text", func(t *testing.T) {
		p := playback.NewPipeline(fakeSynth{}, &fakeDevice{}, config.DefaultVoiceID)
		assert.Error(t, runSpeak(context.Background(), p, "  "))
	})

	t.Run("plays", func(t *testing.T) {
		dev := &fakeDevice{}
		p := playback.NewPipeline(fakeSynth{}, dev, config.DefaultVoiceID)
		require.NoError(t, runSpeak(context.Background(), p, "How can I help?"))
		assert.Equal(t, 1, dev.plays)
	})

	t.Run("synthesis failure", func(t *testing.T) {
		dev := &fakeDevice{}
		p := playback.NewPipeline(fakeSynth{err: &tts.StatusError{StatusCode: 500}}, dev, config.DefaultVoiceID)
		err := runSpeak(context.Background(), p, "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), playback.FailureNotice)
		assert.Zero(t, dev.plays)
	})
}

// =============================================================================
// VERSION
// =============================================================================

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2025-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "unknown") })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "ayane 1.2.3 (commit: abc123, built: 2025-01-01)\n", out.String())
}
