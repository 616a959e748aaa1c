// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package playback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/ayane-chat/internal/audio"
	"github.com/jeranaias/ayane-chat/internal/config"
	"github.com/jeranaias/ayane-chat/internal/tts"
)

// ErrBusy is returned by Play when the adapter is already playing.
var ErrBusy = errors.New("playback: already playing")

// Stage names the pipeline step that failed.
type Stage string

const (
	StageSynthesize Stage = "synthesize"
	StageDecode     Stage = "decode"
	StagePlay       Stage = "play"
)

// Error wraps a pipeline failure with its stage.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("playback %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DecodeFunc turns a synthesis response into a playable clip.
type DecodeFunc func(data []byte, format string) (*audio.Clip, error)

// Pipeline synthesizes text, decodes it, and plays it to completion.
// It is safe for concurrent use by several adapters.
type Pipeline struct {
	synth        tts.Synthesizer
	device       audio.Device
	decode       DecodeFunc
	defaultVoice string
}

// NewPipeline builds a pipeline using audio.Decode.
func NewPipeline(synth tts.Synthesizer, device audio.Device, defaultVoice string) *Pipeline {
	return &Pipeline{
		synth:        synth,
		device:       device,
		decode:       audio.Decode,
		defaultVoice: defaultVoice,
	}
}

// WithDecoder replaces the decoder.
func (p *Pipeline) WithDecoder(fn DecodeFunc) *Pipeline {
	p.decode = fn
	return p
}

// Speak runs one playback. The response buffer and the decoded clip are
// released before returning, whatever the outcome.
func (p *Pipeline) Speak(ctx context.Context, req tts.Request) error {
	if req.VoiceID == "" {
		req.VoiceID = p.defaultVoice
	}

	start := time.Now()
	resp, err := p.synth.Synthesize(ctx, req)
	if err != nil {
		return &Error{Stage: StageSynthesize, Err: err}
	}
	defer func() { resp.Data = nil }()

	clip, err := p.decode(resp.Data, resp.Format)
	if err != nil {
		return &Error{Stage: StageDecode, Err: err}
	}
	defer clip.Release()

	log.Debug("playback starting", "voice", req.VoiceID, "duration", clip.Duration(), "prep", time.Since(start))

	if err := p.device.Play(ctx, clip); err != nil {
		return &Error{Stage: StagePlay, Err: err}
	}
	return nil
}

// Play drives adapter through one playback of text: it is rejected with
// ErrBusy while the adapter plays, and the adapter is idle again when Play
// returns.
func (p *Pipeline) Play(ctx context.Context, adapter *Adapter, req tts.Request) error {
	if !adapter.Begin() {
		return ErrBusy
	}
	err := p.Speak(ctx, req)
	adapter.End(err)
	return err
}

// FromConfig builds the pipeline described by cfg. It returns nil, nil
// when speech is disabled.
func FromConfig(cfg config.SpeechConfig, device audio.Device) (*Pipeline, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	synth, err := tts.New(cfg)
	if err != nil {
		return nil, err
	}
	return NewPipeline(synth, device, cfg.VoiceID), nil
}
