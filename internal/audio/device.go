// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// Device plays a clip and blocks until it has finished.
type Device interface {
	Play(ctx context.Context, clip *Clip) error
}

// DefaultSampleRate is the output rate of the shared device context.
const DefaultSampleRate = 44100

// OtoDevice plays through the system audio output.
//
// oto allows one context per process, so it is created lazily on first use
// and shared by every playback. Each Play owns its own player.
type OtoDevice struct {
	sampleRate int

	once sync.Once
	ctx  *oto.Context
	err  error
}

var (
	sharedDevice     *OtoDevice
	sharedDeviceOnce sync.Once
)

// SharedDevice returns the process-wide output device.
func SharedDevice() *OtoDevice {
	sharedDeviceOnce.Do(func() {
		sharedDevice = &OtoDevice{sampleRate: DefaultSampleRate}
	})
	return sharedDevice
}

func (d *OtoDevice) init() error {
	d.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   d.sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			d.err = fmt.Errorf("audio: open output device: %w", err)
			return
		}
		<-ready
		d.ctx = ctx
		log.Debug("audio device ready", "sample_rate", d.sampleRate)
	})
	return d.err
}

// Play implements Device. Playback stops early only when ctx is done.
func (d *OtoDevice) Play(ctx context.Context, clip *Clip) error {
	if err := d.init(); err != nil {
		return err
	}

	out, err := Convert(clip, d.sampleRate, 2)
	if err != nil {
		return err
	}

	player := d.ctx.NewPlayer(bytes.NewReader(out.PCM))
	defer func() {
		if err := player.Close(); err != nil {
			log.Warn("closing audio player", "err", err)
		}
	}()

	player.Play()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return player.Err()
}
