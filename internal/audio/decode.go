// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audio decodes synthesized speech and plays it on the default
// output device.
//
// Everything is normalized to signed 16-bit little-endian PCM. MP3 is
// decoded with go-mp3, mu-law with g711, and raw pcm_<rate> is passed
// through.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/go-mp3"
	"github.com/zaf/g711"
)

// ErrUnsupportedFormat is returned for output formats Decode cannot handle.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// Clip is decoded PCM: signed 16-bit little-endian, interleaved channels.
type Clip struct {
	PCM        []byte
	SampleRate int
	Channels   int
}

// Frames returns the number of sample frames.
func (c *Clip) Frames() int {
	if c.Channels <= 0 {
		return 0
	}
	return len(c.PCM) / (2 * c.Channels)
}

// Duration returns the playback length.
func (c *Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Release drops the decoded samples. The clip is unusable afterwards.
func (c *Clip) Release() {
	c.PCM = nil
}

// Released reports whether Release was called.
func (c *Clip) Released() bool {
	return c.PCM == nil
}

// Decode turns a synthesis response into a Clip. format is an output
// format name such as "mp3_44100_128", "ulaw_8000" or "pcm_24000".
func Decode(data []byte, format string) (*Clip, error) {
	if len(data) == 0 {
		return nil, errors.New("audio: empty input")
	}

	codec, rate := parseFormat(format)
	switch codec {
	case "mp3":
		return decodeMP3(data)
	case "ulaw":
		if rate == 0 {
			rate = 8000
		}
		return &Clip{PCM: g711.DecodeUlaw(data), SampleRate: rate, Channels: 1}, nil
	case "pcm":
		if rate == 0 {
			return nil, fmt.Errorf("%w: %q needs a sample rate", ErrUnsupportedFormat, format)
		}
		if err := ValidatePCM(data, 1); err != nil {
			return nil, err
		}
		pcm := make([]byte, len(data))
		copy(pcm, data)
		return &Clip{PCM: pcm, SampleRate: rate, Channels: 1}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func decodeMP3(data []byte) (*Clip, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("audio: mp3 decode: %w", err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("audio: mp3 decode: %w", err)
	}
	if len(pcm) == 0 {
		return nil, errors.New("audio: mp3 stream has no samples")
	}
	// go-mp3 always yields 16-bit stereo.
	return &Clip{PCM: pcm, SampleRate: dec.SampleRate(), Channels: 2}, nil
}

// parseFormat splits "codec_rate[_bitrate]".
func parseFormat(format string) (codec string, rate int) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(format)), "_")
	codec = parts[0]
	if len(parts) > 1 {
		if r, err := strconv.Atoi(parts[1]); err == nil && r > 0 {
			rate = r
		}
	}
	return codec, rate
}

// ValidatePCM checks that pcm holds whole 16-bit frames.
func ValidatePCM(pcm []byte, channels int) error {
	if len(pcm) == 0 {
		return errors.New("audio: PCM data is empty")
	}
	if channels <= 0 {
		return errors.New("audio: invalid number of channels")
	}
	if len(pcm)%(2*channels) != 0 {
		return errors.New("audio: PCM data length doesn't match channel count")
	}
	return nil
}
