// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package audio

import (
	"encoding/binary"
	"fmt"
)

// Convert returns a clip at the given rate and channel count. The input is
// left untouched; a clip already in the target shape is returned as is.
func Convert(c *Clip, sampleRate, channels int) (*Clip, error) {
	if c.SampleRate == sampleRate && c.Channels == channels {
		return c, nil
	}
	if err := ValidatePCM(c.PCM, c.Channels); err != nil {
		return nil, err
	}

	pcm, err := convertChannels(c.PCM, c.Channels, channels)
	if err != nil {
		return nil, err
	}
	if c.SampleRate != sampleRate {
		pcm = resample(pcm, channels, c.SampleRate, sampleRate)
	}
	return &Clip{PCM: pcm, SampleRate: sampleRate, Channels: channels}, nil
}

// convertChannels converts between mono and stereo PCM.
func convertChannels(pcm []byte, fromChannels, toChannels int) ([]byte, error) {
	switch {
	case fromChannels == toChannels:
		return pcm, nil
	case fromChannels == 1 && toChannels == 2:
		return monoToStereo(pcm), nil
	case fromChannels == 2 && toChannels == 1:
		return stereoToMono(pcm), nil
	default:
		return nil, fmt.Errorf("audio: unsupported channel conversion: %d to %d", fromChannels, toChannels)
	}
}

// monoToStereo duplicates each sample into both channels.
func monoToStereo(mono []byte) []byte {
	samples := len(mono) / 2
	out := make([]byte, samples*4)
	for i := 0; i < samples; i++ {
		out[i*4] = mono[i*2]
		out[i*4+1] = mono[i*2+1]
		out[i*4+2] = mono[i*2]
		out[i*4+3] = mono[i*2+1]
	}
	return out
}

// stereoToMono averages the two channels.
func stereoToMono(stereo []byte) []byte {
	frames := len(stereo) / 4
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		left := int16(binary.LittleEndian.Uint16(stereo[i*4:]))
		right := int16(binary.LittleEndian.Uint16(stereo[i*4+2:]))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16((int(left)+int(right))/2)))
	}
	return out
}

// resample converts the sample rate with linear interpolation.
func resample(pcm []byte, channels, fromRate, toRate int) []byte {
	inFrames := len(pcm) / (2 * channels)
	if inFrames == 0 || fromRate <= 0 || toRate <= 0 {
		return nil
	}
	outFrames := int(int64(inFrames) * int64(toRate) / int64(fromRate))
	if outFrames == 0 {
		outFrames = 1
	}

	sample := func(frame, ch int) float64 {
		off := (frame*channels + ch) * 2
		return float64(int16(binary.LittleEndian.Uint16(pcm[off:])))
	}

	out := make([]byte, outFrames*channels*2)
	step := float64(fromRate) / float64(toRate)
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * step
		i0 := int(pos)
		if i0 >= inFrames {
			i0 = inFrames - 1
		}
		i1 := i0 + 1
		if i1 >= inFrames {
			i1 = inFrames - 1
		}
		frac := pos - float64(i0)
		for ch := 0; ch < channels; ch++ {
			v := sample(i0, ch)*(1-frac) + sample(i1, ch)*frac
			binary.LittleEndian.PutUint16(out[(i*channels+ch)*2:], uint16(int16(v)))
		}
	}
	return out
}
