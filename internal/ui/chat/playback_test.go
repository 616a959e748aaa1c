// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ayane-chat/internal/config"
	"github.com/jeranaias/ayane-chat/internal/playback"
	"github.com/jeranaias/ayane-chat/internal/tts"
)

func newPlaybackModel(t *testing.T, synth *fakeSynth, dev *fakeDevice, chunks ...string) (Model, *collector) {
	t.Helper()
	pipeline := playback.NewPipeline(synth, dev, config.DefaultVoiceID)
	return newTestModel(t, &fakeStreamer{chunks: chunks}, pipeline)
}

func TestPlayback_ListenLifecycle(t *testing.T) {
	synth, dev := &fakeSynth{}, &fakeDevice{}
	m, col := newPlaybackModel(t, synth, dev, "Octopuses have three hearts.")
	m = completeTurn(t, m, col, "Tell me a fun fact")

	replyID := m.Messages()[1].ID
	assert.Contains(t, plainView(m), ListenLabel)
	assert.Equal(t, playback.StateIdle, m.Adapter(replyID).State())

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.NotNil(t, cmd)
	assert.Equal(t, playback.StatePlaying, m.Adapter(replyID).State())
	assert.Contains(t, plainView(m), PlayingLabel)

	m, again := update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Nil(t, again, "second activation is rejected while playing")

	done := runCmd(cmd)
	require.Len(t, done, 1)
	m, _ = update(m, done[0])

	assert.Equal(t, playback.StateIdle, m.Adapter(replyID).State())
	assert.Equal(t, 1, synth.calls())
	assert.Equal(t, 1, dev.count())
	assert.Equal(t, "Octopuses have three hearts.", synth.reqs[0].Text)
	assert.Equal(t, config.DefaultVoiceID, synth.reqs[0].VoiceID)
	assert.Empty(t, m.Toasts())
	assert.Contains(t, plainView(m), ListenLabel)
}

func TestPlayback_SynthesisFailure(t *testing.T) {
	synth := &fakeSynth{err: &tts.StatusError{StatusCode: 500}}
	dev := &fakeDevice{}
	m, col := newPlaybackModel(t, synth, dev, "reply")
	m = completeTurn(t, m, col, "hello")
	replyID := m.Messages()[1].ID

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.NotNil(t, cmd)
	done := runCmd(cmd)
	require.Len(t, done, 1)
	require.Error(t, done[0].(PlaybackDoneMsg).Err)

	m, _ = update(m, done[0])

	assert.Equal(t, playback.StateIdle, m.Adapter(replyID).State())
	assert.Equal(t, 0, dev.count(), "no audio is played")
	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, playback.FailureNotice, toasts[0].Message)

	// The control is usable again.
	_, retry := update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.NotNil(t, retry)
}

func TestPlayback_ClickListen(t *testing.T) {
	synth, dev := &fakeSynth{}, &fakeDevice{}
	m, col := newPlaybackModel(t, synth, dev, "short reply")
	m = completeTurn(t, m, col, "hi")

	var target clickTarget
	found := false
	for _, tg := range m.targets {
		if tg.kind == targetListen {
			target, found = tg, true
		}
	}
	require.True(t, found)

	y := headerHeight + target.line - m.viewport.YOffset
	m, cmd := update(m, tea.MouseMsg{X: 3, Y: y, Type: tea.MouseLeft})
	require.NotNil(t, cmd)
	assert.Equal(t, playback.StatePlaying, m.Adapter(target.messageID).State())
}

func TestPlayback_SelectOlderReply(t *testing.T) {
	synth, dev := &fakeSynth{}, &fakeDevice{}
	streamer := &fakeStreamer{chunks: []string{"first answer"}}
	m, col := newTestModel(t, streamer, playback.NewPipeline(synth, dev, config.DefaultVoiceID))

	m = completeTurn(t, m, col, "one")
	streamer.chunks = []string{"second answer"}
	m = completeTurn(t, m, col, "two")

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlUp})
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.NotNil(t, cmd)
	runCmd(cmd)
	assert.Equal(t, "first answer", synth.reqs[0].Text)

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlDown})
	_, cmd = update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	require.NotNil(t, cmd)
	runCmd(cmd)
	assert.Equal(t, "second answer", synth.reqs[1].Text)
}

func TestPlayback_AdaptersIndependent(t *testing.T) {
	synth, dev := &fakeSynth{}, &fakeDevice{}
	streamer := &fakeStreamer{chunks: []string{"a"}}
	m, col := newTestModel(t, streamer, playback.NewPipeline(synth, dev, config.DefaultVoiceID))
	m = completeTurn(t, m, col, "one")
	m = completeTurn(t, m, col, "two")

	first, second := m.Messages()[1].ID, m.Messages()[3].ID

	m, cmd1 := update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyCtrlUp})
	m, cmd2 := update(m, tea.KeyMsg{Type: tea.KeyCtrlP})

	require.NotNil(t, cmd1)
	require.NotNil(t, cmd2, "another row may play while one is playing")
	assert.Equal(t, playback.StatePlaying, m.Adapter(first).State())
	assert.Equal(t, playback.StatePlaying, m.Adapter(second).State())
}

func TestPlayback_NotWhileStreaming(t *testing.T) {
	synth, dev := &fakeSynth{}, &fakeDevice{}
	m, _ := newPlaybackModel(t, synth, dev, "x")
	m.SetDraft("hello")
	require.NotNil(t, m.Submit())

	_, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlP})
	assert.Nil(t, cmd)
}
