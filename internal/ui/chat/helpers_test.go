// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ayane-chat/internal/audio"
	"github.com/jeranaias/ayane-chat/internal/config"
	"github.com/jeranaias/ayane-chat/internal/llm"
	"github.com/jeranaias/ayane-chat/internal/playback"
	"github.com/jeranaias/ayane-chat/internal/tts"
)

// =============================================================================
// FAKE BACKENDS
// =============================================================================

type fakeStreamer struct {
	mu         sync.Mutex
	chunks     []string
	err        error
	completion int
	reqs       []llm.Request
}

func (f *fakeStreamer) Stream(_ context.Context, req llm.Request, cb llm.StreamCallback) error {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	for _, c := range f.chunks {
		cb(llm.Chunk{Content: c})
	}
	if f.err != nil {
		return f.err
	}
	cb(llm.Chunk{Done: true, CompletionTokens: f.completion})
	return nil
}

func (f *fakeStreamer) Name() string { return "fake" }

type fakeSynth struct {
	mu   sync.Mutex
	reqs []tts.Request
	err  error
}

func (f *fakeSynth) Synthesize(_ context.Context, req tts.Request) (*tts.Audio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &tts.Audio{Data: make([]byte, 3200), Format: "pcm_16000"}, nil
}

func (f *fakeSynth) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

type fakeDevice struct {
	mu    sync.Mutex
	plays int
}

func (d *fakeDevice) Play(_ context.Context, _ *audio.Clip) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.plays++
	return nil
}

func (d *fakeDevice) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.plays
}

// collector stands in for *tea.Program.
type collector struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (c *collector) Send(msg tea.Msg) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *collector) drain() []tea.Msg {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.msgs
	c.msgs = nil
	return out
}

// =============================================================================
// MODEL HELPERS
// =============================================================================

func newTestModel(t *testing.T, streamer llm.Streamer, pipeline *playback.Pipeline) (Model, *collector) {
	t.Helper()
	m := New(Options{
		Config:   config.Default(),
		Streamer: streamer,
		Pipeline: pipeline,
		Context:  context.Background(),
	})
	col := &collector{}
	m.AttachProgram(col)
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 30})
	return m, col
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// runCmd executes cmd and returns the messages it yields, descending into
// batches.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// endOfTurn returns the message that finishes the stream.
func endOfTurn(t *testing.T, msgs []tea.Msg) tea.Msg {
	t.Helper()
	for _, msg := range msgs {
		switch msg.(type) {
		case StreamCompleteMsg, StreamErrorMsg:
			return msg
		}
	}
	require.Fail(t, "stream command did not finish the turn")
	return nil
}

// completeTurn submits prompt and plays back every streamed message.
func completeTurn(t *testing.T, m Model, col *collector, prompt string) Model {
	t.Helper()
	m.SetDraft(prompt)
	cmd := m.Submit()
	require.NotNil(t, cmd)

	end := endOfTurn(t, runCmd(cmd))
	for _, tok := range col.drain() {
		m, _ = update(m, tok)
	}
	m, _ = update(m, end)
	return m
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func altKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

func plainView(m Model) string {
	return xansi.Strip(m.View())
}

func teaResize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}
