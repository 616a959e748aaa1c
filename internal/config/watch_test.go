// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "watched.toml")
	writeFile(t, path, "[speech]\nvoice_id = \"first\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	err := Watch(ctx, path, 20*time.Millisecond, func(cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[speech]\nvoice_id = \"second\"\n"), 0o600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, "second", cfg.Speech.VoiceID)
	case <-time.After(3 * time.Second):
		t.Fatal("config was not reloaded")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, "watched.toml")
	writeFile(t, path, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 4)
	require.NoError(t, Watch(ctx, path, 10*time.Millisecond, func(*Config, error) {
		calls <- struct{}{}
	}))

	writeFile(t, filepath.Join(home, "other.toml"), "x = 1")

	select {
	case <-calls:
		t.Fatal("reload fired for an unrelated file")
	case <-time.After(200 * time.Millisecond):
	}
}
