// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/ayane-chat/internal/config"
	"github.com/jeranaias/ayane-chat/internal/logging"
)

// options holds the global flags.
type options struct {
	configPath string
	provider   string
	model      string
	voice      string
	logFile    string
	debug      bool
}

// overrides returns the flag values as config overrides.
func (o *options) overrides() []config.Override {
	return []config.Override{o.apply}
}

func (o *options) apply(cfg *config.Config) {
	if p := strings.ToLower(strings.TrimSpace(o.provider)); p != "" && p != cfg.Chat.Provider {
		// The endpoint and model belong to the previous provider.
		cfg.Chat.Provider = p
		cfg.Chat.BaseURL = ""
		cfg.Chat.Model = ""
	}
	if o.model != "" {
		cfg.Chat.Model = o.model
	}
	if o.voice != "" {
		cfg.Speech.VoiceID = o.voice
	}
	if o.logFile != "" {
		cfg.Log.File = o.logFile
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}
}

// prepare loads the config and installs the logger. The closer releases
// the log file.
func (o *options) prepare() (*config.Config, io.Closer, error) {
	cfg, err := config.Load(o.configPath, o.overrides()...)
	if err != nil {
		return nil, nil, err
	}

	path, err := o.logPath(cfg)
	if err != nil {
		return nil, nil, err
	}
	_, closer, err := logging.Setup(path, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}

// logPath returns the configured log file, the default one with --debug,
// or "" to discard logs.
func (o *options) logPath(cfg *config.Config) (string, error) {
	if cfg.Log.File != "" || !o.debug {
		return cfg.Log.File, nil
	}
	return config.DefaultLogPath()
}

// watchPath returns the config file to hot reload. Reloading needs an
// existing directory to watch.
func (o *options) watchPath() (string, bool) {
	path := o.configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return "", false
		}
		path = p
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		return "", false
	}
	return path, true
}
