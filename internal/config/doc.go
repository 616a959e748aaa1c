// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and validation for ayane.
//
// Configuration is a TOML file with [chat], [speech], [ui] and [log]
// sections, sensible defaults, environment variable overrides, and
// validation that reports every problem at once.
//
// # Configuration Precedence
//
// Configuration is resolved from (highest first):
//   - Command-line flags (applied by the caller)
//   - Environment variables (AYANE_*, OPENAI_API_KEY, ELEVENLABS_API_KEY)
//   - .env in the working directory or ~/.ayane/.env
//   - ~/.ayane/config.toml, or the file given with --config
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// Follow edits to the file while the UI runs:
//
//	err := config.Watch(ctx, path, 0, func(cfg *config.Config, err error) {
//	    program.Send(ConfigReloadedMsg{Config: cfg, Err: err})
//	})
package config
