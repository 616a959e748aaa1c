// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the ayane command line.
//
// Running ayane with no subcommand opens the chat interface. The other
// commands work without a terminal UI:
//
//	ayane ask "What is artificial intelligence?"
//	ayane speak "Hello from Princess Ayane"
//	ayane version
//
// Global flags (--config, --provider, --model, --voice, --debug, --log-file)
// are applied on top of the config file and AYANE_* environment variables
// and survive config hot reloads.
package cli
