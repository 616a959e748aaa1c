// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/ayane-chat/internal/config"
)

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTokenMsg carries one token of the in-progress reply.
type StreamTokenMsg struct {
	MessageID string
	Token     string
}

// StreamCompleteMsg ends a reply successfully.
type StreamCompleteMsg struct {
	MessageID string

	// CompletionTokens is the backend's token count, zero when unknown.
	CompletionTokens int
}

// StreamErrorMsg ends a reply with a transport failure.
type StreamErrorMsg struct {
	MessageID string
	Err       error
}

// =============================================================================
// PLAYBACK MESSAGES
// =============================================================================

// PlaybackDoneMsg reports the end of one playback, successful or not.
type PlaybackDoneMsg struct {
	MessageID string
	Err       error
}

// =============================================================================
// CONFIG MESSAGES
// =============================================================================

// ConfigReloadedMsg carries a config reloaded from disk, or the error that
// stopped the reload.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}
