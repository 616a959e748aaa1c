// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI pieces for the chat TUI.
//
// ToastManager holds the auto-dismissing notification stack. Toasts are
// added by the chat model (stream failures, speech failures, config
// reloads), expired on ToastTickMsg, and drawn with RenderToastStack above
// the composer.
package components
