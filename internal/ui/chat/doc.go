// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat implements the single-page chat screen.

The screen has three parts:

  - Transcript: the conversation in insertion order, each row with a role
    badge and Markdown-rendered content. Assistant rows carry a Listen
    control backed by a playback.Adapter. An empty conversation shows the
    suggested prompts instead.
  - Composer: a textarea bound to the draft whose height follows its
    content between the configured bounds.
  - Status: toasts and a help line.

# Message Flow

Submit appends the user message and an empty assistant message, then
returns a command that streams the reply. Tokens arrive as StreamTokenMsg
(sent with tea.Program.Send from the streaming goroutine), are buffered,
and are flushed into the assistant message at most ~30 times a second.
StreamCompleteMsg or StreamErrorMsg ends the turn. Only one turn is in
flight; Submit is a no-op while loading.

Playback runs in a command and reports PlaybackDoneMsg. The adapter goes
back to idle either way; failures raise a toast.

# Key Bindings

	Enter               submit
	Alt+Enter, Ctrl+J   new line (Shift+Enter where the terminal reports it)
	Alt+1..Alt+4        use a suggested prompt (empty conversation)
	Ctrl+Up/Ctrl+Down   select assistant message
	Ctrl+P              listen to selected message
	PgUp/PgDn           scroll
	Esc                 dismiss notification
	Ctrl+C              quit
*/
package chat
