// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Conversation is an append-only, ordered list of messages. The newest
// assistant message may be "in progress" while a reply streams in; tokens
// are appended to it and it is frozen with FinalizeStream once the stream
// ends.
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.AddUserMessage("Tell me a fun fact")
//	reply := conv.AddAssistantMessage()
//	conv.AppendToLast("Octopuses have three hearts.")
//	conv.FinalizeLast(stats)
//	_ = reply.Content
package model
