// ayane - a terminal chat client with streamed replies and spoken playback.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import "github.com/jeranaias/ayane-chat/internal/cli"

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	cli.SetVersionInfo(Version, GitCommit, BuildDate)
	cli.Execute()
}
