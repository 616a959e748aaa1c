// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/ayane-chat/internal/config"
	"github.com/jeranaias/ayane-chat/internal/llm"
	"github.com/jeranaias/ayane-chat/internal/model"
	"github.com/jeranaias/ayane-chat/internal/ui/markdown"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the reply",
	Long: `Send a single question and print the streamed reply.

On a terminal the reply is rendered as Markdown once it is complete.
When stdout is piped, tokens are written raw as they arrive.`,
	Example: `  ayane ask "Tell me a fun fact"
  ayane ask --provider ollama -m llama3.2 "Explain quantum computing"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closer, err := opts.prepare()
		if err != nil {
			return err
		}
		defer closer.Close()

		streamer, err := llm.New(cfg.Chat)
		if err != nil {
			return err
		}
		return runAsk(cmd.Context(), cmd.OutOrStdout(), streamer, cfg, strings.Join(args, " "), IsStdoutTTY())
	},
}

// runAsk streams one reply for question to w. With render set the reply is
// buffered and written through the Markdown renderer.
func runAsk(ctx context.Context, w io.Writer, streamer llm.Streamer, cfg *config.Config, question string, render bool) error {
	if cfg.Chat.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Chat.Timeout)
		defer cancel()
	}

	req := llm.Request{
		Model:        cfg.Chat.Model,
		SystemPrompt: cfg.Chat.SystemPrompt,
		Messages:     []llm.Message{{Role: model.RoleUser.String(), Content: question}},
	}

	var reply strings.Builder
	err := streamer.Stream(ctx, req, func(chunk llm.Chunk) {
		if chunk.Content == "" {
			return
		}
		reply.WriteString(chunk.Content)
		if !render {
			fmt.Fprint(w, chunk.Content)
		}
	})
	if err != nil {
		log.Error("ask failed", "provider", streamer.Name(), "err", err)
		if !render && reply.Len() > 0 {
			fmt.Fprintln(w)
		}
		return fmt.Errorf("%s: %w", llm.Describe(err), err)
	}

	if !render {
		if !strings.HasSuffix(reply.String(), "\n") {
			fmt.Fprintln(w)
		}
		return nil
	}

	mdOpts := markdown.DefaultOptions(GetTerminalWidth()-2, cfg.UI.CodeTheme)
	mdOpts.Profile = outputProfile()
	r, err := markdown.New(mdOpts)
	if err != nil {
		log.Warn("markdown renderer unavailable", "err", err)
		fmt.Fprintln(w, reply.String())
		return nil
	}
	fmt.Fprintln(w, r.Render(reply.String()))
	return nil
}
