// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/ayane-chat/internal/audio"
	"github.com/jeranaias/ayane-chat/internal/config"
	"github.com/jeranaias/ayane-chat/internal/llm"
	"github.com/jeranaias/ayane-chat/internal/playback"
	"github.com/jeranaias/ayane-chat/internal/ui/chat"
)

var opts options

// rootCmd runs the chat interface when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "ayane",
	Short: "Chat with Princess Ayane in your terminal",
	Long: `ayane is a single-page terminal chat client.

Replies stream in token by token and render as Markdown. Any finished
reply can be read aloud through a text-to-speech backend.

Keys:
  enter              send the draft
  alt+enter, ctrl+j  new line
  alt+1..alt+4       pick a suggested prompt
  ctrl+p             listen to the selected reply
  ctrl+up/down       select a reply
  ctrl+c             quit

Configuration lives in ~/.ayane/config.toml and is reloaded on save.`,
	Version:      versionString(),
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context(), &opts)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "config file (default ~/.ayane/config.toml)")
	f.StringVar(&opts.provider, "provider", "", "chat provider: openai or ollama")
	f.StringVarP(&opts.model, "model", "m", "", "chat model")
	f.StringVar(&opts.voice, "voice", "", "text-to-speech voice ID")
	f.BoolVar(&opts.debug, "debug", false, "write debug logs (default ~/.ayane/ayane.log)")
	f.StringVar(&opts.logFile, "log-file", "", "log file path")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.AddCommand(askCmd, speakCmd, versionCmd)
}

// =============================================================================
// TUI
// =============================================================================

func runTUI(parent context.Context, o *options) error {
	cfg, closer, err := o.prepare()
	if err != nil {
		return err
	}
	defer closer.Close()

	streamer, err := llm.New(cfg.Chat)
	if err != nil {
		return err
	}

	device := audio.SharedDevice()
	pipeline, err := playback.FromConfig(cfg.Speech, device)
	if err != nil {
		log.Warn("speech disabled", "err", err)
		pipeline = nil
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	m := chat.New(chat.Options{
		Config:   cfg,
		Streamer: streamer,
		Pipeline: pipeline,
		Device:   device,
		Context:  ctx,
	})
	defer m.Shutdown()

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, programOpts...)
	m.AttachProgram(p)

	if path, ok := o.watchPath(); ok {
		reload := func(c *config.Config, err error) {
			p.Send(chat.ConfigReloadedMsg{Config: c, Err: err})
		}
		if err := config.Watch(ctx, path, config.DefaultReloadDebounce, reload, o.overrides()...); err != nil {
			log.Warn("config hot reload unavailable", "path", path, "err", err)
		}
	}

	log.Info("starting",
		"version", version,
		"provider", streamer.Name(),
		"speech", pipeline != nil,
		"mouse", cfg.UI.Mouse,
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	return nil
}
