// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/ayane-chat/internal/audio"
	"github.com/jeranaias/ayane-chat/internal/playback"
	"github.com/jeranaias/ayane-chat/internal/tts"
)

// errSpeechDisabled is returned when [speech] is turned off.
var errSpeechDisabled = errors.New("speech is disabled; set speech.enabled = true")

var speakCmd = &cobra.Command{
	Use:     "speak <text>",
	Short:   "Read text aloud with the configured voice",
	Example: `  ayane speak --voice EXAVITQu4vr4xnSDxMaL "How can I help?"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closer, err := opts.prepare()
		if err != nil {
			return err
		}
		defer closer.Close()

		pipeline, err := playback.FromConfig(cfg.Speech, audio.SharedDevice())
		if err != nil {
			return err
		}
		return runSpeak(cmd.Context(), pipeline, strings.Join(args, " "))
	},
}

// runSpeak plays text once and blocks until playback ends.
func runSpeak(ctx context.Context, pipeline *playback.Pipeline, text string) error {
	if pipeline == nil {
		return errSpeechDisabled
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to say")
	}
	if err := pipeline.Play(ctx, playback.NewAdapter(), tts.Request{Text: text}); err != nil {
		return fmt.Errorf("%s: %w", playback.FailureNotice, err)
	}
	return nil
}
