package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediaprobe/internal/deps"
	"mediaprobe/internal/preflight"
	"mediaprobe/internal/services/ffmpeg"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

const statusLabelWidth = 20

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check ffmpeg and the cache directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var versioner deps.Versioner
			if client, err := ffmpeg.New(cfg.FFmpeg.Binary, cfg.ProbeTimeout()); err == nil {
				versioner = client
			}
			results := preflight.RunAll(cmd.Context(), cfg, versioner)

			var failure error
			if preflight.Failed(results) {
				failure = errors.New("one or more checks failed")
			}
			if outputFormat(ctx, cmd) == formatJSON {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
				return failure
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r, colorize))
			}
			return failure
		},
	}
}

func renderStatusLine(r preflight.Result, colorize bool) string {
	label, color := "ERROR", ansiRed
	if r.Passed {
		label, color = "OK", ansiGreen
	}
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, r.Name+":", label)
	if r.Detail != "" {
		line += " " + r.Detail
	}
	if colorize {
		return color + line + ansiReset
	}
	return line
}
