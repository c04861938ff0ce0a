package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newHasCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "has <video|audio> <file>",
		Short:     "Report whether a file has a video or audio stream",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"video", "audio"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.ensureRuntime()
			if err != nil {
				return err
			}
			kind := strings.ToLower(strings.TrimSpace(args[0]))
			path := args[1]

			var present bool
			switch kind {
			case "video":
				present, err = rt.extractor.HasVideo(cmd.Context(), path, ctx.allowCache())
			case "audio":
				present, err = rt.extractor.HasAudio(cmd.Context(), path, ctx.allowCache())
			default:
				return fmt.Errorf("unknown stream kind %q (want video or audio)", args[0])
			}
			if err != nil {
				return err
			}

			if outputFormat(ctx, cmd) == formatJSON {
				return writeJSON(cmd, map[string]any{"path": path, "stream": kind, "present": present})
			}
			fmt.Fprintln(cmd.OutOrStdout(), yesNo(present))
			return nil
		},
	}
}
