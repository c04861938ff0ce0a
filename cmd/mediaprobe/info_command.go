package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediaprobe/internal/mediainfo"
	"mediaprobe/internal/services"
)

type infoResult struct {
	Path        string               `json:"path"`
	Information *mediainfo.MediaInfo `json:"information,omitempty"`
	Error       string               `json:"error,omitempty"`
	ErrorKind   string               `json:"error_kind,omitempty"`
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Show everything ffmpeg reports about files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.ensureRuntime()
			if err != nil {
				return err
			}

			results := make([]infoResult, 0, len(args))
			var errs []error
			for _, path := range args {
				info, err := rt.extractor.GetInformation(cmd.Context(), path, ctx.allowCache())
				if err != nil {
					errs = append(errs, err)
					results = append(results, infoResult{Path: path, Error: err.Error(), ErrorKind: services.Kind(err)})
					continue
				}
				results = append(results, infoResult{Path: path, Information: &info})
			}

			if outputFormat(ctx, cmd) == formatJSON {
				var payload any = results
				if len(results) == 1 {
					payload = results[0]
				}
				if err := writeJSON(cmd, payload); err != nil {
					return err
				}
				return errors.Join(errs...)
			}

			out := cmd.OutOrStdout()
			for i, result := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, result.Path)
				if result.Information == nil {
					fmt.Fprintf(out, "  error: %s\n", result.Error)
					continue
				}
				fmt.Fprintln(out, renderTable([]column{left("Field"), left("Value")}, informationRows(*result.Information)))
			}
			return errors.Join(errs...)
		},
	}
}
