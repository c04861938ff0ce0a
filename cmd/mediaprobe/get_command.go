package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"mediaprobe/internal/extractor"
	"mediaprobe/internal/mediainfo"
)

// fieldValue is one extracted field: the JSON value and the table rows.
type fieldValue struct {
	value any
	rows  [][]string
}

type fieldGetter func(ctx context.Context, ext *extractor.Extractor, path string, allowCache bool) (fieldValue, error)

var fieldGetters = map[string]fieldGetter{
	"type": func(ctx context.Context, ext *extractor.Extractor, path string, allowCache bool) (fieldValue, error) {
		kind, err := ext.GetType(ctx, path, allowCache)
		return fieldValue{value: kind, rows: [][]string{{"type", formatOption(kind, func(k mediainfo.Kind) string { return string(k) })}}}, err
	},
	"duration": func(ctx context.Context, ext *extractor.Extractor, path string, allowCache bool) (fieldValue, error) {
		duration, err := ext.GetDuration(ctx, path, allowCache)
		return fieldValue{value: duration, rows: [][]string{{"duration", formatOption(duration, offsetString)}}}, err
	},
	"bitrate": func(ctx context.Context, ext *extractor.Extractor, path string, allowCache bool) (fieldValue, error) {
		bitrate, err := ext.GetBitrate(ctx, path, allowCache)
		return fieldValue{value: bitrate, rows: [][]string{{"bitrate", formatOption(bitrate, bitrateString)}}}, err
	},
	"start": func(ctx context.Context, ext *extractor.Extractor, path string, allowCache bool) (fieldValue, error) {
		start, err := ext.GetStart(ctx, path, allowCache)
		return fieldValue{value: start, rows: [][]string{{"start", formatOption(start, offsetString)}}}, err
	},
	"video": func(ctx context.Context, ext *extractor.Extractor, path string, allowCache bool) (fieldValue, error) {
		video, err := ext.GetVideoComponent(ctx, path, allowCache)
		rows := [][]string{{"video", absent}}
		if v, ok := video.Get(); ok {
			rows = videoRows(v)
		}
		return fieldValue{value: video, rows: rows}, err
	},
	"audio": func(ctx context.Context, ext *extractor.Extractor, path string, allowCache bool) (fieldValue, error) {
		audio, err := ext.GetAudioComponent(ctx, path, allowCache)
		rows := [][]string{{"audio", absent}}
		if a, ok := audio.Get(); ok {
			rows = audioRows(a)
		}
		return fieldValue{value: audio, rows: rows}, err
	},
}

func fieldNames() []string {
	names := lo.Keys(fieldGetters)
	sort.Strings(names)
	return names
}

func newGetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "get <field> <file>",
		Short:     "Show one field: " + strings.Join(fieldNames(), ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: fieldNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := strings.ToLower(strings.TrimSpace(args[0]))
			getter, ok := fieldGetters[field]
			if !ok {
				return fmt.Errorf("unknown field %q (want one of %s)", args[0], strings.Join(fieldNames(), ", "))
			}
			rt, err := ctx.ensureRuntime()
			if err != nil {
				return err
			}

			result, err := getter(cmd.Context(), rt.extractor, args[1], ctx.allowCache())
			if err != nil {
				return err
			}
			if outputFormat(ctx, cmd) == formatJSON {
				return writeJSON(cmd, map[string]any{
					"path":  args[1],
					"field": field,
					"value": result.value,
				})
			}
			if len(result.rows) == 1 {
				fmt.Fprintln(cmd.OutOrStdout(), result.rows[0][1])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{left("Field"), left("Value")}, result.rows))
			return nil
		},
	}
}
