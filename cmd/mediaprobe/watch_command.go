package main

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"mediaprobe/internal/extractor"
	"mediaprobe/internal/services"
	"mediaprobe/internal/watch"
)

type watchEvent struct {
	Path      string `json:"path"`
	Op        string `json:"op"`
	Type      string `json:"type,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <path>...",
		Short: "Invalidate cached results and re-read files as they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.ensureRuntime()
			if err != nil {
				return err
			}
			jsonOut := outputFormat(ctx, cmd) == formatJSON

			var mu sync.Mutex
			report := func(path string, op fsnotify.Op) {
				event := describeChange(cmd, rt.extractor, path, op)
				mu.Lock()
				defer mu.Unlock()
				if jsonOut {
					_ = writeJSON(cmd, event)
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatWatchEvent(event))
			}

			watcher, err := watch.New(rt.extractor, watch.WithLogger(rt.logger), watch.WithNotify(report))
			if err != nil {
				return err
			}
			for _, path := range args {
				if err := watcher.Add(path); err != nil {
					return err
				}
			}
			return watcher.Run(cmd.Context())
		},
	}
}

// describeChange re-reads a changed file so the output shows its new state.
// Removed files and half-written files report the failure instead.
func describeChange(cmd *cobra.Command, ext *extractor.Extractor, path string, op fsnotify.Op) watchEvent {
	event := watchEvent{Path: path, Op: op.String()}
	if op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename) {
		return event
	}
	info, err := ext.GetInformation(cmd.Context(), path, true)
	if err != nil {
		event.Error = err.Error()
		event.ErrorKind = services.Kind(err)
		return event
	}
	event.Type = string(info.Kind)
	event.Duration = formatOption(info.Duration, offsetString)
	return event
}

func formatWatchEvent(e watchEvent) string {
	switch {
	case e.Error != "":
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.ErrorKind)
	case e.Type == "":
		return fmt.Sprintf("%s %s", e.Op, e.Path)
	default:
		return fmt.Sprintf("%s %s: %s %s", e.Op, e.Path, e.Type, e.Duration)
	}
}
