package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediaprobe/internal/probecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the persistent report cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))

	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show persistent cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(ctx, cmd, func(store *probecache.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if outputFormat(ctx, cmd) == formatJSON {
					return writeJSON(cmd, stats)
				}
				const stampLayout = "2006-01-02 15:04"
				oldest, newest := absent, absent
				if !stats.Oldest.IsZero() {
					oldest = stats.Oldest.Local().Format(stampLayout)
					newest = stats.Newest.Local().Format(stampLayout)
				}
				rows := [][]string{
					{"Database", stats.Path},
					{"Entries", fmt.Sprintf("%d / %d", stats.Entries, stats.MaxEntries)},
					{"Report size", humanBytes(stats.ReportBytes)},
					{"Hits", strconv.FormatInt(stats.Hits, 10)},
					{"Oldest", oldest},
					{"Newest", newest},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{left("Cache"), left("Value")}, rows))
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every persisted report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(ctx, cmd, func(store *probecache.Store) error {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				return reportRemoved(ctx, cmd, "cleared", removed)
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Drop least recently used reports beyond the limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(ctx, cmd, func(store *probecache.Store) error {
				limit := keep
				if limit < 0 {
					cfg, err := ctx.ensureConfig()
					if err != nil {
						return err
					}
					limit = cfg.Cache.MaxEntries
				}
				removed, err := store.Prune(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return reportRemoved(ctx, cmd, "pruned", removed)
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", -1, "Entries to keep (defaults to cache.max_entries)")
	return cmd
}

func withStore(ctx *commandContext, cmd *cobra.Command, fn func(*probecache.Store) error) error {
	store, warn, err := ctx.openStore()
	if warn != "" {
		fmt.Fprintln(cmd.OutOrStdout(), warn)
	}
	if err != nil || store == nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func reportRemoved(ctx *commandContext, cmd *cobra.Command, action string, removed int64) error {
	if outputFormat(ctx, cmd) == formatJSON {
		return writeJSON(cmd, map[string]any{"action": action, "removed": removed})
	}
	if removed == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No cache entries removed")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
	return nil
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div, exp := int64(unit), 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(v)/float64(div), "KMGTPE"[exp])
}
