package preflight

import (
	"context"
	"fmt"

	"mediaprobe/internal/config"
	"mediaprobe/internal/probecache"
)

// CheckProbeCache opens the persistent report cache and summarizes it.
func CheckProbeCache(ctx context.Context, cfg *config.Config) Result {
	const name = "Persistent cache"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Cache.Persistent {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	store, err := probecache.OpenPath(cfg.CacheDBPath(), cfg.Cache.MaxEntries)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.CacheDBPath(), err)}
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.CacheDBPath(), err)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d of %d entries)", stats.Path, stats.Entries, stats.MaxEntries),
	}
}
