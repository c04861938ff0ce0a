package preflight

import (
	"context"

	"mediaprobe/internal/config"
	"mediaprobe/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// v reports the ffmpeg version; nil skips the version call.
func RunAll(ctx context.Context, cfg *config.Config, v deps.Versioner) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckFFmpeg(ctx, cfg.FFmpeg.Binary, v)}

	if cfg.Cache.Persistent {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Cache.Dir))
		results = append(results, CheckProbeCache(ctx, cfg))
	}
	if cfg.Logging.Dir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Logging.Dir))
	}
	return results
}

// Failed reports whether any check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
