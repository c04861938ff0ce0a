package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mediaprobe/internal/config"
	"mediaprobe/internal/extractor"
	"mediaprobe/internal/logging"
	"mediaprobe/internal/probecache"
	"mediaprobe/internal/rawtext"
	"mediaprobe/internal/services"
	"mediaprobe/internal/services/ffmpeg"
)

type commandContext struct {
	configFlag *string
	formatFlag *string
	noCache    *bool
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	runtimeOnce sync.Once
	runtime     *probeRuntime
	runtimeErr  error
}

// probeRuntime is the wired extraction stack for one CLI invocation.
type probeRuntime struct {
	logger    *slog.Logger
	client    *ffmpeg.Client
	store     *probecache.Store
	fetcher   *rawtext.Fetcher
	extractor *extractor.Extractor
}

func newCommandContext(configFlag, formatFlag *string, noCache, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		formatFlag: formatFlag,
		noCache:    noCache,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.verbose != nil && *c.verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) allowCache() bool {
	return c.noCache == nil || !*c.noCache
}

func (c *commandContext) format() string {
	if c.formatFlag == nil {
		return formatAuto
	}
	return strings.ToLower(strings.TrimSpace(*c.formatFlag))
}

// ensureRuntime builds the ffmpeg client, caches and extractor on first use.
func (c *commandContext) ensureRuntime() (*probeRuntime, error) {
	c.runtimeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.runtimeErr = err
			return
		}
		c.runtime, c.runtimeErr = openRuntime(cfg)
	})
	return c.runtime, c.runtimeErr
}

func openRuntime(cfg *config.Config) (*probeRuntime, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	client, err := ffmpeg.New(cfg.FFmpeg.Binary, cfg.ProbeTimeout())
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	rt := &probeRuntime{logger: logger, client: client}
	fetchOpts := []rawtext.Option{
		rawtext.WithFS(fs),
		rawtext.WithCapacity(cfg.Cache.RawEntries),
		rawtext.WithLogger(logger),
	}
	if cfg.Cache.Persistent {
		store, err := probecache.Open(cfg)
		if err != nil {
			// The persistent tier is an optimization; run without it.
			logging.WarnWithContext(logger, "persistent cache unavailable", "cache_open_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache.dir or run `mediaprobe cache clear`"),
				logging.String(logging.FieldImpact, "reports are cached in memory only"),
			)
		} else {
			rt.store = store
			fetchOpts = append(fetchOpts, rawtext.WithStore(store, cfg.LockDir()))
		}
	}

	rt.fetcher, err = rawtext.New(client, fetchOpts...)
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.extractor, err = extractor.New(rt.fetcher,
		extractor.WithFS(fs),
		extractor.WithCapacity(cfg.Cache.ResultEntries),
		extractor.WithLogger(logger),
	)
	if err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

func (r *probeRuntime) close() error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Close()
}

func (c *commandContext) close() error {
	if c.runtime == nil {
		return nil
	}
	return c.runtime.close()
}

// openStore opens the persistent cache for maintenance commands.
func (c *commandContext) openStore() (*probecache.Store, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	if !cfg.Cache.Persistent {
		return nil, "Persistent cache is disabled (set [cache] persistent = true in config.toml)", nil
	}
	store, err := probecache.Open(cfg)
	if err != nil {
		return nil, "", err
	}
	return store, "", nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitCode maps failures to process exit codes: 2 for files that could not
// be found or read, 3 when ffmpeg itself failed, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrNotReadable):
		return 2
	case services.IsFileFailure(err):
		return 3
	default:
		return 1
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
