package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.Binary == "" {
		return errors.New("ffmpeg.binary must be set")
	}
	if c.FFmpeg.ProbeTimeout < 0 {
		return errors.New("ffmpeg.probe_timeout must be zero (no deadline) or positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.RawEntries <= 0 {
		return errors.New("cache.raw_entries must be positive")
	}
	if c.Cache.ResultEntries <= 0 {
		return errors.New("cache.result_entries must be positive")
	}
	if c.Cache.Persistent {
		if c.Cache.Dir == "" {
			return errors.New("cache.dir must be set when cache.persistent is true")
		}
		if c.Cache.MaxEntries <= 0 {
			return errors.New("cache.max_entries must be positive when cache.persistent is true")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
