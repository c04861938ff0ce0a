package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// FFmpeg configures the external probe.
type FFmpeg struct {
	Binary string `toml:"binary" json:"binary"`
	// ProbeTimeout is in seconds; 0 disables the deadline.
	ProbeTimeout int `toml:"probe_timeout" json:"probe_timeout"`
}

// Cache configures the raw-text and result caches.
type Cache struct {
	// RawEntries bounds the in-memory raw report cache (by fingerprint).
	RawEntries int `toml:"raw_entries" json:"raw_entries"`
	// ResultEntries bounds the per-path MediaInfo cache.
	ResultEntries int `toml:"result_entries" json:"result_entries"`
	// Persistent enables the SQLite raw report store under Dir.
	Persistent bool   `toml:"persistent" json:"persistent"`
	Dir        string `toml:"dir" json:"dir"`
	// MaxEntries bounds the persistent store; oldest rows are pruned first.
	MaxEntries int `toml:"max_entries" json:"max_entries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" json:"format"`
	Level  string `toml:"level" json:"level"`
	// Dir, when set, receives a JSON copy of every log line.
	Dir string `toml:"dir" json:"dir"`
}

// Config encapsulates all configuration values for mediaprobe.
type Config struct {
	FFmpeg  FFmpeg  `toml:"ffmpeg" json:"ffmpeg"`
	Cache   Cache   `toml:"cache" json:"cache"`
	Logging Logging `toml:"logging" json:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediaprobe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories when they are used.
func (c *Config) EnsureDirectories() error {
	if c.Cache.Persistent {
		if err := os.MkdirAll(c.Cache.Dir, 0o755); err != nil {
			return fmt.Errorf("create cache directory %q: %w", c.Cache.Dir, err)
		}
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		if err := os.MkdirAll(c.Logging.Dir, 0o755); err != nil {
			return fmt.Errorf("create log directory %q: %w", c.Logging.Dir, err)
		}
	}
	return nil
}

// ProbeTimeout returns the per-probe deadline as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.FFmpeg.ProbeTimeout) * time.Second
}

// CacheDBPath returns the SQLite file backing the persistent raw cache.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.Cache.Dir, "probes.db")
}

// LockDir returns the directory holding per-fingerprint probe locks.
func (c *Config) LockDir() string {
	return filepath.Join(c.Cache.Dir, "locks")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "mediaprobe")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/mediaprobe"
	}
	return filepath.Join(home, ".cache", "mediaprobe")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}
