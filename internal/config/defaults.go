package config

const (
	defaultConfigPath         = "~/.config/mediaprobe/config.toml"
	defaultFFmpegBinary       = "ffmpeg"
	defaultProbeTimeout       = 30
	defaultRawEntries         = 256
	defaultResultEntries      = 1024
	defaultPersistentMaxItems = 10000
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"

	// FFmpegEnv supplies ffmpeg.binary when the config leaves it empty.
	FFmpegEnv = "MEDIAPROBE_FFMPEG"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		FFmpeg: FFmpeg{
			ProbeTimeout: defaultProbeTimeout,
		},
		Cache: Cache{
			RawEntries:    defaultRawEntries,
			ResultEntries: defaultResultEntries,
			Dir:           defaultCacheDir(),
			MaxEntries:    defaultPersistentMaxItems,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
