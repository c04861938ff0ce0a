// Package config loads, normalizes, and validates mediaprobe configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the MEDIAPROBE_FFMPEG environment fallback for the
// ffmpeg executable. The CLI and library wiring obtain every knob through the
// Config type so cache sizes and timeouts are validated in one place.
package config
