// Package preflight provides readiness checks for the ffmpeg binary and the
// filesystem paths mediaprobe writes to.
//
// The CLI "mediaprobe status" command runs RunAll and prints one row per
// check. Checks for optional features are skipped when the feature is
// disabled in config.
package preflight
