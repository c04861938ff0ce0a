// Package ffmpeg runs `ffmpeg -i` against a media file and returns the report
// it prints.
//
// ffmpeg writes the report to stderr and exits non-zero when no output file
// is given. The client merges both streams into one ordered line sequence and
// only treats the exit status as a failure when nothing was printed.
//
// Prefer this package over ad-hoc exec.Command usage so timeouts and error
// classification stay consistent.
package ffmpeg
