// Package logging assembles structured slog loggers and formatting helpers
// used across mediaprobe.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so probe and extraction code
// tags log lines with the file path, operation, and correlation id. A no-op
// logger is provided for tests and library callers that do not log.
package logging
