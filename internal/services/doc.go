// Package services defines shared utilities consumed by the probing pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp file paths, operations, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so callers can tell a file
//     that could not be probed at all apart from a field that is simply absent.
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform.
package services
