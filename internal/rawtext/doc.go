// Package rawtext fetches the raw `ffmpeg -i` report for a file.
//
// Reports are cached by content fingerprint (sha256 + mtime) in a bounded
// in-memory LRU and, optionally, in the persistent SQLite tier. Concurrent
// fetches of the same fingerprint share one ffmpeg invocation; processes that
// share a cache directory coordinate through lock files so a report is probed
// once and then read from the persistent tier.
package rawtext
