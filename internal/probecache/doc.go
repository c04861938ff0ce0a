// Package probecache persists raw ffmpeg reports in SQLite, keyed by content
// fingerprint, so separate processes sharing a cache directory reuse each
// other's probes.
//
// Rows are pruned least-recently-used first once the configured entry limit
// is exceeded. The schema is versioned; a mismatch asks the user to clear the
// cache rather than migrating it.
package probecache
