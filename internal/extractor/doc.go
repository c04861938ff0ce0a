// Package extractor is the public surface for reading media information.
//
// Each getter fetches the raw ffmpeg report through rawtext and applies the
// matching rule from mediainfo. Full records are kept in a bounded per-path
// cache together with the fingerprint they were derived from; a record is
// only reused while the file's fingerprint is unchanged.
package extractor
