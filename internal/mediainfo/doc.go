// Package mediainfo turns the human-readable report that `ffmpeg -i` prints
// into a typed MediaInfo record.
//
// The report is not a grammar: fields are positional, optional, and separated
// by commas that also occur inside values. Extraction is therefore split into
// small rules that each read the same immutable text:
//   - ParseType, ParseDuration, ParseBitrate, ParseStart: container scalars
//   - ParseVideo, ParseAudio: the first video/audio stream line
//   - HasVideo, HasAudio: cheap existence checks that never depend on the
//     stream descriptor being well formed
//
// Tokens on a stream line that no field matcher claims are classified by
// position (see ClassifyLeftovers): the first is the codec, the second the
// pixel format for video.
//
// Rules never fail. A value that matched but could not be converted, or a
// stream line missing expected tokens, leaves the field absent and is
// reported through Options.Report.
package mediainfo
