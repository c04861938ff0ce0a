package mediainfo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/mo"

	"mediaprobe/internal/services"
	"mediaprobe/internal/timecode"
)

// Reporter receives per-field irregularities. The field stays absent; the
// callback only exists so callers can log what was dropped.
type Reporter func(field string, err error)

func (r Reporter) report(field string, err error) {
	if r != nil && err != nil {
		r(field, err)
	}
}

// ParseType classifies the report by its first stream line. A video stream
// wins over an audio stream; isImage, when non-nil, upgrades a video match to
// KindImage. None means no stream line matched at all.
func ParseType(text string, isImage func() bool) mo.Option[Kind] {
	if _, ok := findStream(videoStreamPattern, text); ok {
		if isImage != nil && isImage() {
			return mo.Some(KindImage)
		}
		return mo.Some(KindVideo)
	}
	if _, ok := findStream(audioStreamPattern, text); ok {
		return mo.Some(KindAudio)
	}
	return mo.None[Kind]()
}

// ParseDuration reads the first "Duration: hh:mm:ss.mmm," announcement.
func ParseDuration(text string) mo.Option[timecode.Offset] {
	return parseDuration(text, nil)
}

func parseDuration(text string, report Reporter) mo.Option[timecode.Offset] {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return mo.None[timecode.Offset]()
	}
	value := strings.TrimSpace(m[1])
	if isNotAvailable(value) {
		return mo.None[timecode.Offset]()
	}
	offset, err := timecode.FromTimecode(value)
	if err != nil {
		report.report("duration", fmt.Errorf("%w: duration %q: %v", services.ErrParseFailure, value, err))
		return mo.None[timecode.Offset]()
	}
	return mo.Some(offset)
}

// ParseBitrate reads "bitrate: <value>". Digits yield kb/s exactly as printed,
// N/A yields BitrateUnknown, and a missing announcement yields None.
func ParseBitrate(text string) mo.Option[int64] {
	return parseBitrate(text, nil)
}

func parseBitrate(text string, report Reporter) mo.Option[int64] {
	m := bitratePattern.FindStringSubmatch(text)
	if m == nil {
		return mo.None[int64]()
	}
	value := strings.TrimSpace(m[1])
	if isNotAvailable(value) {
		return mo.Some(BitrateUnknown)
	}
	digits := leadingDigits(value)
	if digits == "" {
		report.report("bitrate", fmt.Errorf("%w: bitrate %q", services.ErrParseFailure, value))
		return mo.None[int64]()
	}
	kbps, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		report.report("bitrate", fmt.Errorf("%w: bitrate %q: %v", services.ErrParseFailure, value, err))
		return mo.None[int64]()
	}
	return mo.Some(kbps)
}

// ParseStart reads "start: <seconds>".
func ParseStart(text string) mo.Option[timecode.Offset] {
	return parseStart(text, nil)
}

func parseStart(text string, report Reporter) mo.Option[timecode.Offset] {
	m := startPattern.FindStringSubmatch(text)
	if m == nil {
		return mo.None[timecode.Offset]()
	}
	value := strings.TrimSpace(m[1])
	if isNotAvailable(value) {
		return mo.None[timecode.Offset]()
	}
	offset, err := timecode.ParseSeconds(value)
	if err != nil {
		report.report("start", fmt.Errorf("%w: start %q: %v", services.ErrParseFailure, value, err))
		return mo.None[timecode.Offset]()
	}
	return mo.Some(offset)
}

// HasVideo reports whether any stream line mentions video. It does not
// depend on the descriptor being well formed.
func HasVideo(text string) bool {
	return hasVideoPattern.MatchString(text)
}

// HasAudio reports whether any stream line mentions audio.
func HasAudio(text string) bool {
	return hasAudioPattern.MatchString(text)
}
