package mediainfo

// Options tunes Parse.
type Options struct {
	// IsImage is consulted only when a video stream matched.
	IsImage func() bool
	// Report receives fields that matched but were dropped.
	Report Reporter
}

// Parse runs every rule over text and assembles the record. It never fails:
// anything missing or malformed is left absent.
func Parse(text string, opts Options) MediaInfo {
	duration := parseDuration(text, opts.Report)
	return MediaInfo{
		Kind:     ParseType(text, opts.IsImage).OrElse(KindUnknown),
		Duration: duration,
		Bitrate:  parseBitrate(text, opts.Report),
		Start:    parseStart(text, opts.Report),
		Video:    parseVideo(text, duration, opts.Report),
		Audio:    parseAudio(text, opts.Report),
	}
}
