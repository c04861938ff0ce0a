package mediainfo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/mo"

	"mediaprobe/internal/services"
)

// ParseAudio extracts the first audio stream.
func ParseAudio(text string) mo.Option[AudioStream] {
	return parseAudio(text, nil)
}

func parseAudio(text string, report Reporter) mo.Option[AudioStream] {
	stream, ok := findStream(audioStreamPattern, text)
	if !ok {
		return mo.None[AudioStream]()
	}

	audio := AudioStream{Metadata: NewMetadata()}
	var claimed []string

	if token, layout, ok := matchLayout(stream.line); ok {
		claimed = append(claimed, token)
		audio.Layout = mo.Some(layout)
		audio.ChannelCount = mo.Some(layout.Channels())
	}
	if token, number, ok := matchNumberUnit(sampleRatePattern, stream.line); ok {
		claimed = append(claimed, token)
		audio.SampleRateHz = parseAudioNumber("audio.sample_rate", number, report)
	}
	if token, number, ok := matchNumberUnit(kbpsPattern, stream.line); ok {
		claimed = append(claimed, token)
		audio.BitrateKbps = parseAudioNumber("audio.bitrate", number, report)
	}

	leftovers := ClassifyLeftovers(stream.rest, claimed...)
	if len(leftovers) > 0 {
		audio.Codec = mo.Some(leftovers[0])
	} else {
		report.report("audio.codec", fmt.Errorf("%w: no codec token in %q", services.ErrMalformedStream, stream.line))
	}

	if meta, ok := metadataAfter(text, stream.end, streamMarker, atLeastMarker); ok {
		audio.Metadata = meta
	} else if strings.Contains(text, metadataHeader) {
		if meta, ok := containerMetadata(text); ok {
			audio.Metadata = meta
		}
	}
	return mo.Some(audio)
}

func parseAudioNumber(field, raw string, report Reporter) mo.Option[float64] {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		report.report(field, fmt.Errorf("%w: %q: %v", services.ErrParseFailure, raw, err))
		return mo.None[float64]()
	}
	return mo.Some(value)
}
