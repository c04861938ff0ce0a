package mediainfo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"mediaprobe/internal/services"
	"mediaprobe/internal/timecode"
)

// ParseVideo extracts the first video stream. duration is the container
// duration used to derive the frame count; pass None when unknown.
func ParseVideo(text string, duration mo.Option[timecode.Offset]) mo.Option[VideoStream] {
	return parseVideo(text, duration, nil)
}

func parseVideo(text string, duration mo.Option[timecode.Offset], report Reporter) mo.Option[VideoStream] {
	stream, ok := findStream(videoStreamPattern, text)
	if !ok {
		return mo.None[VideoStream]()
	}

	video := VideoStream{
		TimeBases: make(map[RateKind]float64),
		Metadata:  NewMetadata(),
	}
	var claimed []string

	if dim, ok := matchDimensions(stream.rest); ok {
		claimed = append(claimed, dim.token)
		video.Width = parseDimension("video.width", dim.width, report)
		video.Height = parseDimension("video.height", dim.height, report)
	}

	bases := matchTimeBases(stream.line)
	tokens := lo.Map(bases, func(b timeBase, _ int) string { return b.token })
	if len(tokens) > 0 {
		claimed = append(claimed, strings.Join(tokens, ", "))
		claimed = append(claimed, tokens...)
	}
	for _, base := range bases {
		rate, err := parseRate(base.raw)
		if err != nil {
			report.report("video.time_bases."+string(base.kind),
				fmt.Errorf("%w: %s %q: %v", services.ErrParseFailure, base.kind, base.raw, err))
			continue
		}
		video.TimeBases[base.kind] = rate
	}

	if par, dar, ok := matchAspectRatio(stream.line); ok {
		video.PixelAspectRatio = mo.Some(par)
		video.DisplayAspectRatio = mo.Some(dar)
	}

	leftovers := ClassifyLeftovers(stream.rest, claimed...)
	if len(leftovers) > 0 {
		video.Codec = mo.Some(leftovers[0])
	} else {
		report.report("video.codec", fmt.Errorf("%w: no codec token in %q", services.ErrMalformedStream, stream.line))
	}
	if len(leftovers) > 1 {
		video.PixelFormat = mo.Some(leftovers[1])
	} else {
		report.report("video.pixel_format", fmt.Errorf("%w: no pixel format token in %q", services.ErrMalformedStream, stream.line))
	}

	video.FrameRate = frameRate(video.TimeBases)
	video.FrameCount = FrameCount(duration, video.FrameRate)

	if meta, ok := metadataAfter(text, stream.end, streamMarker); ok {
		video.Metadata = meta
	}
	return mo.Some(video)
}

func parseDimension(field, raw string, report Reporter) mo.Option[uint32] {
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		report.report(field, fmt.Errorf("%w: %q: %v", services.ErrParseFailure, raw, err))
		return mo.None[uint32]()
	}
	return mo.Some(uint32(value))
}

// frameRate prefers fps over tbr.
func frameRate(bases map[RateKind]float64) mo.Option[float64] {
	if fps, ok := bases[RateFPS]; ok {
		return mo.Some(fps)
	}
	if tbr, ok := bases[RateTBR]; ok {
		return mo.Some(tbr)
	}
	return mo.None[float64]()
}

// FrameCount derives ceil(duration * rate). It is None unless both inputs
// are known and the product is a representable frame count.
func FrameCount(duration mo.Option[timecode.Offset], rate mo.Option[float64]) mo.Option[uint64] {
	d, okDuration := duration.Get()
	r, okRate := rate.Get()
	if !okDuration || !okRate {
		return mo.None[uint64]()
	}
	frames := math.Ceil(d.Seconds() * r)
	if math.IsNaN(frames) || math.IsInf(frames, 0) || frames < 0 || frames >= math.MaxUint64 {
		return mo.None[uint64]()
	}
	return mo.Some(uint64(frames))
}
