package main

import (
	"fmt"

	"mediaprobe/internal/mediainfo"
	"mediaprobe/internal/timecode"
)

var rateOrder = []mediainfo.RateKind{mediainfo.RateFPS, mediainfo.RateTBR, mediainfo.RateTBN, mediainfo.RateTBC}

func offsetString(o timecode.Offset) string {
	return o.String()
}

func bitrateString(v int64) string {
	if v == mediainfo.BitrateUnknown {
		return "N/A"
	}
	return fmt.Sprintf("%d kb/s", v)
}

// informationRows flattens a record into field/value rows for table output.
func informationRows(info mediainfo.MediaInfo) [][]string {
	rows := [][]string{
		{"type", string(info.Kind)},
		{"duration", formatOption(info.Duration, offsetString)},
		{"bitrate", formatOption(info.Bitrate, bitrateString)},
		{"start", formatOption(info.Start, offsetString)},
	}
	if video, ok := info.Video.Get(); ok {
		rows = append(rows, videoRows(video)...)
	}
	if audio, ok := info.Audio.Get(); ok {
		rows = append(rows, audioRows(audio)...)
	}
	return rows
}

func videoRows(v mediainfo.VideoStream) [][]string {
	size := absent
	if w, ok := v.Width.Get(); ok {
		if h, ok := v.Height.Get(); ok {
			size = fmt.Sprintf("%dx%d", w, h)
		}
	}
	rows := [][]string{
		{"video.codec", formatOption(v.Codec, identity)},
		{"video.pixel_format", formatOption(v.PixelFormat, identity)},
		{"video.size", size},
		{"video.pixel_aspect_ratio", formatOption(v.PixelAspectRatio, identity)},
		{"video.display_aspect_ratio", formatOption(v.DisplayAspectRatio, identity)},
		{"video.frame_rate", formatOption(v.FrameRate, formatFloat)},
		{"video.frame_count", formatOption(v.FrameCount, formatInt)},
	}
	for _, kind := range rateOrder {
		if rate, ok := v.TimeBases[kind]; ok {
			rows = append(rows, []string{"video." + string(kind), formatFloat(rate)})
		}
	}
	return append(rows, metadataRows("video.metadata.", v.Metadata)...)
}

func audioRows(a mediainfo.AudioStream) [][]string {
	rows := [][]string{
		{"audio.codec", formatOption(a.Codec, identity)},
		{"audio.layout", formatOption(a.Layout, func(l mediainfo.Layout) string { return string(l) })},
		{"audio.channels", formatOption(a.ChannelCount, formatInt)},
		{"audio.sample_rate", formatOption(a.SampleRateHz, func(v float64) string { return formatFloat(v) + " Hz" })},
		{"audio.bitrate", formatOption(a.BitrateKbps, func(v float64) string { return formatFloat(v) + " kb/s" })},
	}
	return append(rows, metadataRows("audio.metadata.", a.Metadata)...)
}

func metadataRows(prefix string, meta *mediainfo.Metadata) [][]string {
	if meta == nil {
		return nil
	}
	rows := make([][]string, 0, meta.Len())
	meta.Each(func(key, value string) {
		rows = append(rows, []string{prefix + key, value})
	})
	return rows
}
