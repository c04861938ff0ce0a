package mediainfo

import (
	"errors"
	"math"
	"testing"

	"mediaprobe/internal/services"
)

func TestParseDuration(t *testing.T) {
	got, ok := ParseDuration("  Duration: 00:01:23.450, start: 0.000000, bitrate: 128 kb/s").Get()
	if !ok {
		t.Fatal("expected duration")
	}
	if math.Abs(got.Seconds()-83.45) > 1e-9 {
		t.Fatalf("expected 83.45s, got %v", got.Seconds())
	}
}

func TestParseDurationAbsent(t *testing.T) {
	cases := map[string]string{
		"missing":   "Input #0, wav, from 'a.wav':\n",
		"n/a":       pngReport,
		"malformed": "  Duration: soon, bitrate: 1 kb/s\n",
	}
	for name, text := range cases {
		if ParseDuration(text).IsPresent() {
			t.Fatalf("%s: expected no duration", name)
		}
	}
}

func TestParseDurationReportsMalformed(t *testing.T) {
	var fields []string
	report := Reporter(func(field string, err error) {
		if !errors.Is(err, services.ErrParseFailure) {
			t.Fatalf("expected parse failure, got %v", err)
		}
		fields = append(fields, field)
	})
	parseDuration("  Duration: 00:99:00.00, start: 0\n", report)
	if len(fields) != 1 || fields[0] != "duration" {
		t.Fatalf("unexpected reports %v", fields)
	}
}

func TestParseBitrate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int64
		some bool
	}{
		{name: "numeric", text: "  Duration: 00:00:01.00, start: 0.0, bitrate: 128,", want: 128, some: true},
		{name: "with unit", text: "  Duration: 00:00:01.00, bitrate: 1205 kb/s\n", want: 1205, some: true},
		{name: "not available", text: "  Duration: N/A, bitrate: N/A\n", want: BitrateUnknown, some: true},
		{name: "lowercase n/a", text: "bitrate: n/a\n", want: BitrateUnknown, some: true},
		{name: "missing", text: "  Duration: 00:00:01.00, start: 0.0\n"},
		{name: "garbage", text: "bitrate: fast\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBitrate(tt.text).Get()
			if ok != tt.some {
				t.Fatalf("expected present=%v, got %v", tt.some, ok)
			}
			if ok && got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParseBitrateNotAvailableIsNotNone(t *testing.T) {
	got := ParseBitrate(pngReport)
	if got.IsAbsent() {
		t.Fatal("N/A bitrate must be the -1 sentinel, not absent")
	}
	if got.MustGet() != -1 {
		t.Fatalf("expected -1, got %d", got.MustGet())
	}
}

func TestParseStart(t *testing.T) {
	got, ok := ParseStart(mp3Report).Get()
	if !ok {
		t.Fatal("expected start")
	}
	if math.Abs(got.Seconds()-0.025057) > 1e-9 {
		t.Fatalf("expected 0.025057, got %v", got.Seconds())
	}
	if ParseStart(pngReport).IsPresent() {
		t.Fatal("expected no start when the report has none")
	}
	if ParseStart("start: later,").IsPresent() {
		t.Fatal("expected malformed start to be absent")
	}
}

func TestParseType(t *testing.T) {
	never := func() bool { return false }
	always := func() bool { return true }

	if got := ParseType(mp4Report, never); got.OrElse(KindUnknown) != KindVideo {
		t.Fatalf("expected video, got %v", got)
	}
	if got := ParseType(pngReport, always); got.OrElse(KindUnknown) != KindImage {
		t.Fatalf("expected image, got %v", got)
	}
	if got := ParseType(mp3Report, always); got.OrElse(KindUnknown) != KindAudio {
		t.Fatalf("expected audio, got %v", got)
	}
	if got := ParseType("Input #0, data, from 'x':\n", never); got.IsPresent() {
		t.Fatalf("expected none, got %v", got)
	}
}

func TestParseTypeOnlyProbesImageForVideo(t *testing.T) {
	calls := 0
	ParseType(mp3Report, func() bool {
		calls++
		return true
	})
	if calls != 0 {
		t.Fatalf("image probe should not run for audio, ran %d times", calls)
	}
}

func TestHasStreamsToleratesMalformedDescriptors(t *testing.T) {
	text := "  Stream #0:0: Video: 0x0\n  Stream #0:1: Audio:\n"
	if !HasVideo(text) || !HasAudio(text) {
		t.Fatal("expected both streams to be detected")
	}
	if HasVideo(mp3Report) {
		t.Fatal("mp3 has no video")
	}
	if HasAudio(pngReport) {
		t.Fatal("png has no audio")
	}
}
