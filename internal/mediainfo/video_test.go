package mediainfo

import (
	"errors"
	"reflect"
	"testing"

	"github.com/samber/mo"

	"mediaprobe/internal/services"
	"mediaprobe/internal/timecode"
)

func TestParseVideoDescriptor(t *testing.T) {
	video, ok := ParseVideo(h264VideoLine, mo.None[timecode.Offset]()).Get()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if video.Width.OrEmpty() != 1920 || video.Height.OrEmpty() != 1080 {
		t.Fatalf("unexpected dimensions %v x %v", video.Width, video.Height)
	}
	if got := video.Codec.OrEmpty(); got != "h264 (High)" {
		t.Fatalf("expected codec h264 (High), got %q", got)
	}
	if got := video.PixelFormat.OrEmpty(); got != "yuv420p" {
		t.Fatalf("expected pixel format yuv420p, got %q", got)
	}
	if video.PixelAspectRatio.OrEmpty() != "1:1" || video.DisplayAspectRatio.OrEmpty() != "16:9" {
		t.Fatalf("unexpected aspect ratios %v %v", video.PixelAspectRatio, video.DisplayAspectRatio)
	}
	want := map[RateKind]float64{RateFPS: 30, RateTBR: 30, RateTBN: 1000, RateTBC: 60}
	if !reflect.DeepEqual(video.TimeBases, want) {
		t.Fatalf("expected time bases %v, got %v", want, video.TimeBases)
	}
	if video.FrameRate.OrEmpty() != 30 {
		t.Fatalf("expected frame rate 30, got %v", video.FrameRate)
	}
	if video.FrameCount.IsPresent() {
		t.Fatal("frame count needs a duration")
	}
	if video.Metadata.Len() != 0 {
		t.Fatalf("expected no metadata, got %v", video.Metadata.Keys())
	}
}

func TestParseVideoFromFullReport(t *testing.T) {
	video := ParseVideo(mp4Report, ParseDuration(mp4Report)).MustGet()
	if got := video.Codec.OrEmpty(); got != "h264 (High) (avc1 / 0x31637661)" {
		t.Fatalf("unexpected codec %q", got)
	}
	if got := video.PixelFormat.OrEmpty(); got != "yuv420p(tv, bt709)" {
		t.Fatalf("unexpected pixel format %q", got)
	}
	if got := video.FrameCount.OrEmpty(); got != 300 {
		t.Fatalf("expected 300 frames, got %d", got)
	}
	if got := video.TimeBases[RateTBN]; got != 15360 {
		t.Fatalf("expected tbn 15360, got %v", got)
	}
	if keys := video.Metadata.Keys(); !reflect.DeepEqual(keys, []string{"handler_name", "vendor_id"}) {
		t.Fatalf("unexpected metadata keys %v", keys)
	}
	if v, _ := video.Metadata.Get("handler_name"); v != "VideoHandler" {
		t.Fatalf("unexpected handler_name %q", v)
	}
}

func TestParseVideoPrefersTBRWithoutFPS(t *testing.T) {
	line := "  Stream #0:0: Video: mpeg2video (Main), yuv420p, 720x576, 25 tbr, 90k tbn, 50 tbc\n"
	video := ParseVideo(line, mo.None[timecode.Offset]()).MustGet()
	if video.FrameRate.OrEmpty() != 25 {
		t.Fatalf("expected tbr frame rate, got %v", video.FrameRate)
	}
	if video.TimeBases[RateTBN] != 90000 {
		t.Fatalf("expected 90k tbn, got %v", video.TimeBases[RateTBN])
	}
}

func TestParseVideoWithoutRates(t *testing.T) {
	video := ParseVideo("Stream #0:0: Video: png, rgba, 64x64\n", mo.Some(timecode.FromSeconds(4))).MustGet()
	if video.FrameRate.IsPresent() || video.FrameCount.IsPresent() {
		t.Fatalf("expected no frame rate or count, got %v %v", video.FrameRate, video.FrameCount)
	}
	if len(video.TimeBases) != 0 {
		t.Fatalf("expected empty time bases, got %v", video.TimeBases)
	}
}

func TestFrameCountFollowsDuration(t *testing.T) {
	rate := mo.Some(30.0)
	if got := FrameCount(mo.Some(timecode.FromSeconds(10)), rate).OrEmpty(); got != 300 {
		t.Fatalf("expected 300, got %d", got)
	}
	if got := FrameCount(mo.Some(timecode.FromSeconds(12.5)), rate).OrEmpty(); got != 375 {
		t.Fatalf("expected 375, got %d", got)
	}
	if got := FrameCount(mo.Some(timecode.FromSeconds(1.01)), rate).OrEmpty(); got != 31 {
		t.Fatalf("expected ceil to 31, got %d", got)
	}
	if FrameCount(mo.None[timecode.Offset](), rate).IsPresent() {
		t.Fatal("expected none without duration")
	}
	if FrameCount(mo.Some(timecode.FromSeconds(10)), mo.None[float64]()).IsPresent() {
		t.Fatal("expected none without rate")
	}

	first := ParseVideo(h264VideoLine, mo.Some(timecode.FromSeconds(10))).MustGet()
	second := ParseVideo(h264VideoLine, mo.Some(timecode.FromSeconds(20))).MustGet()
	if first.FrameCount.OrEmpty() != 300 || second.FrameCount.OrEmpty() != 600 {
		t.Fatalf("expected 300 then 600, got %v then %v", first.FrameCount, second.FrameCount)
	}
}

func TestParseVideoToleratesMissingTokens(t *testing.T) {
	var reports []error
	report := Reporter(func(_ string, err error) { reports = append(reports, err) })

	video := parseVideo("  Stream #0:0: Video: 1920x1080, 30 fps\n", mo.None[timecode.Offset](), report).MustGet()
	if video.Codec.IsPresent() || video.PixelFormat.IsPresent() {
		t.Fatalf("expected codec and pixel format absent, got %v %v", video.Codec, video.PixelFormat)
	}
	if video.Width.OrEmpty() != 1920 {
		t.Fatalf("other fields must survive, width=%v", video.Width)
	}
	if len(reports) != 2 {
		t.Fatalf("expected two reports, got %v", reports)
	}
	for _, err := range reports {
		if !errors.Is(err, services.ErrMalformedStream) {
			t.Fatalf("expected malformed stream, got %v", err)
		}
	}

	video = parseVideo("  Stream #0:0: Video: vp9, yuv420p, 1280x720, 1.2.3 fps, 30 tbr\n", mo.None[timecode.Offset](), report).MustGet()
	if _, ok := video.TimeBases[RateFPS]; ok {
		t.Fatal("unparseable fps must be skipped")
	}
	if video.FrameRate.OrEmpty() != 30 {
		t.Fatalf("expected tbr fallback, got %v", video.FrameRate)
	}
	if !errors.Is(reports[len(reports)-1], services.ErrParseFailure) {
		t.Fatalf("expected parse failure report, got %v", reports[len(reports)-1])
	}
}

func TestParseVideoAbsent(t *testing.T) {
	if ParseVideo(mp3Report, ParseDuration(mp3Report)).IsPresent() {
		t.Fatal("mp3 has no video stream")
	}
}

func TestParseVideoIgnoresUnterminatedMetadata(t *testing.T) {
	text := "  Stream #0:0: Video: h264, yuv420p, 320x240\n    Metadata:\n      title : tail\n"
	video := ParseVideo(text, mo.None[timecode.Offset]()).MustGet()
	if video.Metadata.Len() != 0 {
		t.Fatalf("expected unterminated block to be ignored, got %v", video.Metadata.Keys())
	}
}

func TestParseVideoMetadataNeedsFollowingStream(t *testing.T) {
	text := "  Stream #0:0: Video: h264, yuv420p, 64x64, 25 fps, 25 tbr, 12800 tbn\n" +
		"    Metadata:\n" +
		"      handler_name    : VideoHandler\n" +
		"At least one output file must be specified\n"
	video := ParseVideo(text, mo.None[timecode.Offset]()).MustGet()
	if video.Metadata.Len() != 0 {
		t.Fatalf("expected no metadata without a following stream, got %v", video.Metadata.Keys())
	}
	if got := video.Codec.OrEmpty(); got != "h264" {
		t.Fatalf("expected codec h264, got %q", got)
	}
}

func TestParseVideoBareMarker(t *testing.T) {
	text := "  Stream #0:0: Video:\n"
	if got := ParseType(text, nil); got.OrElse(KindUnknown) != KindVideo {
		t.Fatalf("expected video type, got %v", got)
	}
	video, ok := ParseVideo(text, mo.None[timecode.Offset]()).Get()
	if !ok {
		t.Fatal("expected a video stream")
	}
	if video.Codec.IsPresent() || video.Width.IsPresent() {
		t.Fatalf("expected empty descriptor, got %+v", video)
	}
}
