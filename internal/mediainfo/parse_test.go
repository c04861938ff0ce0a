package mediainfo

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseAssemblesRecord(t *testing.T) {
	var reports []string
	info := Parse(mp4Report, Options{
		IsImage: func() bool { return false },
		Report:  func(field string, _ error) { reports = append(reports, field) },
	})
	if info.Kind != KindVideo {
		t.Fatalf("expected video, got %q", info.Kind)
	}
	if info.Bitrate.OrEmpty() != 1205 {
		t.Fatalf("expected bitrate 1205, got %v", info.Bitrate)
	}
	if info.Duration.MustGet().Seconds() != 10 {
		t.Fatalf("expected 10s, got %v", info.Duration)
	}
	if info.Start.MustGet().Seconds() != 0 {
		t.Fatalf("expected start 0, got %v", info.Start)
	}
	if info.Video.MustGet().FrameCount.OrEmpty() != 300 {
		t.Fatalf("expected 300 frames, got %v", info.Video.MustGet().FrameCount)
	}
	if info.Audio.MustGet().Codec.OrEmpty() == "" {
		t.Fatal("expected audio codec")
	}
	if len(reports) != 0 {
		t.Fatalf("expected a clean parse, got reports for %v", reports)
	}
}

func TestParseUnknownKind(t *testing.T) {
	info := Parse("Input #0, ffmetadata, from 'x.txt':\n  Duration: N/A, bitrate: N/A\n", Options{})
	if info.Kind != KindUnknown {
		t.Fatalf("expected unknown, got %q", info.Kind)
	}
	if info.Video.IsPresent() || info.Audio.IsPresent() {
		t.Fatal("expected no streams")
	}
	if info.Bitrate.OrEmpty() != BitrateUnknown {
		t.Fatalf("expected sentinel bitrate, got %v", info.Bitrate)
	}
}

func TestParseCRLFReport(t *testing.T) {
	info := Parse(mkvSurroundReport, Options{})
	video := info.Video.MustGet()
	if video.Width.OrEmpty() != 3840 || video.Height.OrEmpty() != 1608 {
		t.Fatalf("unexpected dimensions %v x %v", video.Width, video.Height)
	}
	if video.PixelAspectRatio.IsPresent() {
		t.Fatal("an unbracketed aspect ratio is not recognised")
	}
	if video.PixelFormat.OrEmpty() != "yuv420p10le(tv)" {
		t.Fatalf("unexpected pixel format %v", video.PixelFormat)
	}
	audio := info.Audio.MustGet()
	if audio.ChannelCount.OrEmpty() != 6 {
		t.Fatalf("expected 6 channels, got %v", audio.ChannelCount)
	}
}

func TestCloneDoesNotShareMetadata(t *testing.T) {
	info := Parse(mp4Report, Options{})
	clone := info.Clone()
	clone.Video.MustGet().Metadata.Set("handler_name", "changed")
	clone.Video.MustGet().TimeBases[RateFPS] = 1

	video := info.Video.MustGet()
	if v, _ := video.Metadata.Get("handler_name"); v != "VideoHandler" {
		t.Fatalf("original metadata changed to %q", v)
	}
	if video.TimeBases[RateFPS] != 30 {
		t.Fatalf("original time bases changed to %v", video.TimeBases[RateFPS])
	}
}

func TestMediaInfoJSON(t *testing.T) {
	payload, err := json.Marshal(Parse(mp3Report, Options{}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(payload)
	for _, want := range []string{`"type":"audio"`, `"video":null`, `"metadata":{"title":"Song (Remastered)","artist":"Band"}`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
}
