package rawtext_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mediaprobe/internal/rawtext"
	"mediaprobe/internal/services"
	"mediaprobe/internal/testsupport"
)

const sampleReport = `Input #0, mov,mp4,m4a,3gp,3g2,mj2, from '/media/clip.mp4':
  Duration: 00:00:10.00, start: 0.000000, bitrate: 1205 kb/s
    Stream #0:0(und): Video: h264 (High) (avc1 / 0x31637661), yuv420p, 1280x720 [SAR 1:1 DAR 16:9], 1000 kb/s, 25 fps, 25 tbr, 12800 tbn, 50 tbc (default)`

var mtime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newFixture(t *testing.T, opts ...rawtext.Option) (*rawtext.Fetcher, *testsupport.FakeProber, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	testsupport.WriteMedia(t, fs, "/media/clip.mp4", "frames", mtime)
	prober := testsupport.NewFakeProber()
	prober.SetReport("/media/clip.mp4", sampleReport)

	fetcher, err := rawtext.New(prober, append([]rawtext.Option{rawtext.WithFS(fs)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return fetcher, prober, fs
}

func TestNewRequiresProber(t *testing.T) {
	if _, err := rawtext.New(nil); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFetchCachesByFingerprint(t *testing.T) {
	fetcher, prober, _ := newFixture(t)
	ctx := context.Background()

	first, err := fetcher.Fetch(ctx, "/media/clip.mp4", true)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if first.Source != rawtext.SourceProbe {
		t.Fatalf("expected probe source, got %s", first.Source)
	}
	if first.Text != sampleReport {
		t.Fatalf("unexpected text %q", first.Text)
	}
	if first.ProbeID == "" || first.Fingerprint == "" {
		t.Fatalf("expected probe id and fingerprint, got %+v", first)
	}

	second, err := fetcher.Fetch(ctx, "/media/clip.mp4", true)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if second.Source != rawtext.SourceMemory {
		t.Fatalf("expected memory source, got %s", second.Source)
	}
	if second.ProbeID != first.ProbeID {
		t.Fatalf("cached blob should keep probe id %s, got %s", first.ProbeID, second.ProbeID)
	}
	if calls := prober.Calls("/media/clip.mp4"); calls != 1 {
		t.Fatalf("expected one probe, got %d", calls)
	}

	stats := fetcher.Stats()
	if stats.Probes != 1 || stats.MemoryHits != 1 || stats.Entries != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestFetchReprobesAfterContentChange(t *testing.T) {
	fetcher, prober, fs := newFixture(t)
	ctx := context.Background()

	first, err := fetcher.Fetch(ctx, "/media/clip.mp4", true)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	// Same mtime, different bytes.
	testsupport.WriteMedia(t, fs, "/media/clip.mp4", "other frames", mtime)

	second, err := fetcher.Fetch(ctx, "/media/clip.mp4", true)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if second.Fingerprint == first.Fingerprint {
		t.Fatal("fingerprint should change with content")
	}
	if second.Source != rawtext.SourceProbe {
		t.Fatalf("expected fresh probe, got %s", second.Source)
	}
	if calls := prober.Calls("/media/clip.mp4"); calls != 2 {
		t.Fatalf("expected two probes, got %d", calls)
	}
}

func TestFetchWithoutCacheAlwaysProbes(t *testing.T) {
	fetcher, prober, _ := newFixture(t)
	ctx := context.Background()

	for i := range 3 {
		blob, err := fetcher.Fetch(ctx, "/media/clip.mp4", false)
		if err != nil {
			t.Fatalf("Fetch %d: %v", i, err)
		}
		if blob.Source != rawtext.SourceProbe {
			t.Fatalf("fetch %d: expected probe, got %s", i, blob.Source)
		}
	}
	if calls := prober.Calls("/media/clip.mp4"); calls != 3 {
		t.Fatalf("expected three probes, got %d", calls)
	}

	// The uncached fetch still refreshes the memory tier.
	blob, err := fetcher.Fetch(ctx, "/media/clip.mp4", true)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if blob.Source != rawtext.SourceMemory {
		t.Fatalf("expected memory hit after refresh, got %s", blob.Source)
	}
}

func TestFetchEmptyReportIsNoData(t *testing.T) {
	fetcher, prober, _ := newFixture(t)
	prober.SetReport("/media/clip.mp4", "")

	_, err := fetcher.Fetch(context.Background(), "/media/clip.mp4", true)
	if !errors.Is(err, services.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if fetcher.Stats().Entries != 0 {
		t.Fatal("failed fetch must not be cached")
	}
}

func TestFetchMissingFile(t *testing.T) {
	fetcher, prober, _ := newFixture(t)

	_, err := fetcher.Fetch(context.Background(), "/media/missing.mkv", true)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if prober.TotalCalls() != 0 {
		t.Fatal("missing file must not reach ffmpeg")
	}
}

func TestFetchPropagatesProbeError(t *testing.T) {
	fetcher, prober, _ := newFixture(t)
	boom := services.Wrap(services.ErrExternalTool, "ffmpeg", "probe", "exit status 127", nil)
	prober.SetError("/media/clip.mp4", boom)

	_, err := fetcher.Fetch(context.Background(), "/media/clip.mp4", true)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestConcurrentFetchesShareOneProbe(t *testing.T) {
	fetcher, prober, _ := newFixture(t)
	prober.Gate = make(chan struct{})
	prober.Started = make(chan string, 4)

	var wg sync.WaitGroup
	results := make([]rawtext.Blob, 4)
	errs := make([]error, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = fetcher.Fetch(context.Background(), "/media/clip.mp4", true)
		}(i)
	}

	<-prober.Started
	time.Sleep(20 * time.Millisecond)
	close(prober.Gate)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if results[i].ProbeID != results[0].ProbeID {
			t.Fatalf("fetch %d saw probe %s, want %s", i, results[i].ProbeID, results[0].ProbeID)
		}
	}
	if calls := prober.Calls("/media/clip.mp4"); calls != 1 {
		t.Fatalf("expected a single probe, got %d", calls)
	}
}

func TestFetchHonoursCallerCancellation(t *testing.T) {
	fetcher, prober, _ := newFixture(t)
	prober.Gate = make(chan struct{})
	prober.Started = make(chan string, 1)
	t.Cleanup(func() { close(prober.Gate) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := fetcher.Fetch(ctx, "/media/clip.mp4", true)
		done <- err
	}()

	<-prober.Started
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch did not return after cancellation")
	}
}

func TestPersistentTierSurvivesFetchers(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithPersistentCache(100))
	store := testsupport.MustOpenProbeCache(t, cfg)

	first, prober, fs := newFixture(t, rawtext.WithStore(store, cfg.LockDir()))
	blob, err := first.Fetch(context.Background(), "/media/clip.mp4", true)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if prober.Calls("/media/clip.mp4") != 1 {
		t.Fatal("expected first fetcher to probe")
	}

	other := testsupport.NewFakeProber()
	second, err := rawtext.New(other, rawtext.WithFS(fs), rawtext.WithStore(store, cfg.LockDir()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	again, err := second.Fetch(context.Background(), "/media/clip.mp4", true)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if again.Source != rawtext.SourcePersistent {
		t.Fatalf("expected persistent source, got %s", again.Source)
	}
	if again.Text != sampleReport || again.ProbeID != blob.ProbeID {
		t.Fatalf("persistent blob mismatch: %+v", again)
	}
	if other.TotalCalls() != 0 {
		t.Fatal("second fetcher should not probe")
	}
	if second.Stats().PersistentHits != 1 {
		t.Fatalf("unexpected stats %+v", second.Stats())
	}
}

func TestForgetAndPurge(t *testing.T) {
	ids := []string{"probe-a", "probe-b", "probe-c"}
	next := 0
	fetcher, prober, fs := newFixture(t, rawtext.WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))
	testsupport.WriteMedia(t, fs, "/media/song.mp3", "samples", mtime)
	prober.SetReport("/media/song.mp3", "Input #0, mp3, from '/media/song.mp3':\n    Stream #0:0: Audio: mp3, 44100 Hz, stereo, fltp, 320 kb/s")
	ctx := context.Background()

	for _, path := range []string{"/media/clip.mp4", "/media/song.mp3"} {
		if _, err := fetcher.Fetch(ctx, path, true); err != nil {
			t.Fatalf("Fetch %s: %v", path, err)
		}
	}
	if removed := fetcher.Forget("/media/clip.mp4"); removed != 1 {
		t.Fatalf("expected one entry forgotten, got %d", removed)
	}
	if removed := fetcher.Forget("/media/clip.mp4"); removed != 0 {
		t.Fatalf("second forget removed %d", removed)
	}

	blob, err := fetcher.Fetch(ctx, "/media/clip.mp4", true)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if blob.ProbeID != "probe-c" {
		t.Fatalf("expected re-probe after forget, got %s", blob.ProbeID)
	}

	fetcher.Purge()
	if fetcher.Stats().Entries != 0 {
		t.Fatal("purge should empty the memory tier")
	}
}

func TestForgetKeepsEntryOwnedByIdenticalCopy(t *testing.T) {
	fetcher, prober, fs := newFixture(t)
	testsupport.WriteMedia(t, fs, "/backup/clip.mp4", "frames", mtime)
	ctx := context.Background()

	if _, err := fetcher.Fetch(ctx, "/media/clip.mp4", true); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	copyBlob, err := fetcher.Fetch(ctx, "/backup/clip.mp4", true)
	if err != nil {
		t.Fatalf("Fetch copy: %v", err)
	}
	if copyBlob.Source != rawtext.SourceMemory || copyBlob.Path != "/backup/clip.mp4" {
		t.Fatalf("expected shared memory entry under the copy's path, got %+v", copyBlob)
	}

	if removed := fetcher.Forget("/backup/clip.mp4"); removed != 0 {
		t.Fatalf("copy does not own the entry, removed %d", removed)
	}
	if removed := fetcher.Forget("/media/clip.mp4"); removed != 1 {
		t.Fatalf("expected the first path to own the entry, removed %d", removed)
	}
	if calls := prober.TotalCalls(); calls != 1 {
		t.Fatalf("expected one probe, got %d", calls)
	}
}
