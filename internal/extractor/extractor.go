package extractor

import (
	"context"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/mo"
	"github.com/spf13/afero"

	"mediaprobe/internal/fileutil"
	"mediaprobe/internal/imageprobe"
	"mediaprobe/internal/logging"
	"mediaprobe/internal/mediainfo"
	"mediaprobe/internal/rawtext"
	"mediaprobe/internal/services"
	"mediaprobe/internal/timecode"
)

const defaultCapacity = 1024

// Fetcher supplies raw reports.
type Fetcher interface {
	Fetch(ctx context.Context, path string, allowCache bool) (rawtext.Blob, error)
	Forget(path string) int
	Purge()
	Stats() rawtext.Stats
}

// ImageProbe decides whether a file with a video stream is a still image.
type ImageProbe interface {
	LooksLikeImage(path string) bool
}

// Stats summarizes both cache layers.
type Stats struct {
	Entries  int           `json:"entries"`
	Capacity int           `json:"capacity"`
	Hits     uint64        `json:"hits"`
	Misses   uint64        `json:"misses"`
	Raw      rawtext.Stats `json:"raw"`
}

type record struct {
	fingerprint string
	info        mediainfo.MediaInfo
}

// Option configures the extractor.
type Option func(*Extractor)

// WithFS sets the filesystem used for path canonicalization and the default
// image probe. It should match the fetcher's.
func WithFS(fs afero.Fs) Option {
	return func(e *Extractor) {
		if fs != nil {
			e.fs = fs
		}
	}
}

// WithImageProbe replaces the header-sniffing image probe.
func WithImageProbe(probe ImageProbe) Option {
	return func(e *Extractor) {
		e.images = probe
	}
}

// WithCapacity bounds the result cache.
func WithCapacity(entries int) Option {
	return func(e *Extractor) {
		if entries > 0 {
			e.capacity = entries
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// Extractor answers media questions about files.
type Extractor struct {
	fetcher  Fetcher
	fs       afero.Fs
	images   ImageProbe
	capacity int
	results  *lru.Cache[string, record]
	logger   *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New constructs an extractor on top of fetcher.
func New(fetcher Fetcher, opts ...Option) (*Extractor, error) {
	if fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "extractor", "init", "fetcher required", nil)
	}
	e := &Extractor{
		fetcher:  fetcher,
		fs:       afero.NewOsFs(),
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = logging.NewComponentLogger(e.logger, "extractor")
	if e.images == nil {
		e.images = imageprobe.New(e.fs, e.logger)
	}
	results, err := lru.New[string, record](e.capacity)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "extractor", "init", "result cache", err)
	}
	e.results = results
	return e, nil
}

// GetInformation returns the full record for path.
func (e *Extractor) GetInformation(ctx context.Context, path string, allowCache bool) (mediainfo.MediaInfo, error) {
	info, _, err := e.information(ctx, "get_information", path, allowCache)
	if err != nil {
		return mediainfo.MediaInfo{}, err
	}
	return info.Clone(), nil
}

// GetType classifies path. None means the report had no recognizable
// stream.
func (e *Extractor) GetType(ctx context.Context, path string, allowCache bool) (mo.Option[mediainfo.Kind], error) {
	info, _, err := e.information(ctx, "get_type", path, allowCache)
	if err != nil {
		return mo.None[mediainfo.Kind](), err
	}
	if info.Kind == mediainfo.KindUnknown {
		return mo.None[mediainfo.Kind](), nil
	}
	return mo.Some(info.Kind), nil
}

// GetDuration returns the container duration.
func (e *Extractor) GetDuration(ctx context.Context, path string, allowCache bool) (mo.Option[timecode.Offset], error) {
	return field(ctx, e, "get_duration", path, allowCache,
		func(info mediainfo.MediaInfo) mo.Option[timecode.Offset] { return info.Duration },
		mediainfo.ParseDuration,
	)
}

// GetBitrate returns the container bitrate in kb/s; mediainfo.BitrateUnknown
// when ffmpeg printed N/A.
func (e *Extractor) GetBitrate(ctx context.Context, path string, allowCache bool) (mo.Option[int64], error) {
	return field(ctx, e, "get_bitrate", path, allowCache,
		func(info mediainfo.MediaInfo) mo.Option[int64] { return info.Bitrate },
		mediainfo.ParseBitrate,
	)
}

// GetStart returns the container start offset.
func (e *Extractor) GetStart(ctx context.Context, path string, allowCache bool) (mo.Option[timecode.Offset], error) {
	return field(ctx, e, "get_start", path, allowCache,
		func(info mediainfo.MediaInfo) mo.Option[timecode.Offset] { return info.Start },
		mediainfo.ParseStart,
	)
}

// GetVideoComponent returns the first video stream.
func (e *Extractor) GetVideoComponent(ctx context.Context, path string, allowCache bool) (mo.Option[mediainfo.VideoStream], error) {
	video, err := field(ctx, e, "get_video_component", path, allowCache,
		func(info mediainfo.MediaInfo) mo.Option[mediainfo.VideoStream] { return info.Video },
		func(text string) mo.Option[mediainfo.VideoStream] {
			return mediainfo.ParseVideo(text, mediainfo.ParseDuration(text))
		},
	)
	if v, ok := video.Get(); ok {
		return mo.Some(v.Clone()), err
	}
	return video, err
}

// GetAudioComponent returns the first audio stream.
func (e *Extractor) GetAudioComponent(ctx context.Context, path string, allowCache bool) (mo.Option[mediainfo.AudioStream], error) {
	audio, err := field(ctx, e, "get_audio_component", path, allowCache,
		func(info mediainfo.MediaInfo) mo.Option[mediainfo.AudioStream] { return info.Audio },
		mediainfo.ParseAudio,
	)
	if a, ok := audio.Get(); ok {
		return mo.Some(a.Clone()), err
	}
	return audio, err
}

// HasVideo reports whether any stream line mentions Video, even one the
// stream parser cannot read.
func (e *Extractor) HasVideo(ctx context.Context, path string, allowCache bool) (bool, error) {
	blob, err := e.fetch(ctx, "has_video", path, allowCache)
	if err != nil {
		return false, err
	}
	return mediainfo.HasVideo(blob.Text), nil
}

// HasAudio reports whether any stream line mentions Audio.
func (e *Extractor) HasAudio(ctx context.Context, path string, allowCache bool) (bool, error) {
	blob, err := e.fetch(ctx, "has_audio", path, allowCache)
	if err != nil {
		return false, err
	}
	return mediainfo.HasAudio(blob.Text), nil
}

// Invalidate drops every cached result and raw report for path.
func (e *Extractor) Invalidate(path string) {
	canonical := fileutil.Canonical(e.fs, path)
	removed := e.results.Remove(canonical)
	raw := e.fetcher.Forget(canonical)
	e.logger.Debug("cache invalidated",
		logging.String(logging.FieldPath, canonical),
		logging.Bool("result_removed", removed),
		logging.Int("raw_removed", raw),
	)
}

// Clear empties both in-memory layers.
func (e *Extractor) Clear() {
	e.results.Purge()
	e.fetcher.Purge()
}

// Stats reports cache counters.
func (e *Extractor) Stats() Stats {
	return Stats{
		Entries:  e.results.Len(),
		Capacity: e.capacity,
		Hits:     e.hits.Load(),
		Misses:   e.misses.Load(),
		Raw:      e.fetcher.Stats(),
	}
}

// field serves one value from a still-valid cached record, or runs the single
// rule over the raw report.
func field[T any](ctx context.Context, e *Extractor, operation, path string, allowCache bool, fromRecord func(mediainfo.MediaInfo) T, rule func(string) T) (T, error) {
	var zero T
	blob, err := e.fetch(ctx, operation, path, allowCache)
	if err != nil {
		return zero, err
	}
	if allowCache {
		if info, ok := e.cached(blob); ok {
			return fromRecord(info), nil
		}
	}
	return rule(blob.Text), nil
}

func (e *Extractor) information(ctx context.Context, operation, path string, allowCache bool) (mediainfo.MediaInfo, rawtext.Blob, error) {
	blob, err := e.fetch(ctx, operation, path, allowCache)
	if err != nil {
		return mediainfo.MediaInfo{}, rawtext.Blob{}, err
	}
	if allowCache {
		if info, ok := e.cached(blob); ok {
			return info, blob, nil
		}
	}
	e.misses.Add(1)

	logger := e.operationLogger(ctx, operation, blob.Path).With(logging.String(logging.FieldProbeID, blob.ProbeID))
	info := mediainfo.Parse(blob.Text, mediainfo.Options{
		IsImage: func() bool { return e.images.LooksLikeImage(blob.Path) },
		Report:  dropReporter(logger),
	})
	e.results.Add(blob.Path, record{fingerprint: blob.Fingerprint, info: info})
	logger.Debug("media information derived",
		logging.String(logging.FieldEventType, "information_derived"),
		logging.String("kind", string(info.Kind)),
		logging.String("raw_source", string(blob.Source)),
	)
	return info, blob, nil
}

func (e *Extractor) cached(blob rawtext.Blob) (mediainfo.MediaInfo, bool) {
	rec, ok := e.results.Get(blob.Path)
	if !ok || rec.fingerprint != blob.Fingerprint {
		return mediainfo.MediaInfo{}, false
	}
	e.hits.Add(1)
	return rec.info, true
}

func (e *Extractor) fetch(ctx context.Context, operation, path string, allowCache bool) (rawtext.Blob, error) {
	ctx = services.WithOperation(ctx, operation)
	blob, err := e.fetcher.Fetch(ctx, path, allowCache)
	if err != nil {
		e.operationLogger(ctx, operation, path).Debug("fetch failed",
			logging.String(logging.FieldEventType, "fetch_failed"),
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
		return rawtext.Blob{}, err
	}
	return blob, nil
}

func (e *Extractor) operationLogger(ctx context.Context, operation, path string) *slog.Logger {
	ctx = services.WithPath(services.WithOperation(ctx, operation), path)
	return logging.WithContext(ctx, e.logger)
}

func dropReporter(logger *slog.Logger) mediainfo.Reporter {
	return func(field string, err error) {
		logger.Debug("field dropped",
			logging.String(logging.FieldEventType, "field_dropped"),
			logging.String("field", field),
			logging.Error(err),
		)
	}
}
