package rawtext

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"mediaprobe/internal/fileutil"
	"mediaprobe/internal/logging"
	"mediaprobe/internal/probecache"
	"mediaprobe/internal/services"
	"mediaprobe/internal/services/ffmpeg"
)

const (
	defaultCapacity = 256
	defaultLockWait = 2 * time.Minute
	lockRetryDelay  = 50 * time.Millisecond
)

// Source tells where a blob came from.
type Source string

const (
	SourceMemory     Source = "memory"
	SourcePersistent Source = "persistent"
	SourceProbe      Source = "probe"
)

// Blob is one report together with the file identity it was produced for.
type Blob struct {
	Path        string    `json:"path"`
	Fingerprint string    `json:"fingerprint"`
	Text        string    `json:"-"`
	ProbeID     string    `json:"probe_id"`
	Source      Source    `json:"source"`
	ProbedAt    time.Time `json:"probed_at"`
}

// Store is the persistent tier.
type Store interface {
	Get(ctx context.Context, fingerprint string) (probecache.Entry, bool, error)
	Put(ctx context.Context, entry probecache.Entry) error
}

// Stats counts cache outcomes since construction.
type Stats struct {
	Entries        int    `json:"entries"`
	Capacity       int    `json:"capacity"`
	MemoryHits     uint64 `json:"memory_hits"`
	PersistentHits uint64 `json:"persistent_hits"`
	Probes         uint64 `json:"probes"`
	SharedWaits    uint64 `json:"shared_waits"`
}

// Option configures the fetcher.
type Option func(*Fetcher)

// WithFS swaps the filesystem used to resolve and hash files.
func WithFS(fs afero.Fs) Option {
	return func(f *Fetcher) {
		if fs != nil {
			f.fs = fs
		}
	}
}

// WithCapacity bounds the in-memory tier.
func WithCapacity(entries int) Option {
	return func(f *Fetcher) {
		if entries > 0 {
			f.capacity = entries
		}
	}
}

// WithStore enables the persistent tier. lockDir, when non-empty, holds the
// lock files used to serialize probes across processes.
func WithStore(store Store, lockDir string) Option {
	return func(f *Fetcher) {
		f.store = store
		f.lockDir = strings.TrimSpace(lockDir)
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithIDGenerator overrides probe id generation (tests).
func WithIDGenerator(gen func() string) Option {
	return func(f *Fetcher) {
		if gen != nil {
			f.newID = gen
		}
	}
}

// Fetcher implements the raw report fetch with caching.
type Fetcher struct {
	fs       afero.Fs
	prober   ffmpeg.Prober
	capacity int
	memory   *lru.Cache[string, Blob]
	group    singleflight.Group
	store    Store
	lockDir  string
	lockWait time.Duration
	logger   *slog.Logger
	newID    func() string

	memoryHits     atomic.Uint64
	persistentHits atomic.Uint64
	probes         atomic.Uint64
	sharedWaits    atomic.Uint64
}

// New constructs a fetcher around prober.
func New(prober ffmpeg.Prober, opts ...Option) (*Fetcher, error) {
	if prober == nil {
		return nil, services.Wrap(services.ErrConfiguration, "rawtext", "init", "prober required", nil)
	}
	f := &Fetcher{
		fs:       afero.NewOsFs(),
		prober:   prober,
		capacity: defaultCapacity,
		lockWait: defaultLockWait,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.NewComponentLogger(f.logger, "rawtext")

	memory, err := lru.New[string, Blob](f.capacity)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "rawtext", "init", "memory cache", err)
	}
	f.memory = memory
	return f, nil
}

// FS returns the filesystem the fetcher reads through.
func (f *Fetcher) FS() afero.Fs {
	return f.fs
}

// Fetch returns the report for path. With allowCache false both cache tiers
// are skipped for the lookup and refreshed with the new report.
func (f *Fetcher) Fetch(ctx context.Context, path string, allowCache bool) (Blob, error) {
	id, err := fileutil.Identify(f.fs, path)
	if err != nil {
		return Blob{}, err
	}
	ctx = services.WithPath(ctx, id.Path)
	logger := logging.WithContext(ctx, f.logger)

	if allowCache {
		if blob, ok := f.memory.Get(id.Fingerprint); ok {
			f.memoryHits.Add(1)
			logger.Debug("report served from memory", logging.String(logging.FieldFingerprint, id.Fingerprint))
			blob.Path = id.Path
			blob.Source = SourceMemory
			return blob, nil
		}
	}

	key := id.Fingerprint
	if !allowCache {
		key += "#refresh"
	}
	// The shared load must outlive any single waiter; each waiter still
	// honours its own ctx below.
	loadCtx := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		return f.load(loadCtx, id, allowCache)
	})

	select {
	case res := <-ch:
		if res.Shared {
			f.sharedWaits.Add(1)
		}
		if res.Err != nil {
			return Blob{}, res.Err
		}
		blob := res.Val.(Blob)
		blob.Path = id.Path
		return blob, nil
	case <-ctx.Done():
		return Blob{}, ctx.Err()
	}
}

func (f *Fetcher) load(ctx context.Context, id fileutil.Identity, allowCache bool) (Blob, error) {
	logger := logging.WithContext(ctx, f.logger).With(logging.String(logging.FieldFingerprint, id.Fingerprint))

	if allowCache {
		if blob, ok := f.fromStore(ctx, logger, id); ok {
			return blob, nil
		}
	}

	unlock := f.lock(ctx, logger, id.Fingerprint)
	defer unlock()

	if allowCache {
		// Another process may have probed while we waited for the lock.
		if blob, ok := f.fromStore(ctx, logger, id); ok {
			return blob, nil
		}
	}

	probeID := f.newID()
	started := time.Now()
	logger.Debug("probe started",
		logging.String(logging.FieldEventType, "probe_started"),
		logging.String(logging.FieldProbeID, probeID),
	)
	lines, err := f.prober.Probe(ctx, id.Path)
	f.probes.Add(1)
	if err != nil {
		return Blob{}, err
	}
	text := strings.Join(lines, "\n")
	if strings.TrimSpace(text) == "" {
		return Blob{}, services.Wrap(services.ErrNoData, "rawtext", "fetch", "ffmpeg printed nothing for "+id.Path, nil)
	}

	blob := Blob{
		Path:        id.Path,
		Fingerprint: id.Fingerprint,
		Text:        text,
		ProbeID:     probeID,
		Source:      SourceProbe,
		ProbedAt:    started,
	}
	f.memory.Add(id.Fingerprint, blob)
	if f.store != nil {
		entry := probecache.Entry{Fingerprint: id.Fingerprint, Path: id.Path, ProbeID: probeID, Report: text, CreatedAt: started}
		if err := f.store.Put(ctx, entry); err != nil {
			logging.WarnWithContext(logger, "persistent cache write failed", "cache_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check cache.dir permissions or run `mediaprobe cache clear`"),
				logging.String(logging.FieldImpact, "report kept in memory only"),
			)
		}
	}
	logger.Info("probe finished",
		logging.String(logging.FieldEventType, "probe_finished"),
		logging.String(logging.FieldProbeID, probeID),
		logging.Int("lines", len(lines)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return blob, nil
}

func (f *Fetcher) fromStore(ctx context.Context, logger *slog.Logger, id fileutil.Identity) (Blob, bool) {
	if f.store == nil {
		return Blob{}, false
	}
	entry, ok, err := f.store.Get(ctx, id.Fingerprint)
	if err != nil {
		logging.WarnWithContext(logger, "persistent cache read failed", "cache_read_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "file will be probed again"),
		)
		return Blob{}, false
	}
	if !ok {
		return Blob{}, false
	}
	f.persistentHits.Add(1)
	blob := Blob{
		Path:        id.Path,
		Fingerprint: entry.Fingerprint,
		Text:        entry.Report,
		ProbeID:     entry.ProbeID,
		Source:      SourcePersistent,
		ProbedAt:    entry.CreatedAt,
	}
	f.memory.Add(id.Fingerprint, blob)
	logger.Debug("report served from persistent cache", logging.String(logging.FieldProbeID, entry.ProbeID))
	return blob, true
}

// lock takes the cross-process probe lock for fingerprint. Lock files are
// bucketed by the first two hex digits so the directory stays bounded. If
// the lock cannot be taken the probe runs unlocked; a duplicate probe is
// only wasted work.
func (f *Fetcher) lock(ctx context.Context, logger *slog.Logger, fingerprint string) func() {
	if f.lockDir == "" {
		return func() {}
	}
	if err := os.MkdirAll(f.lockDir, 0o755); err != nil {
		logger.Debug("lock dir unavailable", logging.Error(err))
		return func() {}
	}
	bucket := fingerprint
	if len(bucket) > 2 {
		bucket = bucket[:2]
	}
	fileLock := flock.New(filepath.Join(f.lockDir, bucket+".lock"))

	waitCtx, cancel := context.WithTimeout(ctx, f.lockWait)
	defer cancel()
	locked, err := fileLock.TryLockContext(waitCtx, lockRetryDelay)
	if err != nil || !locked {
		if err == nil || errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("lock %s held for more than %s", fileLock.Path(), f.lockWait)
		}
		logging.WarnWithContext(logger, "probe lock unavailable", "probe_lock_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "file may be probed by more than one process"),
		)
		return func() {}
	}
	return func() {
		_ = fileLock.Unlock()
	}
}

// Forget drops memory entries recorded for path and returns how many were
// removed. Entries are keyed by fingerprint and remember the first path that
// produced them, so a byte-identical copy probed under another path keeps the
// shared entry; it cannot go stale because the key follows the content. The
// persistent tier is keyed by content and needs no eviction.
func (f *Fetcher) Forget(path string) int {
	canonical := fileutil.Canonical(f.fs, path)
	removed := 0
	for _, key := range f.memory.Keys() {
		if blob, ok := f.memory.Peek(key); ok && blob.Path == canonical {
			f.memory.Remove(key)
			removed++
		}
	}
	return removed
}

// Purge empties the memory tier.
func (f *Fetcher) Purge() {
	f.memory.Purge()
}

// Stats returns cache counters.
func (f *Fetcher) Stats() Stats {
	return Stats{
		Entries:        f.memory.Len(),
		Capacity:       f.capacity,
		MemoryHits:     f.memoryHits.Load(),
		PersistentHits: f.persistentHits.Load(),
		Probes:         f.probes.Load(),
		SharedWaits:    f.sharedWaits.Load(),
	}
}
