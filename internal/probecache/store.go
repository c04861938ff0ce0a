package probecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mediaprobe/internal/config"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one persisted report.
type Entry struct {
	Fingerprint string
	Path        string
	ProbeID     string
	Report      string
	CreatedAt   time.Time
	LastUsedAt  time.Time
	Hits        int64
}

// Stats summarizes the store for `cache stats`.
type Stats struct {
	Path        string    `json:"path"`
	Entries     int64     `json:"entries"`
	ReportBytes int64     `json:"report_bytes"`
	Hits        int64     `json:"hits"`
	MaxEntries  int       `json:"max_entries"`
	Oldest      time.Time `json:"oldest,omitzero"`
	Newest      time.Time `json:"newest,omitzero"`
}

// Store manages the SQLite-backed report cache.
type Store struct {
	db         *sql.DB
	path       string
	maxEntries int
	now        func() time.Time
}

// Open creates the cache directory and opens the configured database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.CacheDBPath(), cfg.Cache.MaxEntries)
}

// OpenPath opens (or initializes) the database at dbPath. maxEntries <= 0
// disables automatic pruning.
func OpenPath(dbPath string, maxEntries int) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, maxEntries: maxEntries, now: time.Now}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// Get returns the report stored under fingerprint and marks it used.
func (s *Store) Get(ctx context.Context, fingerprint string) (Entry, bool, error) {
	var (
		entry            Entry
		created, lastUse int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint, path, probe_id, report, created_at, last_used_at, hits
		   FROM probes WHERE fingerprint = ?`, fingerprint,
	).Scan(&entry.Fingerprint, &entry.Path, &entry.ProbeID, &entry.Report, &created, &lastUse, &entry.Hits)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("probe cache get: %w", err)
	}
	entry.CreatedAt = time.Unix(0, created)

	now := s.now()
	if err := s.execWithRetry(ctx,
		`UPDATE probes SET last_used_at = ?, hits = hits + 1 WHERE fingerprint = ?`,
		now.UnixNano(), fingerprint,
	); err != nil {
		return Entry{}, false, fmt.Errorf("probe cache touch: %w", err)
	}
	entry.LastUsedAt = now
	entry.Hits++
	return entry, true, nil
}

// Put stores entry, replacing any row with the same fingerprint, then prunes
// the oldest rows beyond the entry limit.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.Fingerprint) == "" {
		return errors.New("probe cache put: fingerprint required")
	}
	now := s.now()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if err := s.execWithRetry(ctx,
		`INSERT INTO probes (fingerprint, path, probe_id, report, created_at, last_used_at, hits)
		 VALUES (?, ?, ?, ?, ?, ?, 0)
		 ON CONFLICT(fingerprint) DO UPDATE SET
		   path = excluded.path,
		   probe_id = excluded.probe_id,
		   report = excluded.report,
		   created_at = excluded.created_at,
		   last_used_at = excluded.last_used_at`,
		entry.Fingerprint, entry.Path, entry.ProbeID, entry.Report, entry.CreatedAt.UnixNano(), now.UnixNano(),
	); err != nil {
		return fmt.Errorf("probe cache put: %w", err)
	}
	if s.maxEntries > 0 {
		if _, err := s.Prune(ctx, s.maxEntries); err != nil {
			return err
		}
	}
	return nil
}

// Prune keeps the keep most recently used rows and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.execResultWithRetry(ctx,
		`DELETE FROM probes WHERE fingerprint IN (
		   SELECT fingerprint FROM probes ORDER BY last_used_at DESC, created_at DESC LIMIT -1 OFFSET ?
		 )`, keep)
	if err != nil {
		return 0, fmt.Errorf("probe cache prune: %w", err)
	}
	return res.RowsAffected()
}

// DeletePath removes every report recorded for path.
func (s *Store) DeletePath(ctx context.Context, path string) (int64, error) {
	res, err := s.execResultWithRetry(ctx, `DELETE FROM probes WHERE path = ?`, path)
	if err != nil {
		return 0, fmt.Errorf("probe cache delete path: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes every report.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execResultWithRetry(ctx, `DELETE FROM probes`)
	if err != nil {
		return 0, fmt.Errorf("probe cache clear: %w", err)
	}
	return res.RowsAffected()
}

// Stats reports entry counts and sizes.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path, MaxEntries: s.maxEntries}
	var oldest, newest int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(LENGTH(CAST(report AS BLOB))), 0),
		        COALESCE(SUM(hits), 0),
		        COALESCE(MIN(created_at), 0),
		        COALESCE(MAX(created_at), 0)
		   FROM probes`,
	).Scan(&stats.Entries, &stats.ReportBytes, &stats.Hits, &oldest, &newest)
	if err != nil {
		return Stats{}, fmt.Errorf("probe cache stats: %w", err)
	}
	if stats.Entries > 0 {
		stats.Oldest = time.Unix(0, oldest)
		stats.Newest = time.Unix(0, newest)
	}
	return stats, nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	_, err := s.execResultWithRetry(ctx, query, args...)
	return err
}

func (s *Store) execResultWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
