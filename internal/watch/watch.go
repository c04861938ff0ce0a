// Package watch invalidates cached media information when files change on
// disk.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"mediaprobe/internal/logging"
	"mediaprobe/internal/services"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Invalidator drops cached state for a path.
type Invalidator interface {
	Invalidate(path string)
}

// Option configures the watcher.
type Option func(*Watcher)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithNotify registers a callback that runs after each invalidation.
func WithNotify(fn func(path string, op fsnotify.Op)) Option {
	return func(w *Watcher) {
		w.notify = fn
	}
}

// Watcher forwards filesystem changes to an Invalidator. Directories are
// watched recursively; single files are watched through their parent
// directory and filtered by name.
type Watcher struct {
	fsw    *fsnotify.Watcher
	target Invalidator
	logger *slog.Logger
	notify func(path string, op fsnotify.Op)

	mu    sync.Mutex
	trees map[string]struct{}
	files map[string]struct{}
}

// New creates a watcher that invalidates target.
func New(target Invalidator, opts ...Option) (*Watcher, error) {
	if target == nil {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "init", "invalidator required", nil)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "watch", "init", "create fsnotify watcher", err)
	}
	w := &Watcher{
		fsw:    fsw,
		target: target,
		trees:  make(map[string]struct{}),
		files:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, "watch")
	return w, nil
}

// Add starts watching path, a directory tree or a single file.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "watch", "add", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "watch", "add", abs, err)
		}
		return services.Wrap(services.ErrNotReadable, "watch", "add", abs, err)
	}
	if !info.IsDir() {
		if err := w.fsw.Add(filepath.Dir(abs)); err != nil {
			return services.Wrap(services.ErrNotReadable, "watch", "add", abs, err)
		}
		w.mu.Lock()
		w.files[abs] = struct{}{}
		w.mu.Unlock()
		return nil
	}
	w.mu.Lock()
	w.trees[abs] = struct{}{}
	w.mu.Unlock()
	return w.addTree(abs)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Vanished or unreadable entries are skipped.
			w.logger.Debug("skipping path", logging.String(logging.FieldPath, p), logging.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(p); err != nil {
			return services.Wrap(services.ErrNotReadable, "watch", "add", p, err)
		}
		return nil
	})
}

// Run forwards events until ctx ends. It closes the underlying watcher on
// return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.logger.Info("watching for changes", logging.Int("paths", len(w.fsw.WatchList())))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "watch error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some changes may not invalidate cached results"),
			)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&relevantOps == 0 {
		return
	}
	if !w.relevant(ev.Name) {
		return
	}
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Debug("watch new directory failed", logging.String(logging.FieldPath, ev.Name), logging.Error(err))
			}
			return
		}
	}
	w.target.Invalidate(ev.Name)
	w.logger.Debug("file changed",
		logging.String(logging.FieldEventType, "cache_invalidated"),
		logging.String(logging.FieldPath, ev.Name),
		logging.String("op", ev.Op.String()),
	)
	if w.notify != nil {
		w.notify(ev.Name, ev.Op&relevantOps)
	}
}

func (w *Watcher) relevant(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[name]; ok {
		return true
	}
	for root := range w.trees {
		rel, err := filepath.Rel(root, name)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
