// Package fileutil resolves media paths and fingerprints their content.
package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"mediaprobe/internal/services"
)

// Identity describes one readable media file at the moment it was hashed.
type Identity struct {
	Path        string
	Fingerprint string
	Size        int64
	ModTime     time.Time
}

// Resolve returns the canonical absolute path of a regular file. Symlinks are
// only evaluated on the OS filesystem.
func Resolve(fsys afero.Fs, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", services.Wrap(services.ErrNotFound, "fileutil", "resolve", "empty path", nil)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "fileutil", "resolve", path, err)
	}
	if _, ok := fsys.(*afero.OsFs); ok {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return "", classify("resolve", abs, err)
		}
		abs = resolved
	}
	info, err := fsys.Stat(abs)
	if err != nil {
		return "", classify("stat", abs, err)
	}
	if !info.Mode().IsRegular() {
		return "", services.Wrap(services.ErrNotFound, "fileutil", "stat", abs+" is not a regular file", nil)
	}
	return abs, nil
}

// Identify resolves path, confirms it can be read and fingerprints it.
// The content is hashed on every call so edits that keep the mtime are
// still detected.
func Identify(fsys afero.Fs, path string) (Identity, error) {
	resolved, err := Resolve(fsys, path)
	if err != nil {
		return Identity{}, err
	}
	in, err := fsys.Open(resolved)
	if err != nil {
		return Identity{}, classify("open", resolved, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return Identity{}, classify("stat", resolved, err)
	}
	hasher := sha256.New()
	if _, err := io.Copy(hasher, in); err != nil {
		return Identity{}, services.Wrap(services.ErrNotReadable, "fileutil", "hash", resolved, err)
	}
	return Identity{
		Path:        resolved,
		Fingerprint: Fingerprint(hasher.Sum(nil), info.ModTime()),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
	}, nil
}

// Fingerprint joins a content digest and a modification time into a cache
// key: hex(sum) + "_" + mtime in unix nanoseconds.
func Fingerprint(sum []byte, modTime time.Time) string {
	return hex.EncodeToString(sum) + "_" + strconv.FormatInt(modTime.UnixNano(), 10)
}

func classify(operation, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return services.Wrap(services.ErrNotFound, "fileutil", operation, path, err)
	case errors.Is(err, fs.ErrPermission):
		return services.Wrap(services.ErrNotReadable, "fileutil", operation, path, err)
	default:
		return services.Wrap(services.ErrNotReadable, "fileutil", operation, fmt.Sprintf("%s: unexpected error", path), err)
	}
}

// Canonical resolves path like Resolve does, falling back to a cleaned
// absolute path for files that no longer exist. Cache eviction uses it so a
// deleted file can still be forgotten.
func Canonical(fsys afero.Fs, path string) string {
	if resolved, err := Resolve(fsys, path); err == nil {
		return resolved
	}
	path = strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
