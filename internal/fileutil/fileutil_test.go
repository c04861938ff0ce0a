package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"mediaprobe/internal/services"
)

// deniedFs reports every open as a permission failure.
type deniedFs struct {
	afero.Fs
}

func (d deniedFs) Open(name string) (afero.File, error) {
	return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
}

func TestIdentifyFingerprintsContentAndModTime(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/media/clip.mp4"
	if err := afero.WriteFile(fsys, path, []byte("frames"), 0o644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Unix(1700000000, 42)
	if err := fsys.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}

	id, err := Identify(fsys, path)
	if err != nil {
		t.Fatalf("Identify returned error: %v", err)
	}
	if id.Path != path {
		t.Fatalf("expected %s, got %s", path, id.Path)
	}
	// sha256("frames")
	const digest = "594cfd2607d4f09e1ce6241203e418cacfed545063792bc5eab7afaadbf0c4e0"
	hash, stamp, ok := strings.Cut(id.Fingerprint, "_")
	if !ok || hash != digest {
		t.Fatalf("unexpected fingerprint %q", id.Fingerprint)
	}
	if stamp != "1700000000000000042" {
		t.Fatalf("expected mtime suffix, got %q", stamp)
	}
	if id.Size != 6 {
		t.Fatalf("expected size 6, got %d", id.Size)
	}
}

func TestIdentifyChangesWithContent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/media/clip.mp4"
	mtime := time.Unix(1700000000, 0)
	write := func(body string) string {
		t.Helper()
		if err := afero.WriteFile(fsys, path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := fsys.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
		id, err := Identify(fsys, path)
		if err != nil {
			t.Fatalf("Identify returned error: %v", err)
		}
		return id.Fingerprint
	}
	first := write("one")
	if again := write("one"); again != first {
		t.Fatalf("expected stable fingerprint, got %s then %s", first, again)
	}
	if second := write("two"); second == first {
		t.Fatal("expected fingerprint to change with content at the same mtime")
	}
}

func TestIdentifyNotFound(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if _, err := Identify(fsys, "/media/missing.mkv"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := fsys.MkdirAll("/media/dir", 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := Identify(fsys, "/media/dir"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected directories to be not found, got %v", err)
	}
	if _, err := Identify(fsys, " "); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected empty path to be not found, got %v", err)
	}
}

func TestIdentifyNotReadable(t *testing.T) {
	base := afero.NewMemMapFs()
	if err := afero.WriteFile(base, "/media/locked.mkv", []byte("x"), 0o000); err != nil {
		t.Fatal(err)
	}
	_, err := Identify(deniedFs{Fs: base}, "/media/locked.mkv")
	if !errors.Is(err, services.ErrNotReadable) {
		t.Fatalf("expected not readable, got %v", err)
	}
	if services.Kind(err) != "not_readable" {
		t.Fatalf("unexpected kind %q", services.Kind(err))
	}
}

func TestResolveFollowsSymlinksOnDisk(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.mkv")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.mkv")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	got, err := Resolve(afero.NewOsFs(), link)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	want, _ := filepath.EvalSymlinks(target)
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestCanonicalFallsBackForMissingFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/media/a.mkv", []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Canonical(fsys, " /media/a.mkv "); got != "/media/a.mkv" {
		t.Fatalf("Canonical existing = %q", got)
	}
	if got := Canonical(fsys, "/media/../media/gone.mkv"); got != "/media/gone.mkv" {
		t.Fatalf("Canonical missing = %q", got)
	}
}
