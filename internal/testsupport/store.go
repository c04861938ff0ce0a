package testsupport

import (
	"testing"

	"mediaprobe/internal/config"
	"mediaprobe/internal/probecache"
)

// MustOpenProbeCache opens the persistent report store for tests and
// registers cleanup.
func MustOpenProbeCache(t testing.TB, cfg *config.Config) *probecache.Store {
	t.Helper()

	store, err := probecache.Open(cfg)
	if err != nil {
		t.Fatalf("probecache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
