package testsupport

import (
	"testing"

	"replicator/internal/config"
	"replicator/internal/manifest"
)

// MustOpenManifest opens the manifest store for tests and registers cleanup.
func MustOpenManifest(t testing.TB, cfg *config.Config) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(cfg)
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
