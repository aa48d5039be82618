package testsupport

import (
	"context"
	"testing"

	"fstop/internal/analysis"
	"fstop/internal/config"
)

// MustOpenStore opens an analysis.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *analysis.Store {
	t.Helper()

	store, err := analysis.Open(cfg)
	if err != nil {
		t.Fatalf("analysis.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewUpload creates a pending record for tests using the provided store.
func NewUpload(t testing.TB, store *analysis.Store, sourcePath, filename string) *analysis.Record {
	t.Helper()

	rec, err := store.NewUpload(context.Background(), sourcePath, filename, "image/jpeg", 0)
	if err != nil {
		t.Fatalf("store.NewUpload: %v", err)
	}
	return rec
}
