package testsupport

import (
	"context"
	"testing"

	"clipvault/internal/clips"
	"clipvault/internal/config"
)

// MustOpenStore opens a clips.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *clips.Store {
	t.Helper()

	store, err := clips.Open(cfg)
	if err != nil {
		t.Fatalf("clips.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// AddClip inserts a clip row for tests using the provided store.
func AddClip(t testing.TB, store *clips.Store, reference, objectKey string) *clips.Clip {
	t.Helper()

	clip, err := store.Add(context.Background(), clips.NewClip{
		Reference: reference,
		ObjectKey: objectKey,
		VideoURL:  "https://clips.example.com/" + objectKey,
	})
	if err != nil {
		t.Fatalf("store.Add: %v", err)
	}
	return clip
}
