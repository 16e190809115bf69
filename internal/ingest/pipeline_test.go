package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipvault/internal/config"
	"clipvault/internal/logging"
	"clipvault/internal/services"
)

type fakeStore struct {
	objects     map[string]string
	existsErr   error
	uploadErr   error
	existsCalls int
	uploadCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}}
}

func (f *fakeStore) Exists(ctx context.Context, key string) (bool, error) {
	f.existsCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) PublicURL(key string) string {
	return "http://store.test/clips/" + key + ".mp4"
}

func (f *fakeStore) Upload(ctx context.Context, key, path, contentType string) (string, error) {
	f.uploadCalls++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	f.objects[key] = string(data)
	return f.PublicURL(key), nil
}

type fakeFetcher struct {
	calls int
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, reference, outputPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte("raw:"+reference), 0o644)
}

type fakeTranscoder struct {
	calls int
	err   error
}

func (f *fakeTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte("encoded:"+string(data)), 0o644)
}

func newTestPipeline(t *testing.T, store *fakeStore, fetcher *fakeFetcher, transcoder *fakeTranscoder) *Pipeline {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	return NewPipeline(&cfg, store, fetcher, transcoder, logging.NewNop())
}

func TestIngestFirstTimeRunsFullPipeline(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{}
	transcoder := &fakeTranscoder{}
	p := newTestPipeline(t, store, fetcher, transcoder)

	res, err := p.Ingest(context.Background(), "https://example.com/reel/abc123")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Key != "abc123" {
		t.Errorf("Key = %q, want abc123", res.Key)
	}
	if res.URL != store.PublicURL("abc123") {
		t.Errorf("URL = %q, want %q", res.URL, store.PublicURL("abc123"))
	}
	if res.Deduplicated {
		t.Error("first ingest must not report deduplication")
	}
	if fetcher.calls != 1 || transcoder.calls != 1 || store.uploadCalls != 1 {
		t.Errorf("fetch/transcode/upload = %d/%d/%d, want 1/1/1",
			fetcher.calls, transcoder.calls, store.uploadCalls)
	}
	if !strings.Contains(store.objects["abc123"], "encoded:") {
		t.Error("uploaded bytes should be the transcoded output")
	}
}

func TestIngestSecondTimeOnlyChecksExistence(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{}
	transcoder := &fakeTranscoder{}
	p := newTestPipeline(t, store, fetcher, transcoder)

	first, err := p.Ingest(context.Background(), "https://example.com/reel/abc123")
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}

	second, err := p.Ingest(context.Background(), "https://example.com/reel/abc123?utm=x")
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if !second.Deduplicated {
		t.Error("second ingest should be deduplicated")
	}
	if second.URL != first.URL {
		t.Errorf("URLs differ across ingests: %q vs %q", second.URL, first.URL)
	}
	if fetcher.calls != 1 || transcoder.calls != 1 || store.uploadCalls != 1 {
		t.Errorf("expensive path ran more than once: fetch=%d transcode=%d upload=%d",
			fetcher.calls, transcoder.calls, store.uploadCalls)
	}
}

func TestIngestInvalidReferenceDoesNoIO(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{}
	p := newTestPipeline(t, store, fetcher, &fakeTranscoder{})

	_, err := p.Ingest(context.Background(), "https://example.com/reel/")
	if !errors.Is(err, services.ErrInvalidReference) {
		t.Fatalf("want ErrInvalidReference, got %v", err)
	}
	if store.existsCalls != 0 || fetcher.calls != 0 {
		t.Error("malformed reference must fail before any I/O")
	}
}

func TestIngestPropagatesStoreUnavailable(t *testing.T) {
	store := newFakeStore()
	store.existsErr = services.Wrap(services.ErrStoreUnavailable, "objectstore", "exists", "", errors.New("dial tcp"))
	fetcher := &fakeFetcher{}
	p := newTestPipeline(t, store, fetcher, &fakeTranscoder{})

	_, err := p.Ingest(context.Background(), "https://example.com/reel/abc123")
	if !errors.Is(err, services.ErrStoreUnavailable) {
		t.Fatalf("want ErrStoreUnavailable, got %v", err)
	}
	if fetcher.calls != 0 {
		t.Error("a failed dedup check must not fall through to downloading")
	}
}

func TestIngestFetchFailureLeavesWorkspace(t *testing.T) {
	store := newFakeStore()
	fetcher := &fakeFetcher{err: services.Wrap(services.ErrFetch, "ytdlp", "fetch", "removed", nil)}
	cfg := config.Default()
	stagingDir := t.TempDir()
	cfg.Paths.StagingDir = stagingDir
	p := NewPipeline(&cfg, store, fetcher, &fakeTranscoder{}, logging.NewNop())

	_, err := p.Ingest(context.Background(), "https://example.com/reel/abc123")
	if !errors.Is(err, services.ErrFetch) {
		t.Fatalf("want ErrFetch, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(stagingDir, "abc123")); statErr != nil {
		t.Error("workspace should remain after a failed fetch")
	}
}

func TestIngestTranscodeTimeoutSkipsUpload(t *testing.T) {
	store := newFakeStore()
	transcoder := &fakeTranscoder{err: services.Wrap(services.ErrTranscodeTimeout, "ffmpeg", "transcode", "exceeded limit", nil)}
	cfg := config.Default()
	stagingDir := t.TempDir()
	cfg.Paths.StagingDir = stagingDir
	p := NewPipeline(&cfg, store, &fakeFetcher{}, transcoder, logging.NewNop())

	_, err := p.Ingest(context.Background(), "https://example.com/reel/abc123")
	if !errors.Is(err, services.ErrTranscodeTimeout) {
		t.Fatalf("want ErrTranscodeTimeout, got %v", err)
	}
	if store.uploadCalls != 0 {
		t.Error("no upload may be attempted after a transcode timeout")
	}
	if _, statErr := os.Stat(filepath.Join(stagingDir, "abc123", "abc123-raw.mp4")); statErr != nil {
		t.Error("raw download should remain for inspection after a timeout")
	}
}

func TestIngestUploadFailureKeepsArtifacts(t *testing.T) {
	store := newFakeStore()
	store.uploadErr = services.Wrap(services.ErrStoreWrite, "objectstore", "upload", "denied", nil)
	cfg := config.Default()
	stagingDir := t.TempDir()
	cfg.Paths.StagingDir = stagingDir
	p := NewPipeline(&cfg, store, &fakeFetcher{}, &fakeTranscoder{}, logging.NewNop())

	_, err := p.Ingest(context.Background(), "https://example.com/reel/abc123")
	if !errors.Is(err, services.ErrStoreWrite) {
		t.Fatalf("want ErrStoreWrite, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(stagingDir, "abc123", "abc123.mp4")); statErr != nil {
		t.Error("transcoded file should remain so the caller can retry the upload")
	}
}

func TestIngestSuccessRemovesWorkspace(t *testing.T) {
	store := newFakeStore()
	cfg := config.Default()
	stagingDir := t.TempDir()
	cfg.Paths.StagingDir = stagingDir
	p := NewPipeline(&cfg, store, &fakeFetcher{}, &fakeTranscoder{}, logging.NewNop())

	if _, err := p.Ingest(context.Background(), "https://example.com/reel/abc123"); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(stagingDir, "abc123")); !os.IsNotExist(statErr) {
		t.Error("workspace should be removed after a successful ingest")
	}
}
