package daemon_test

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"clipvault/internal/config"
	"clipvault/internal/daemon"
	"clipvault/internal/ingest"
	"clipvault/internal/logging"
	"clipvault/internal/mediacache"
	"clipvault/internal/testsupport"
)

type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key+".mp4"]
	return ok, nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "https://clips.example.com/" + key + ".mp4"
}

func (f *fakeObjectStore) Upload(ctx context.Context, key, path, contentType string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.objects[key+".mp4"] = data
	f.mu.Unlock()
	return f.PublicURL(key), nil
}

type fakeFetcher struct{}

func (fakeFetcher) Fetch(ctx context.Context, reference, outputPath string) error {
	return os.WriteFile(outputPath, []byte("raw video"), 0o644)
}

type fakeTranscoder struct{}

func (fakeTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func newTestDaemon(t *testing.T, cfg *config.Config, store *fakeObjectStore, blobs map[string][]byte) *daemon.Daemon {
	t.Helper()

	clipStore := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	pipeline := ingest.NewPipeline(cfg, store, fakeFetcher{}, fakeTranscoder{}, logger)
	cache := mediacache.New(cfg, func(ctx context.Context, key string) ([]byte, error) {
		if data, ok := blobs[key]; ok {
			return data, nil
		}
		return nil, fmt.Errorf("no blob for %q", key)
	}, logger)

	d, err := daemon.New(cfg, clipStore, pipeline, cache, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		_ = d.Close()
	})
	return d
}

func startDaemon(t *testing.T, d *daemon.Daemon) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	addr := d.Addr()
	if addr == "" {
		t.Fatal("expected bound address after Start")
	}
	return addr
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newTestDaemon(t, cfg, newFakeObjectStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("second Start should fail while running")
	}

	status := d.Status()
	if !status.Running {
		t.Fatal("expected running status")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("pid = %d, want %d", status.PID, os.Getpid())
	}
	if status.LockFilePath == "" || status.ClipsDBPath == "" {
		t.Fatalf("expected populated paths: %+v", status)
	}

	d.Stop()
	if d.Status().Running {
		t.Fatal("expected stopped status")
	}
	// Stop is idempotent.
	d.Stop()
}

func TestStatusEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newTestDaemon(t, cfg, newFakeObjectStore(), nil)
	addr := startDaemon(t, d)

	resp, err := http.Get("http://" + addr + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}
}

func TestAuthRejectsBadToken(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAPIToken("secret"))
	d := newTestDaemon(t, cfg, newFakeObjectStore(), nil)
	addr := startDaemon(t, d)

	resp, err := http.Get("http://" + addr + "/api/status")
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status code = %d, want 401", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/api/status", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("authenticated status code = %d, want 200", resp.StatusCode)
	}
}

func TestVideoEndpointServesCachedBlob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	blobs := map[string][]byte{"abc123": []byte("clip bytes")}
	d := newTestDaemon(t, cfg, newFakeObjectStore(), blobs)
	addr := startDaemon(t, d)

	resp, err := http.Get("http://" + addr + "/api/videos/abc123.mp4")
	if err != nil {
		t.Fatalf("GET video: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Cache-Control"); got != "public, max-age=31536000, immutable" {
		t.Fatalf("cache-control = %q", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "video/mp4" {
		t.Fatalf("content-type = %q", got)
	}
}

func TestVideoEndpointDegradesToNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newTestDaemon(t, cfg, newFakeObjectStore(), nil)
	addr := startDaemon(t, d)

	resp, err := http.Get("http://" + addr + "/api/videos/missing.mp4")
	if err != nil {
		t.Fatalf("GET video: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status code = %d, want 404", resp.StatusCode)
	}
}

func TestSweepReclaimsStaleWorkspaces(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Ingest.StagingSweepInterval = 1
	cfg.Ingest.StagingMaxAgeHours = 0

	stale := filepath.Join(cfg.Paths.StagingDir, "old-key")
	testsupport.WriteFile(t, filepath.Join(stale, "old-key-raw.mp4"), 16)

	d := newTestDaemon(t, cfg, newFakeObjectStore(), nil)
	startDaemon(t, d)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(stale); os.IsNotExist(err) {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("stale workspace was not swept")
}
