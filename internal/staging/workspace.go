// Package staging manages per-ingest working directories. A workspace holds
// the raw download and the transcoded output for one asset key. Successful
// ingests remove their workspace; failed ingests leave it in place so the
// artifacts can be inspected or retried, and the stale sweep reclaims them
// after they age out.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Workspace is a scoped working area for a single ingest.
type Workspace struct {
	Key string
	Dir string
}

// Acquire creates (or reuses) the staging directory for an asset key.
func Acquire(stagingDir, key string) (*Workspace, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, errors.New("staging: staging directory not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("staging: asset key required")
	}
	dir := filepath.Join(stagingDir, sanitize(key))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("staging: create workspace %q: %w", dir, err)
	}
	return &Workspace{Key: key, Dir: dir}, nil
}

// RawPath is where the fetcher writes the unprocessed download.
func (w *Workspace) RawPath() string {
	return filepath.Join(w.Dir, w.Key+"-raw.mp4")
}

// OutputPath is where the transcoder writes the normalized clip.
func (w *Workspace) OutputPath() string {
	return filepath.Join(w.Dir, w.Key+".mp4")
}

// Remove deletes the workspace and everything in it. Called only on the
// success path; failures keep their artifacts.
func (w *Workspace) Remove() error {
	if w == nil || strings.TrimSpace(w.Dir) == "" {
		return nil
	}
	if err := os.RemoveAll(w.Dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("staging: remove workspace %q: %w", w.Dir, err)
	}
	return nil
}

func sanitize(value string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		" ", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	value = replacer.Replace(strings.TrimSpace(value))
	value = strings.Trim(value, "-_.")
	if value == "" {
		return "asset"
	}
	return value
}
