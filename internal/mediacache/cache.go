package mediacache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"clipvault/internal/config"
	"clipvault/internal/flight"
	"clipvault/internal/logging"
)

// Fetcher loads the blob for an asset key, typically from the durable store.
type Fetcher func(ctx context.Context, key string) ([]byte, error)

type entry struct {
	key        string
	data       []byte
	spillPath  string
	size       int64
	insertedAt time.Time
}

// Cache is a count-bounded media blob cache with least-recently-inserted
// eviction. Concurrent fetches for the same key coalesce into one underlying
// fetch; fetch failures are absorbed and surfaced as a miss, never an error,
// so playback callers degrade to "unavailable" instead of crashing a feed.
//
// Construct one explicitly and pass it where needed; there is no package-level
// instance.
type Cache struct {
	fetch          Fetcher
	logger         *slog.Logger
	maxEntries     int
	spillThreshold int64
	spillDir       string

	flight *flight.Group

	mu      sync.Mutex
	entries map[string]*entry
	gen     uint64
}

// Stats describes current cache usage; observability only, eviction is
// count-based.
type Stats struct {
	Entries    int   `json:"entries"`
	TotalBytes int64 `json:"total_bytes"`
	MaxEntries int   `json:"max_entries"`
	InFlight   int   `json:"in_flight"`
}

// New builds a cache from application config. Blobs at or above the spill
// threshold are kept on disk under the spill directory instead of in memory.
func New(cfg *config.Config, fetch Fetcher, logger *slog.Logger) *Cache {
	maxEntries := 10
	var spillThreshold int64 = 8 * 1024 * 1024
	spillDir := ""
	if cfg != nil {
		maxEntries = cfg.Cache.MaxEntries
		spillThreshold = cfg.Cache.SpillThreshold
		spillDir = cfg.Cache.SpillDir
	}
	return &Cache{
		fetch:          fetch,
		logger:         logging.NewComponentLogger(logger, "mediacache"),
		maxEntries:     maxEntries,
		spillThreshold: spillThreshold,
		spillDir:       spillDir,
		flight:         flight.New(),
		entries:        make(map[string]*entry),
	}
}

// Get returns the blob for key. On a miss it joins or starts a coalesced
// fetch, caches the result, and returns it. ok is false when the blob is
// unavailable (fetch failed); that is a degraded state, not an error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}

	if data, ok := c.lookup(key); ok {
		return data, true
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	// The fetch is shared with every caller that joins for this key, so it
	// must not die with the first caller's context.
	fetchCtx := context.WithoutCancel(ctx)
	data, err, _ := c.flight.Do(key, func() ([]byte, error) {
		blob, err := c.fetch(fetchCtx, key)
		if err != nil {
			return nil, err
		}
		c.insert(key, blob, gen)
		return blob, nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "media fetch failed",
			logging.String(logging.FieldAssetKey, key),
			logging.Error(err),
		)
		return nil, false
	}
	return data, true
}

// Prefetch starts best-effort background fetches for the given keys, skipping
// any that are cached or already in flight. Failures are logged and dropped;
// nothing is reported to the caller.
func (c *Cache) Prefetch(keys []string) {
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if _, ok := c.lookup(key); ok {
			continue
		}
		if c.flight.InFlight(key) {
			continue
		}
		go func(key string) {
			if _, ok := c.Get(context.Background(), key); !ok {
				c.logger.Debug("prefetch missed", logging.String(logging.FieldAssetKey, key))
			}
		}(key)
	}
}

// Clear releases every entry, including spilled files, and invalidates inserts
// from fetches that were in flight when Clear was called. The cache stays
// usable afterwards.
func (c *Cache) Clear() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[string]*entry)
	c.gen++
	c.mu.Unlock()

	for _, e := range entries {
		c.release(e)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports entry count, approximate byte footprint, and in-flight fetches.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	var total int64
	for _, e := range c.entries {
		total += e.size
	}
	stats := Stats{
		Entries:    len(c.entries),
		TotalBytes: total,
		MaxEntries: c.maxEntries,
	}
	c.mu.Unlock()
	stats.InFlight = c.flight.Pending()
	return stats
}

// Keys returns the cached keys ordered oldest insert first.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ordered := c.sortedLocked()
	keys := make([]string, len(ordered))
	for i, e := range ordered {
		keys[i] = e.key
	}
	return keys
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}
	if e.spillPath == "" {
		return e.data, true
	}
	data, err := os.ReadFile(e.spillPath)
	if err != nil {
		// The backing file vanished; drop the entry and let the caller refetch.
		c.logger.Warn("spilled cache entry unreadable, dropping",
			logging.String(logging.FieldAssetKey, key),
			logging.Error(err),
		)
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return data, true
}

func (c *Cache) insert(key string, data []byte, gen uint64) {
	e := &entry{
		key:        key,
		size:       int64(len(data)),
		insertedAt: time.Now(),
	}
	if int64(len(data)) >= c.spillThreshold && c.spillDir != "" {
		path, err := c.spill(key, data)
		if err != nil {
			c.logger.Warn("spill failed, keeping blob in memory", logging.Error(err))
			e.data = data
		} else {
			e.spillPath = path
		}
	} else {
		e.data = data
	}

	var evicted []*entry
	c.mu.Lock()
	if gen != c.gen {
		// The cache was cleared while this fetch was in flight.
		c.mu.Unlock()
		c.release(e)
		return
	}
	if prev, ok := c.entries[key]; ok && prev.spillPath != "" && prev.spillPath != e.spillPath {
		evicted = append(evicted, prev)
	}
	c.entries[key] = e
	evicted = append(evicted, c.evictLocked()...)
	c.mu.Unlock()

	for _, old := range evicted {
		c.release(old)
		c.logger.Info("evicted cache entry",
			logging.String(logging.FieldAssetKey, old.key),
			logging.Int64("size_bytes", old.size),
		)
	}
}

// evictLocked removes oldest entries until the count is back at the bound.
// Caller holds c.mu.
func (c *Cache) evictLocked() []*entry {
	if len(c.entries) <= c.maxEntries {
		return nil
	}
	ordered := c.sortedLocked()
	var evicted []*entry
	for _, e := range ordered[:len(ordered)-c.maxEntries] {
		delete(c.entries, e.key)
		evicted = append(evicted, e)
	}
	return evicted
}

// sortedLocked returns entries ordered oldest insert first. Caller holds c.mu.
func (c *Cache) sortedLocked() []*entry {
	ordered := make([]*entry, 0, len(c.entries))
	for _, e := range c.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].insertedAt.Before(ordered[j].insertedAt)
	})
	return ordered
}

func (c *Cache) spill(key string, data []byte) (string, error) {
	if err := os.MkdirAll(c.spillDir, 0o755); err != nil {
		return "", fmt.Errorf("mediacache: create spill dir: %w", err)
	}
	path := filepath.Join(c.spillDir, fmt.Sprintf("%s-%d.mp4", sanitize(key), time.Now().UnixNano()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("mediacache: write spill file: %w", err)
	}
	return path, nil
}

// release frees any OS-level resource backing an entry before it is dropped.
func (c *Cache) release(e *entry) {
	if e == nil || e.spillPath == "" {
		return
	}
	if err := os.Remove(e.spillPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Warn("failed to remove spilled cache file",
			logging.String("path", e.spillPath),
			logging.Error(err),
		)
	}
}

func sanitize(value string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "-")
	return replacer.Replace(value)
}
