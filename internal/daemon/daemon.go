package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/gofrs/flock"

	"clipvault/internal/clips"
	"clipvault/internal/config"
	"clipvault/internal/deps"
	"clipvault/internal/ingest"
	"clipvault/internal/logging"
	"clipvault/internal/mediacache"
	"clipvault/internal/staging"
)

// Daemon coordinates the ingest pipeline, the clip metadata store, and the
// playback media cache, and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *clips.Store
	pipeline *ingest.Pipeline
	cache    *mediacache.Cache

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Bucket       string
	ClipsDBPath  string
	LockFilePath string
	Cache        mediacache.Stats
	Dependencies []deps.Status
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *clips.Store, pipeline *ingest.Pipeline, cache *mediacache.Cache, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || pipeline == nil || cache == nil {
		return nil, errors.New("daemon requires config, store, pipeline, and cache")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "clipvaultd.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		pipeline: pipeline,
		cache:    cache,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock, starts the API server, and launches the
// stale staging sweeper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another clipvault daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	go d.sweepLoop(d.ctx)

	d.running.Store(true)
	d.logger.Info("clipvault daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API server and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.cache.Clear()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("clipvault daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the bound API address, or empty before Start.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Bucket:       d.cfg.Storage.Bucket,
		ClipsDBPath:  d.store.Path(),
		LockFilePath: d.lockPath,
		Cache:        d.cache.Stats(),
		Dependencies: deps.CheckBinaries(deps.Requirements(d.cfg)),
	}
}

// sweepLoop periodically reclaims staging workspaces abandoned by failed
// ingests.
func (d *Daemon) sweepLoop(ctx context.Context) {
	interval := time.Duration(d.cfg.Ingest.StagingSweepInterval) * time.Second
	if interval <= 0 {
		return
	}
	maxAge := time.Duration(d.cfg.Ingest.StagingMaxAgeHours) * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.sweep(ctx, maxAge)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweep(ctx, maxAge)
		}
	}
}

func (d *Daemon) sweep(ctx context.Context, maxAge time.Duration) {
	result := staging.CleanStale(ctx, d.cfg.Paths.StagingDir, maxAge, d.logger)
	if len(result.Removed) > 0 || len(result.Errors) > 0 {
		d.logger.Info("staging sweep finished",
			logging.Int("removed", len(result.Removed)),
			logging.Int("errors", len(result.Errors)),
		)
	}
}
