package ingest

import (
	"context"
	"log/slog"
	"time"

	"clipvault/internal/assetkey"
	"clipvault/internal/config"
	"clipvault/internal/logging"
	"clipvault/internal/services/ffmpeg"
	"clipvault/internal/services/ytdlp"
	"clipvault/internal/staging"
)

// ObjectStore is the durable store surface the pipeline needs.
type ObjectStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	PublicURL(key string) string
	Upload(ctx context.Context, key, path, contentType string) (string, error)
}

// Result describes a completed ingest.
type Result struct {
	Key string
	URL string
	// Deduplicated is true when the dedup check found an existing object and
	// no download or transcode work was performed.
	Deduplicated bool
}

// Pipeline turns an external media reference into a deduplicated, transcoded,
// durably stored clip.
type Pipeline struct {
	store      ObjectStore
	fetcher    ytdlp.Fetcher
	transcoder ffmpeg.Transcoder
	stagingDir string
	logger     *slog.Logger
}

// NewPipeline wires a pipeline from its collaborators.
func NewPipeline(cfg *config.Config, store ObjectStore, fetcher ytdlp.Fetcher, transcoder ffmpeg.Transcoder, logger *slog.Logger) *Pipeline {
	stagingDir := ""
	if cfg != nil {
		stagingDir = cfg.Paths.StagingDir
	}
	return &Pipeline{
		store:      store,
		fetcher:    fetcher,
		transcoder: transcoder,
		stagingDir: stagingDir,
		logger:     logging.NewComponentLogger(logger, "ingest"),
	}
}

// NewDefaultPipeline builds a pipeline with the standard yt-dlp and ffmpeg
// clients configured from application config.
func NewDefaultPipeline(cfg *config.Config, store ObjectStore, logger *slog.Logger) *Pipeline {
	fetcher := ytdlp.NewCLI(
		ytdlp.WithBinary(cfg.Ingest.YtdlpBinary),
		ytdlp.WithSocketTimeout(cfg.Ingest.FetchSocketTimeout),
	)
	transcoder := ffmpeg.NewCLI(
		ffmpeg.WithBinary(cfg.Ingest.FFmpegBinary),
		ffmpeg.WithMaxEdge(cfg.Ingest.MaxEdge),
		ffmpeg.WithTimeout(time.Duration(cfg.Ingest.TranscodeTimeout)*time.Second),
	)
	return NewPipeline(cfg, store, fetcher, transcoder, logger)
}

// Ingest resolves the reference, skips all expensive work when the store
// already holds the asset, and otherwise runs fetch, transcode, and upload in
// a staged workspace. It never retries internally; every failure propagates
// tagged with its taxonomy marker so the caller can decide retry vs abandon.
//
// The exists check and the upload are not atomic across processes: two
// simultaneous first-time ingests of one key can both do the work and both
// upload. That is wasted effort, not a correctness problem, because uploads
// are idempotent overwrites of logically identical content.
func (p *Pipeline) Ingest(ctx context.Context, reference string) (Result, error) {
	key, err := assetkey.Resolve(reference)
	if err != nil {
		return Result{}, err
	}
	log := p.logger.With(logging.String(logging.FieldAssetKey, key))

	exists, err := p.store.Exists(ctx, key)
	if err != nil {
		return Result{}, err
	}
	if exists {
		log.InfoContext(ctx, "asset already stored, skipping ingest")
		return Result{Key: key, URL: p.store.PublicURL(key), Deduplicated: true}, nil
	}

	ws, err := staging.Acquire(p.stagingDir, key)
	if err != nil {
		return Result{}, err
	}

	started := time.Now()
	log.InfoContext(ctx, "fetching source", logging.String("reference", reference))
	if err := p.fetcher.Fetch(ctx, reference, ws.RawPath()); err != nil {
		log.ErrorContext(ctx, "fetch failed", logging.Error(err))
		return Result{}, err
	}

	log.InfoContext(ctx, "transcoding", logging.String("input", ws.RawPath()))
	if err := p.transcoder.Transcode(ctx, ws.RawPath(), ws.OutputPath()); err != nil {
		log.ErrorContext(ctx, "transcode failed", logging.Error(err))
		return Result{}, err
	}

	url, err := p.store.Upload(ctx, key, ws.OutputPath(), "video/mp4")
	if err != nil {
		// Keep the workspace: the transcoded file may allow a cheap retry.
		log.ErrorContext(ctx, "upload failed, workspace retained",
			logging.Error(err),
			logging.String("workspace", ws.Dir),
		)
		return Result{}, err
	}

	if err := ws.Remove(); err != nil {
		log.WarnContext(ctx, "workspace cleanup failed", logging.Error(err))
	}

	log.InfoContext(ctx, "ingest complete",
		logging.String("url", url),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{Key: key, URL: url}, nil
}
