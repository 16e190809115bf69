package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"clipvault/internal/clips"
	"clipvault/internal/config"
	"clipvault/internal/daemon"
	"clipvault/internal/ingest"
	"clipvault/internal/logging"
	"clipvault/internal/mediacache"
	"clipvault/internal/objectstore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := objectstore.New(ctx, cfg)
	if err != nil {
		logger.Error("open object store", logging.Error(err))
		return
	}

	clipStore, err := clips.Open(cfg)
	if err != nil {
		logger.Error("open clips store", logging.Error(err))
		return
	}

	pipeline := ingest.NewDefaultPipeline(cfg, store, logger)
	cache := mediacache.New(cfg, store.Download, logger)

	d, err := daemon.New(cfg, clipStore, pipeline, cache, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("clipvaultd shutting down")
}
