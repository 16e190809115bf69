package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"clipvault/internal/clips"
	"clipvault/internal/daemon"
	"clipvault/internal/ingest"
	"clipvault/internal/logging"
	"clipvault/internal/mediacache"
	"clipvault/internal/objectstore"
)

// newServeCommand runs the daemon in the foreground of the current process.
func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the clipvault daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			store, err := objectstore.New(signalCtx, cfg)
			if err != nil {
				return fmt.Errorf("open object store: %w", err)
			}
			clipStore, err := clips.Open(cfg)
			if err != nil {
				return fmt.Errorf("open clips store: %w", err)
			}

			pipeline := ingest.NewDefaultPipeline(cfg, store, logger)
			cache := mediacache.New(cfg, store.Download, logger)

			d, err := daemon.New(cfg, clipStore, pipeline, cache, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Start(signalCtx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "clipvault daemon listening on %s\n", d.Addr())

			<-signalCtx.Done()
			return nil
		},
	}
}
