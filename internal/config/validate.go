package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	if c.Storage.Bucket == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/clipvault/config.toml"
		}
		return fmt.Errorf("storage.bucket is required. Set CLIPVAULT_BUCKET env var or edit %s (create with 'clipvault config init')", defaultPath)
	}
	if strings.ContainsAny(c.Storage.Bucket, " /") {
		return fmt.Errorf("storage.bucket %q must be a bare bucket name", c.Storage.Bucket)
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind %q is not a host:port address: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.MaxEdge < 2 {
		return errors.New("ingest.max_edge must be at least 2")
	}
	if c.Ingest.MaxEdge%2 != 0 {
		return errors.New("ingest.max_edge must be even (encoder requires even dimensions)")
	}
	if c.Ingest.TranscodeTimeout <= 0 {
		return errors.New("ingest.transcode_timeout must be positive")
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.MaxEntries <= 0 {
		return errors.New("cache.max_entries must be positive")
	}
	if c.Cache.SpillThreshold <= 0 {
		return errors.New("cache.spill_threshold must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q must be console or json", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info, warn, or error", c.Logging.Level)
	}
	return nil
}
