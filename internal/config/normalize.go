package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeIngest()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("CLIPVAULT_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	if c.Storage.Bucket == "" {
		if value, ok := os.LookupEnv("CLIPVAULT_BUCKET"); ok {
			c.Storage.Bucket = strings.TrimSpace(value)
		}
	}
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		c.Storage.Region = defaultStorageRegion
	}
	c.Storage.Endpoint = strings.TrimRight(strings.TrimSpace(c.Storage.Endpoint), "/")
	c.Storage.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Storage.PublicBaseURL), "/")
	return nil
}

func (c *Config) normalizeIngest() {
	c.Ingest.YtdlpBinary = strings.TrimSpace(c.Ingest.YtdlpBinary)
	if c.Ingest.YtdlpBinary == "" {
		c.Ingest.YtdlpBinary = defaultYtdlpBinary
	}
	c.Ingest.FFmpegBinary = strings.TrimSpace(c.Ingest.FFmpegBinary)
	if c.Ingest.FFmpegBinary == "" {
		c.Ingest.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Ingest.MaxEdge <= 0 {
		c.Ingest.MaxEdge = defaultMaxEdge
	}
	if c.Ingest.TranscodeTimeout <= 0 {
		c.Ingest.TranscodeTimeout = defaultTranscodeTimeout
	}
	if c.Ingest.FetchSocketTimeout <= 0 {
		c.Ingest.FetchSocketTimeout = defaultFetchSocketTimeout
	}
	if c.Ingest.StagingMaxAgeHours <= 0 {
		c.Ingest.StagingMaxAgeHours = defaultStagingMaxAgeHours
	}
	if c.Ingest.StagingSweepInterval <= 0 {
		c.Ingest.StagingSweepInterval = defaultStagingSweepInterval
	}
}

func (c *Config) normalizeCache() error {
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = defaultCacheMaxEntries
	}
	if c.Cache.SpillThreshold <= 0 {
		c.Cache.SpillThreshold = defaultSpillThreshold
	}
	if strings.TrimSpace(c.Cache.SpillDir) == "" {
		c.Cache.SpillDir = defaultSpillDir
	}
	var err error
	if c.Cache.SpillDir, err = expandPath(c.Cache.SpillDir); err != nil {
		return fmt.Errorf("cache.spill_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
