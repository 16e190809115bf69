package config

const (
	defaultStagingDir           = "~/.local/share/clipvault/staging"
	defaultLogDir               = "~/.local/share/clipvault/logs"
	defaultSpillDir             = "~/.cache/clipvault/media"
	defaultAPIBind              = "127.0.0.1:7823"
	defaultStorageRegion        = "us-east-1"
	defaultYtdlpBinary          = "yt-dlp"
	defaultFFmpegBinary         = "ffmpeg"
	defaultMaxEdge              = 1280
	defaultTranscodeTimeout     = 120
	defaultFetchSocketTimeout   = 30
	defaultStagingMaxAgeHours   = 24
	defaultStagingSweepInterval = 3600
	defaultCacheMaxEntries      = 10
	defaultSpillThreshold       = 8 * 1024 * 1024
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Storage: Storage{
			Region: defaultStorageRegion,
		},
		Ingest: Ingest{
			YtdlpBinary:          defaultYtdlpBinary,
			FFmpegBinary:         defaultFFmpegBinary,
			MaxEdge:              defaultMaxEdge,
			TranscodeTimeout:     defaultTranscodeTimeout,
			FetchSocketTimeout:   defaultFetchSocketTimeout,
			StagingMaxAgeHours:   defaultStagingMaxAgeHours,
			StagingSweepInterval: defaultStagingSweepInterval,
		},
		Cache: Cache{
			MaxEntries:     defaultCacheMaxEntries,
			SpillThreshold: defaultSpillThreshold,
			SpillDir:       defaultSpillDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
