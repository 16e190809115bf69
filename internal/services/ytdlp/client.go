package ytdlp

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"clipvault/internal/services"
)

var commandContext = exec.CommandContext

// Fetcher downloads a media reference to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, reference, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithSocketTimeout overrides the socket timeout passed to yt-dlp, in seconds.
func WithSocketTimeout(seconds int) Option {
	return func(c *CLI) {
		if seconds > 0 {
			c.socketTimeout = seconds
		}
	}
}

// CLI wraps the yt-dlp command-line downloader.
type CLI struct {
	binary        string
	socketTimeout int
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "yt-dlp", socketTimeout: 30}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Fetch downloads the reference into outputPath as an mp4. Failures are tagged
// with the fetch error marker; the pipeline does not retry internally.
func (c *CLI) Fetch(ctx context.Context, reference, outputPath string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return services.Wrap(services.ErrInvalidReference, "ytdlp", "fetch", "reference required", nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrFetch, "ytdlp", "fetch", "output path required", nil)
	}

	args := []string{
		"--no-playlist",
		"--socket-timeout", strconv.Itoa(c.socketTimeout),
		"-f", "mp4",
		"-o", outputPath,
		reference,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return services.Wrap(services.ErrFetch, "ytdlp", "fetch", services.SummarizeOutput(output), err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrFetch, "ytdlp", "fetch", "tool exited cleanly but produced no file", nil)
		}
		return services.Wrap(services.ErrFetch, "ytdlp", "fetch", "inspect output", err)
	}
	return nil
}

var _ Fetcher = (*CLI)(nil)
