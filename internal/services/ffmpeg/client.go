package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"clipvault/internal/services"
)

var commandContext = exec.CommandContext

// Transcoder normalizes a raw download into the stored clip format.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string) error
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

// WithMaxEdge bounds the longest output edge in pixels.
func WithMaxEdge(pixels int) Option {
	return func(c *CLI) {
		if pixels > 0 {
			c.maxEdge = pixels
		}
	}
}

// WithTimeout sets the hard wall-clock limit for a single transcode.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary  string
	maxEdge int
	timeout time.Duration
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", maxEdge: 1280, timeout: 2 * time.Minute}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Transcode re-encodes inputPath into outputPath: h264/aac, CRF 28, the longest
// edge capped at maxEdge without upscaling, and dimensions padded to even values
// as libx264 requires. Exceeding the configured timeout is fatal and reported as
// a transcode timeout, never silently retried.
func (c *CLI) Transcode(ctx context.Context, inputPath, outputPath string) error {
	if strings.TrimSpace(inputPath) == "" {
		return services.Wrap(services.ErrTranscode, "ffmpeg", "transcode", "input path required", nil)
	}
	if strings.TrimSpace(outputPath) == "" {
		return services.Wrap(services.ErrTranscode, "ffmpeg", "transcode", "output path required", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{
		"-y",
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "28",
		"-vf", c.scaleFilter(),
		"-c:a", "aac",
		"-b:a", "96k",
		outputPath,
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTranscodeTimeout, "ffmpeg", "transcode",
				fmt.Sprintf("exceeded %s limit", c.timeout), nil)
		}
		return services.Wrap(services.ErrTranscode, "ffmpeg", "transcode", services.SummarizeOutput(output), err)
	}
	return nil
}

// scaleFilter caps the longest edge while preserving aspect ratio, then pads
// both dimensions up to even values.
func (c *CLI) scaleFilter() string {
	long := c.maxEdge
	short := long * 9 / 16
	if short%2 != 0 {
		short++
	}
	return fmt.Sprintf(
		"scale='min(%d,iw)':'min(%d,ih)':force_original_aspect_ratio=decrease,pad=ceil(iw/2)*2:ceil(ih/2)*2",
		long, short,
	)
}

var _ Transcoder = (*CLI)(nil)
