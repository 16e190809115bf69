package ffmpeg

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"

	"clipvault/internal/services"
)

func TestTranscodeWrapsEncoderFailure(t *testing.T) {
	restore := stubCommand(t, func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo 'Invalid data found when processing input' >&2; exit 1")
	})
	defer restore()

	cli := NewCLI()
	err := cli.Transcode(context.Background(), "in.mp4", "out.mp4")
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("want ErrTranscode, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data") {
		t.Errorf("error should carry encoder output, got %q", err.Error())
	}
}

func TestTranscodeTimeoutIsFatal(t *testing.T) {
	restore := stubCommand(t, func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sleep", "10")
	})
	defer restore()

	cli := NewCLI(WithTimeout(50 * time.Millisecond))
	err := cli.Transcode(context.Background(), "in.mp4", "out.mp4")
	if !errors.Is(err, services.ErrTranscodeTimeout) {
		t.Fatalf("want ErrTranscodeTimeout, got %v", err)
	}
	if errors.Is(err, services.ErrTranscode) {
		t.Error("timeout must not be classified as a plain transcode error")
	}
}

func TestTranscodeSuccess(t *testing.T) {
	var gotArgs []string
	restore := stubCommand(t, func(ctx context.Context, name string, args ...string) *exec.Cmd {
		gotArgs = args
		return exec.CommandContext(ctx, "true")
	})
	defer restore()

	cli := NewCLI(WithMaxEdge(640))
	if err := cli.Transcode(context.Background(), "in.mp4", "out.mp4"); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"libx264", "min(640,iw)", "pad=ceil(iw/2)*2"} {
		if !strings.Contains(joined, want) {
			t.Errorf("ffmpeg args missing %q: %s", want, joined)
		}
	}
}

func TestTranscodeRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if err := cli.Transcode(context.Background(), "", "out.mp4"); !errors.Is(err, services.ErrTranscode) {
		t.Errorf("empty input: want ErrTranscode, got %v", err)
	}
	if err := cli.Transcode(context.Background(), "in.mp4", ""); !errors.Is(err, services.ErrTranscode) {
		t.Errorf("empty output: want ErrTranscode, got %v", err)
	}
}

func stubCommand(t *testing.T, fn func(ctx context.Context, name string, args ...string) *exec.Cmd) func() {
	t.Helper()
	original := commandContext
	commandContext = fn
	return func() { commandContext = original }
}
