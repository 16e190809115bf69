// Package ffmpeg invokes the ffmpeg encoder as a subprocess with a hard
// wall-clock limit per transcode.
package ffmpeg
