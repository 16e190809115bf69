// Package ytdlp invokes the yt-dlp downloader as a subprocess. Retry and
// backoff policy is deliberately left to callers.
package ytdlp
