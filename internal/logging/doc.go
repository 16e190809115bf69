// Package logging builds slog loggers for the daemon and CLI, fanning output
// to stdout and the configured log file, and provides shared attribute helpers
// so field names stay consistent across components.
package logging
