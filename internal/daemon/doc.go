// Package daemon coordinates the long-running clipvault process.
//
// It wires configuration, the clip metadata store, the ingest pipeline, and
// the playback media cache into a single lifecycle with flock-based locking to
// prevent multiple instances, and exposes them over an HTTP API with optional
// bearer-token authentication. A background sweeper reclaims staging
// workspaces left behind by failed ingests.
//
// Keep orchestration logic here: ingest and cache behavior live in their own
// packages while the daemon focuses on startup, shutdown, and the API surface.
package daemon
