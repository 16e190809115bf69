// Package ingest orchestrates the server-side pipeline that turns an external
// media reference into a deduplicated, transcoded, durably stored clip:
// resolve key, check the store, then fetch, transcode, and upload inside a
// staged workspace.
package ingest
