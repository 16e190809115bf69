// Package objectstore is the S3-compatible durable store client: existence
// checks, upsert uploads, public URL derivation, and reads for the playback
// cache. Objects are named by asset key with a fixed .mp4 extension and are
// logically immutable once written.
package objectstore
