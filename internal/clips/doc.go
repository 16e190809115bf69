// Package clips stores clip metadata in SQLite: who made the play, in which
// tournament, and which stored object holds the video. Rows reference objects
// by asset key; the objects themselves live in the durable store.
package clips
