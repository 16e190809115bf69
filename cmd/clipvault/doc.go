// Command clipvault is the CLI for the clipvault daemon: ingesting clips,
// managing their metadata, and inspecting the daemon's media cache.
package main
