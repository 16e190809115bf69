// Package config loads, normalizes, and validates the TOML configuration
// shared by the clipvault daemon and CLI.
package config
