// Package assetkey derives stable asset identifiers from external media
// references. The key is the last non-empty path segment of the reference with
// any query string stripped, so every URL form that points at the same clip
// resolves to the same key. Keys name objects in durable storage and entries in
// the playback cache.
package assetkey

import (
	"strings"

	"clipvault/internal/services"
)

// Extension is the fixed container extension for stored clips.
const Extension = ".mp4"

// Resolve derives the asset key for a media reference. It is pure: no I/O, no
// normalization beyond trimming, deterministic for a given input.
func Resolve(reference string) (string, error) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return "", services.Wrap(services.ErrInvalidReference, "assetkey", "resolve", "empty reference", nil)
	}

	segment := trimmed
	if idx := strings.LastIndexByte(trimmed, '/'); idx >= 0 {
		segment = trimmed[idx+1:]
	}
	if idx := strings.IndexByte(segment, '?'); idx >= 0 {
		segment = segment[:idx]
	}
	if segment == "" || strings.Contains(segment, ":") {
		return "", services.Wrap(services.ErrInvalidReference, "assetkey", "resolve",
			"no usable trailing path segment in "+trimmed, nil)
	}
	return segment, nil
}

// ObjectName maps an asset key to its object-store name.
func ObjectName(key string) string {
	return key + Extension
}
