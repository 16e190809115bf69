// Package mediacache is the playback-side cache of fetched clip blobs:
// bounded by entry count with least-recently-inserted eviction, coalesced
// fetches per asset key, best-effort prefetch, and disk spill for large blobs.
package mediacache
