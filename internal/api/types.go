package api

import (
	"clipvault/internal/clips"
	"clipvault/internal/mediacache"
)

// DependencyStatus mirrors the deps package status for transport.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// StatusResponse is the payload for GET /api/status.
type StatusResponse struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	Bucket       string             `json:"bucket"`
	ClipsDBPath  string             `json:"clips_db_path"`
	LockFilePath string             `json:"lock_file_path"`
	Cache        mediacache.Stats   `json:"cache"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// IngestRequest is the payload for POST /api/ingest.
type IngestRequest struct {
	Reference string `json:"reference"`
}

// IngestResponse reports a completed ingest.
type IngestResponse struct {
	Key          string `json:"key"`
	URL          string `json:"url"`
	Deduplicated bool   `json:"deduplicated"`
}

// AddClipRequest is the payload for POST /api/clips. The daemon ingests the
// reference first, then records the row with the resulting object key and URL.
type AddClipRequest struct {
	Reference  string   `json:"reference"`
	Player     string   `json:"player,omitempty"`
	Tournament string   `json:"tournament,omitempty"`
	EventType  string   `json:"event_type,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// UpdateClipRequest is the payload for PATCH /api/clips/{id}. Nil fields are
// left unchanged.
type UpdateClipRequest struct {
	Player     *string   `json:"player,omitempty"`
	Tournament *string   `json:"tournament,omitempty"`
	EventType  *string   `json:"event_type,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
}

// ClipResponse wraps a single clip row.
type ClipResponse struct {
	Clip *clips.Clip `json:"clip"`
}

// ClipListResponse wraps a clip listing.
type ClipListResponse struct {
	Clips []*clips.Clip `json:"clips"`
}

// PrefetchRequest is the payload for POST /api/cache/prefetch.
type PrefetchRequest struct {
	Keys []string `json:"keys"`
}

// ErrorResponse carries an error message for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
