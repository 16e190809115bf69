package clips

import (
	"strings"
	"time"
)

// EventType classifies the play captured by a clip.
type EventType string

const (
	EventServe EventType = "serve"
	EventKill  EventType = "kill"
	EventDig   EventType = "dig"
	EventBlock EventType = "block"
	EventAce   EventType = "ace"
	EventSet   EventType = "set"
	EventOther EventType = "other"
)

var allEventTypes = []EventType{
	EventServe,
	EventKill,
	EventDig,
	EventBlock,
	EventAce,
	EventSet,
	EventOther,
}

var eventTypeSet = func() map[EventType]struct{} {
	set := make(map[EventType]struct{}, len(allEventTypes))
	for _, et := range allEventTypes {
		set[et] = struct{}{}
	}
	return set
}()

// ValidEventType reports whether value is a known event type. Empty is valid:
// the event type is optional metadata.
func ValidEventType(value string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	_, ok := eventTypeSet[EventType(value)]
	return ok
}

// Clip is one stored clip row.
type Clip struct {
	ID         string    `json:"id"`
	Reference  string    `json:"reference"`
	ObjectKey  string    `json:"object_key"`
	VideoURL   string    `json:"video_url"`
	Player     string    `json:"player,omitempty"`
	Tournament string    `json:"tournament,omitempty"`
	EventType  EventType `json:"event_type,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewClip carries the caller-supplied fields for an insert. The object key and
// video URL come from the ingestion pipeline, not the caller.
type NewClip struct {
	Reference  string
	ObjectKey  string
	VideoURL   string
	Player     string
	Tournament string
	EventType  EventType
	Tags       []string
	Notes      string
}

// ListFilter narrows List results. Zero value lists everything.
type ListFilter struct {
	// Search matches player, tournament, and notes, case-insensitively.
	Search string
	// EventType, when set, restricts results to one event type.
	EventType EventType
	// Limit caps the number of rows returned; <= 0 means no cap.
	Limit int
}
