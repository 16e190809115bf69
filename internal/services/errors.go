package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidReference marks caller errors: the media reference cannot be
	// resolved to an asset key. Not retriable without a corrected input.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrStoreUnavailable marks object-store transport or auth failures on
	// read paths. Transient; retriable by the caller.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStoreWrite marks object-store upload failures.
	ErrStoreWrite = errors.New("store write error")
	// ErrFetch marks failures of the external download tool.
	ErrFetch = errors.New("fetch error")
	// ErrTranscode marks encoder failures.
	ErrTranscode = errors.New("transcode error")
	// ErrTranscodeTimeout marks a transcode exceeding its wall-clock limit.
	ErrTranscodeTimeout = errors.New("transcode timeout")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = errors.New("service failure")
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retriable reports whether the caller may reasonably retry the operation
// without changing its input.
func Retriable(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidReference):
		return false
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrStoreWrite):
		return true
	case errors.Is(err, ErrFetch):
		return true
	case errors.Is(err, ErrTranscode), errors.Is(err, ErrTranscodeTimeout):
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
