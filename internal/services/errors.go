package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLookupMiss marks a track id that has no row in the source library.
	ErrLookupMiss = errors.New("lookup miss")
	// ErrMalformedBeatGrid marks a beat payload that could not be decoded.
	ErrMalformedBeatGrid = errors.New("malformed beat grid")
	// ErrUnknownKey marks a key id outside the resolver tables.
	ErrUnknownKey = errors.New("unknown key")
	// ErrTranscode marks a failed copy or re-encode of an audio file.
	ErrTranscode = errors.New("transcode error")
	// ErrConfiguration marks an unusable configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		return fmt.Errorf("%s: %w", detail, err)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether err only affects a single track and must not
// abort the collection it belongs to.
func Recoverable(err error) bool {
	return errors.Is(err, ErrLookupMiss) || errors.Is(err, ErrMalformedBeatGrid)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
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
