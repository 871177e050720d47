package beatgrid

import (
	"fmt"
	"strings"

	"mixport/internal/services"
)

// Format discriminates the two beat payload layouts.
type Format string

const (
	FixedGrid Format = "fixed-grid"
	BeatMap   Format = "beat-map"
)

// Mixxx's names for the formats, as stored in library.beats_version.
const (
	mixxxBeatGrid = "BeatGrid-2.0"
	mixxxBeatMap  = "BeatMap-1.0"
)

// ParseFormat accepts either the canonical tags or the version strings Mixxx
// writes next to the payload.
func ParseFormat(value string) (Format, error) {
	trimmed := strings.TrimSpace(value)
	switch {
	case trimmed == string(FixedGrid), strings.EqualFold(trimmed, mixxxBeatGrid):
		return FixedGrid, nil
	case trimmed == string(BeatMap), strings.EqualFold(trimmed, mixxxBeatMap):
		return BeatMap, nil
	default:
		return "", services.Wrap(services.ErrMalformedBeatGrid, "beatgrid", "parse format",
			fmt.Sprintf("unknown beat format %q", value), nil)
	}
}
