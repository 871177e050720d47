package cues

import "math"

// HotCue is the only cue type exported.
const HotCue = 1

// Raw is a cue row as stored by Mixxx.
type Raw struct {
	// Index is the hot cue slot.
	Index int
	// Position counts interleaved samples from the start of the file.
	Position float64
	Colour   int64
}

// CuePoint is a normalized hot cue.
type CuePoint struct {
	Type       int
	Index      int
	PositionMs float64
	Colour     Colour
	Label      string
}

// PositionMillis converts an interleaved sample position to whole
// milliseconds. The position is truncated to a whole sample first, then the
// result is truncated toward zero.
func PositionMillis(raw, sampleRate float64, channels int) int64 {
	denominator := sampleRate * float64(channels)
	if denominator <= 0 {
		return 0
	}
	return int64(math.Trunc(math.Trunc(raw) * 1000 / denominator))
}

// Normalize builds a CuePoint. ordinal is the cue's position in the track's
// cue list and picks the fallback colour.
func Normalize(raw Raw, sampleRate float64, channels, ordinal int) CuePoint {
	colour := FallbackColour(ordinal)
	if ValidColour(raw.Colour) {
		colour = Colour(raw.Colour)
	}
	return CuePoint{
		Type:       HotCue,
		Index:      raw.Index,
		PositionMs: float64(PositionMillis(raw.Position, sampleRate, channels)),
		Colour:     colour,
	}
}

// ApplyOffset shifts every cue by offsetSec and clamps at zero. It returns a
// new slice. The shift is additive: calling it twice shifts twice.
func ApplyOffset(points []CuePoint, offsetSec float64) []CuePoint {
	if points == nil {
		return nil
	}
	shifted := make([]CuePoint, len(points))
	for i, point := range points {
		point.PositionMs = math.Max(0, point.PositionMs+offsetSec*1000)
		shifted[i] = point
	}
	return shifted
}

// StartSec is the cue position in seconds, as written to POSITION_MARK.
func (c CuePoint) StartSec() float64 {
	return c.PositionMs / 1000
}
