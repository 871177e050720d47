package beatgrid

import "math"

// Info is the decoded timing anchor of a track.
type Info struct {
	Format Format
	// Start is the anchor position in sample frames.
	Start      float64
	SampleRate float64
	// BPM is zero when neither the payload nor the track supplied a tempo.
	BPM float64
	// Offset is the file's playback offset in seconds.
	Offset float64
}

// HasBPM reports whether the grid carries a tempo.
func (i Info) HasBPM() bool {
	return i.BPM > 0
}

// Corrected returns a copy with the track tempo filled in when the payload had
// none, and with the file offset applied.
func (i Info) Corrected(trackBPM, offsetSec float64) Info {
	if !i.HasBPM() && trackBPM > 0 {
		i.BPM = trackBPM
	}
	i.Offset = offsetSec
	return i
}

// StartSec is the first downbeat in seconds. With a tempo the anchor is folded
// into the first bar (four beats); without one the raw anchor time is used.
func (i Info) StartSec() float64 {
	if i.SampleRate <= 0 {
		return i.Offset
	}
	start := i.Start / i.SampleRate
	if i.HasBPM() {
		bar := 4 * 60 / i.BPM
		start = math.Mod(start, bar)
		if start < 0 {
			start += bar
		}
	}
	return start + i.Offset
}
