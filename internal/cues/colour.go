package cues

import "fmt"

// Colour is a packed 0xRRGGBB value.
type Colour uint32

// Palette is used, in order, for cues whose stored colour is unusable.
var Palette = [8]Colour{
	0xc02626,
	0xf8821a,
	0xfac313,
	0x1fad26,
	0x00ffff,
	0x173ba2,
	0x6823b6,
	0xce359e,
}

// R returns the red component.
func (c Colour) R() int { return int(c>>16) & 0xff }

// G returns the green component.
func (c Colour) G() int { return int(c>>8) & 0xff }

// B returns the blue component.
func (c Colour) B() int { return int(c) & 0xff }

// Hex renders the colour as 0xRRGGBB.
func (c Colour) Hex() string {
	return fmt.Sprintf("0x%06X", uint32(c)&0xffffff)
}

// ValidColour reports whether a stored colour spans the full six hex digits.
// Mixxx writes 0 or a small predefined index when no colour was chosen, and
// those values render as too-short hex strings.
func ValidColour(packed int64) bool {
	return packed >= 0x100000 && packed <= 0xffffff
}

// FallbackColour returns the palette entry for the ordinal-th cue of a track.
func FallbackColour(ordinal int) Colour {
	if ordinal < 0 {
		ordinal = -ordinal
	}
	return Palette[ordinal%len(Palette)]
}
