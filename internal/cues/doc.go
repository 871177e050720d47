// Package cues converts Mixxx hot cues into the cue points written as
// Rekordbox POSITION_MARK elements: sample positions become milliseconds and
// unset colours are replaced from a fixed eight-colour palette.
package cues
