package track

import (
	"errors"
	"strconv"
	"sync/atomic"

	"mixport/internal/beatgrid"
	"mixport/internal/cues"
)

// ErrAlreadyFinalized is returned when the offset is applied to a Pending
// record a second time.
var ErrAlreadyFinalized = errors.New("track already finalized")

var ratings = [6]int{0, 51, 102, 153, 204, 255}

// QuantizeRating maps a 0..5 star count onto the 0..255 scale Rekordbox
// stores. Counts outside the range are clamped.
func QuantizeRating(stars int) int {
	stars = min(max(stars, 0), len(ratings)-1)
	return ratings[stars]
}

// Context is the metadata snapshot of one track.
type Context struct {
	ID     int64
	Title  string
	Artist string
	Album  string
	Genre  string
	// Duration is in whole seconds.
	Duration   int
	SampleRate float64
	Channels   int
	BPM        float64
	Key        string
	Rating     int
	// Colour is the track colour; HasColour is false when Mixxx stored none.
	Colour    cues.Colour
	HasColour bool
	Location  string
}

// ExportedTrack is a fully normalized track. It is read-only.
type ExportedTrack struct {
	id       string
	context  Context
	beatGrid *beatgrid.Info
	cues     []cues.CuePoint
	offset   float64
}

// ID is the decimal Mixxx id.
func (t *ExportedTrack) ID() string { return t.id }

// Context returns the metadata snapshot.
func (t *ExportedTrack) Context() Context { return t.context }

// BeatGrid returns the corrected beat grid, if the track has one.
func (t *ExportedTrack) BeatGrid() (beatgrid.Info, bool) {
	if t.beatGrid == nil {
		return beatgrid.Info{}, false
	}
	return *t.beatGrid, true
}

// Cues returns the hot cues in source order.
func (t *ExportedTrack) Cues() []cues.CuePoint {
	return append([]cues.CuePoint(nil), t.cues...)
}

// Offset is the playback offset in seconds applied to the grid and cues.
func (t *ExportedTrack) Offset() float64 { return t.offset }

// Pending is a track whose timings have not been corrected yet.
type Pending struct {
	context  Context
	beatGrid *beatgrid.Info
	cues     []cues.CuePoint
	consumed atomic.Bool
}

// NewPending takes ownership of ctx, grid, and points. grid may be nil.
func NewPending(ctx Context, grid *beatgrid.Info, points []cues.CuePoint) *Pending {
	return &Pending{context: ctx, beatGrid: grid, cues: points}
}

// Finalize applies offsetSec and returns the finished track. The grid gets
// the track tempo when its payload had none. It fails with
// ErrAlreadyFinalized on every call after the first.
func (p *Pending) Finalize(offsetSec float64) (*ExportedTrack, error) {
	if !p.consumed.CompareAndSwap(false, true) {
		return nil, ErrAlreadyFinalized
	}
	exported := &ExportedTrack{
		id:      strconv.FormatInt(p.context.ID, 10),
		context: p.context,
		cues:    cues.ApplyOffset(p.cues, offsetSec),
		offset:  offsetSec,
	}
	if p.beatGrid != nil {
		corrected := p.beatGrid.Corrected(p.context.BPM, offsetSec)
		exported.beatGrid = &corrected
	}
	p.beatGrid = nil
	p.cues = nil
	return exported, nil
}
