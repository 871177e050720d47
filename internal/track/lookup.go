package track

import (
	"context"

	"mixport/internal/cues"
)

// Row is the raw library row of one track.
type Row struct {
	ID           int64
	SampleRate   float64
	Channels     int
	Duration     float64
	Title        string
	Artist       string
	Album        string
	Genre        string
	BPM          float64
	Beats        []byte
	BeatsVersion string
	KeyID        int
	Rating       int
	Colour       int64
	HasColour    bool
	Location     string
}

// Lookup reads tracks from the source library. Track returns an error
// marked services.ErrLookupMiss when no row exists.
type Lookup interface {
	Track(ctx context.Context, id int64) (Row, error)
	Cues(ctx context.Context, id int64) ([]cues.Raw, error)
}

// Relocation is where a copied or transcoded file ended up.
type Relocation struct {
	// Path is the file on this machine.
	Path string
	// Location is the path written to the document.
	Location string
}

// Relocator copies or re-encodes a track's audio file.
type Relocator interface {
	Relocate(ctx context.Context, source string) (Relocation, error)
}

// OffsetSource reports a file's playback offset in seconds. Failures are
// the implementation's concern; it returns 0 when no offset is known.
type OffsetSource interface {
	OffsetSeconds(ctx context.Context, path string) float64
}

// FormatSource reads the sample rate and channel count of an audio file. It
// fills in rows the library has not analysed yet.
type FormatSource interface {
	StreamFormat(ctx context.Context, path string) (sampleRate float64, channels int, err error)
}
