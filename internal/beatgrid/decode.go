package beatgrid

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"mixport/internal/services"
)

// Beat is one entry of a beat payload.
type Beat struct {
	Frame   int32
	Enabled bool
	Source  int32
}

// Grid is a parsed payload. Exactly one of Fixed or Map is meaningful,
// selected by Format.
type Grid struct {
	Format Format
	Fixed  Fixed
	Map    []Beat
}

// Fixed is the fixed-interval layout: an anchor beat and a tempo.
type Fixed struct {
	First  Beat
	BPM    float64
	HasBPM bool
}

// Parse decodes payload according to format.
func Parse(payload []byte, format Format) (Grid, error) {
	var (
		grid = Grid{Format: format}
		err  error
	)
	switch format {
	case FixedGrid:
		grid.Fixed, err = parseFixed(payload)
	case BeatMap:
		grid.Map, err = parseBeatMap(payload)
	default:
		err = fmt.Errorf("unknown beat format %q", string(format))
	}
	if err != nil {
		return Grid{}, services.Wrap(services.ErrMalformedBeatGrid, "beatgrid", "parse", string(format), err)
	}
	return grid, nil
}

// Anchor returns the frame the grid is anchored on and the tempo, when the
// layout carries one.
func (g Grid) Anchor() (frame int32, bpm float64, hasBPM bool, err error) {
	switch g.Format {
	case FixedGrid:
		return g.Fixed.First.Frame, g.Fixed.BPM, g.Fixed.HasBPM, nil
	case BeatMap:
		best := -1
		for i, beat := range g.Map {
			if !beat.Enabled || beat.Frame <= 1 {
				continue
			}
			if best < 0 || beat.Source > g.Map[best].Source {
				best = i
			}
		}
		if best < 0 {
			return 0, 0, false, services.Wrap(services.ErrMalformedBeatGrid, "beatgrid", "anchor",
				"beat map has no enabled beat after frame 1", nil)
		}
		return g.Map[best].Frame, 0, false, nil
	default:
		return 0, 0, false, services.Wrap(services.ErrMalformedBeatGrid, "beatgrid", "anchor",
			fmt.Sprintf("unknown beat format %q", string(g.Format)), nil)
	}
}

// Decode parses payload and reduces it to an Info for the given sample rate.
func Decode(payload []byte, format Format, sampleRate float64) (Info, error) {
	if sampleRate <= 0 {
		return Info{}, services.Wrap(services.ErrMalformedBeatGrid, "beatgrid", "decode",
			fmt.Sprintf("invalid sample rate %v", sampleRate), nil)
	}
	grid, err := Parse(payload, format)
	if err != nil {
		return Info{}, err
	}
	frame, bpm, hasBPM, err := grid.Anchor()
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Format:     format,
		Start:      float64(frame),
		SampleRate: sampleRate,
	}
	if hasBPM && bpm > 0 {
		info.BPM = bpm
	}
	return info, nil
}

func parseFixed(b []byte) (Fixed, error) {
	var fixed Fixed
	fixed.First.Enabled = true
	err := walk(b, func(num protowire.Number, typ protowire.Type, value []byte) (int, error) {
		switch {
		case num == 1 && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(value)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			bpm, err := parseBPM(raw)
			if err != nil {
				return 0, fmt.Errorf("bpm: %w", err)
			}
			fixed.BPM = bpm
			fixed.HasBPM = true
			return n, nil
		case num == 2 && typ == protowire.BytesType:
			raw, n := protowire.ConsumeBytes(value)
			if n < 0 {
				return 0, protowire.ParseError(n)
			}
			beat, err := parseBeat(raw)
			if err != nil {
				return 0, fmt.Errorf("first_beat: %w", err)
			}
			fixed.First = beat
			return n, nil
		}
		return -1, nil
	})
	return fixed, err
}

func parseBeatMap(b []byte) ([]Beat, error) {
	var beats []Beat
	err := walk(b, func(num protowire.Number, typ protowire.Type, value []byte) (int, error) {
		if num != 1 || typ != protowire.BytesType {
			return -1, nil
		}
		raw, n := protowire.ConsumeBytes(value)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		beat, err := parseBeat(raw)
		if err != nil {
			return 0, fmt.Errorf("beat %d: %w", len(beats), err)
		}
		beats = append(beats, beat)
		return n, nil
	})
	return beats, err
}

func parseBeat(b []byte) (Beat, error) {
	beat := Beat{Enabled: true}
	err := walk(b, func(num protowire.Number, typ protowire.Type, value []byte) (int, error) {
		if typ != protowire.VarintType || num < 1 || num > 3 {
			return -1, nil
		}
		v, n := protowire.ConsumeVarint(value)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		switch num {
		case 1:
			beat.Frame = int32(v)
		case 2:
			beat.Enabled = protowire.DecodeBool(v)
		case 3:
			beat.Source = int32(v)
		}
		return n, nil
	})
	return beat, err
}

func parseBPM(b []byte) (float64, error) {
	var bpm float64
	err := walk(b, func(num protowire.Number, typ protowire.Type, value []byte) (int, error) {
		if num != 1 || typ != protowire.Fixed64Type {
			return -1, nil
		}
		v, n := protowire.ConsumeFixed64(value)
		if n < 0 {
			return 0, protowire.ParseError(n)
		}
		bpm = math.Float64frombits(v)
		return n, nil
	})
	if err == nil && (math.IsNaN(bpm) || math.IsInf(bpm, 0)) {
		return 0, errors.New("bpm is not finite")
	}
	return bpm, err
}

// walk iterates the fields of one message. visit returns the bytes it
// consumed, or -1 to have the field skipped.
func walk(b []byte, visit func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		used, err := visit(num, typ, b)
		if err != nil {
			return err
		}
		if used < 0 {
			used = protowire.ConsumeFieldValue(num, typ, b)
			if used < 0 {
				return protowire.ParseError(used)
			}
		}
		b = b[used:]
	}
	return nil
}
