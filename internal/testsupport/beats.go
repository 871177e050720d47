package testsupport

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Beat describes one entry of a beat payload fixture.
type Beat struct {
	Frame   int32
	Enabled bool
	Source  int32
}

// BeatGridPayload encodes a Mixxx BeatGrid-2.0 message: a tempo and a first beat.
func BeatGridPayload(bpm float64, firstFrame int32) []byte {
	var tempo []byte
	tempo = protowire.AppendTag(tempo, 1, protowire.Fixed64Type)
	tempo = protowire.AppendFixed64(tempo, math.Float64bits(bpm))

	first := encodeBeat(Beat{Frame: firstFrame, Enabled: true})

	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, tempo)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendBytes(b, first)
	return b
}

// BeatMapPayload encodes a Mixxx BeatMap-1.0 message.
func BeatMapPayload(beats ...Beat) []byte {
	var b []byte
	for _, beat := range beats {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeBeat(beat))
	}
	return b
}

func encodeBeat(beat Beat) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(int64(beat.Frame)))
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, protowire.EncodeBool(beat.Enabled))
	if beat.Source != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(beat.Source)))
	}
	return b
}
