// Package beatgrid decodes the protobuf beat payloads Mixxx stores in
// library.beats.
//
// Two layouts exist. "BeatGrid-2.0" rows hold a fixed grid: one anchor beat
// plus a BPM. "BeatMap-1.0" rows hold every detected beat; the anchor is chosen
// from the enabled beats by source priority and the BPM must come from the
// track. Payloads are parsed once into a Grid (a tagged union) and reduced to
// an Info, the timing anchor used by the Rekordbox TEMPO element.
package beatgrid
