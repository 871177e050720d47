package cues_test

import (
	"testing"

	"mixport/internal/cues"
)

func TestPositionMillis(t *testing.T) {
	tests := []struct {
		raw        float64
		sampleRate float64
		channels   int
		want       int64
	}{
		{88200, 44100, 2, 1000},
		{0, 44100, 2, 0},
		{44099, 44100, 1, 999},
		{96000 * 2 * 3, 96000, 2, 3000},
		{1000, 0, 2, 0},
		{88.5, 44100, 2, 0},
		{88200.9, 44100, 2, 1000},
		{176.4, 88200, 1, 1},
	}
	for _, tt := range tests {
		if got := cues.PositionMillis(tt.raw, tt.sampleRate, tt.channels); got != tt.want {
			t.Fatalf("PositionMillis(%v, %v, %d) = %d, want %d", tt.raw, tt.sampleRate, tt.channels, got, tt.want)
		}
	}
}

func TestNormalizeKeepsValidColour(t *testing.T) {
	cue := cues.Normalize(cues.Raw{Index: 3, Position: 88200, Colour: 0x2d6fdb}, 44100, 2, 0)
	if cue.Type != cues.HotCue || cue.Index != 3 {
		t.Fatalf("unexpected identity: %+v", cue)
	}
	if cue.PositionMs != 1000 {
		t.Fatalf("unexpected position: %v", cue.PositionMs)
	}
	if cue.Colour != 0x2d6fdb {
		t.Fatalf("expected stored colour, got %s", cue.Colour.Hex())
	}
	if cue.Label != "" {
		t.Fatalf("expected empty label, got %q", cue.Label)
	}
}

func TestNormalizeFallsBackToPalette(t *testing.T) {
	tests := []struct {
		packed  int64
		ordinal int
		want    cues.Colour
	}{
		{0, 0, 0xc02626},
		{0, 1, 0xf8821a},
		{7, 4, 0x00ffff},
		{0xfffff, 7, 0xce359e},
		{0x1000000, 8, 0xc02626},
		{-1, 10, 0xfac313},
	}
	for _, tt := range tests {
		cue := cues.Normalize(cues.Raw{Colour: tt.packed}, 44100, 2, tt.ordinal)
		if cue.Colour != tt.want {
			t.Fatalf("colour %#x ordinal %d: got %s want %s", tt.packed, tt.ordinal, cue.Colour.Hex(), tt.want.Hex())
		}
	}
}

func TestColourComponents(t *testing.T) {
	c := cues.Colour(0xf8821a)
	if c.R() != 0xf8 || c.G() != 0x82 || c.B() != 0x1a {
		t.Fatalf("unexpected components: %d %d %d", c.R(), c.G(), c.B())
	}
	if c.Hex() != "0xF8821A" {
		t.Fatalf("unexpected hex: %s", c.Hex())
	}
	if cues.Colour(0x00ffff).Hex() != "0x00FFFF" {
		t.Fatalf("expected zero padded hex, got %s", cues.Colour(0x00ffff).Hex())
	}
}

func TestApplyOffsetShiftsAndClamps(t *testing.T) {
	points := []cues.CuePoint{
		{Index: 0, PositionMs: 1000},
		{Index: 1, PositionMs: 100},
	}

	shifted := cues.ApplyOffset(points, -0.25)
	if shifted[0].PositionMs != 750 {
		t.Fatalf("expected 750ms, got %v", shifted[0].PositionMs)
	}
	if shifted[1].PositionMs != 0 {
		t.Fatalf("expected clamp to 0, got %v", shifted[1].PositionMs)
	}
	if points[0].PositionMs != 1000 {
		t.Fatalf("input must not be mutated, got %v", points[0].PositionMs)
	}
}

func TestApplyOffsetIsAdditive(t *testing.T) {
	points := []cues.CuePoint{{PositionMs: 1000}}
	once := cues.ApplyOffset(points, 0.5)
	twice := cues.ApplyOffset(once, 0.5)
	if once[0].PositionMs != 1500 || twice[0].PositionMs != 2000 {
		t.Fatalf("expected additive shift, got %v then %v", once[0].PositionMs, twice[0].PositionMs)
	}
	if cues.ApplyOffset(nil, 1) != nil {
		t.Fatal("expected nil for nil input")
	}
}
