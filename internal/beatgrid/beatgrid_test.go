package beatgrid_test

import (
	"errors"
	"math"
	"testing"

	"mixport/internal/beatgrid"
	"mixport/internal/services"
	"mixport/internal/testsupport"
)

func TestDecodeBeatMapSelectsHighestEnabledSource(t *testing.T) {
	payload := testsupport.BeatMapPayload(
		testsupport.Beat{Enabled: true, Frame: 100, Source: 1},
		testsupport.Beat{Enabled: true, Frame: 50, Source: 2},
		testsupport.Beat{Enabled: false, Frame: 10, Source: 9},
	)

	info, err := beatgrid.Decode(payload, beatgrid.BeatMap, 44100)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if info.Start != 50 {
		t.Fatalf("expected anchor frame 50, got %v", info.Start)
	}
	if info.HasBPM() {
		t.Fatalf("beat map must not carry a tempo, got %v", info.BPM)
	}
	if info.Format != beatgrid.BeatMap {
		t.Fatalf("unexpected format %q", info.Format)
	}
}

func TestDecodeBeatMapTiesKeepFirstEncountered(t *testing.T) {
	payload := testsupport.BeatMapPayload(
		testsupport.Beat{Enabled: true, Frame: 1, Source: 5},
		testsupport.Beat{Enabled: true, Frame: 300, Source: 3},
		testsupport.Beat{Enabled: true, Frame: 200, Source: 3},
	)
	info, err := beatgrid.Decode(payload, beatgrid.BeatMap, 48000)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if info.Start != 300 {
		t.Fatalf("expected first of tied beats, got %v", info.Start)
	}
}

func TestDecodeBeatMapWithoutEligibleBeatIsMalformed(t *testing.T) {
	payloads := map[string][]byte{
		"empty": nil,
		"disabled and early": testsupport.BeatMapPayload(
			testsupport.Beat{Enabled: false, Frame: 500, Source: 1},
			testsupport.Beat{Enabled: true, Frame: 1, Source: 2},
		),
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			_, err := beatgrid.Decode(payload, beatgrid.BeatMap, 44100)
			if !errors.Is(err, services.ErrMalformedBeatGrid) {
				t.Fatalf("expected malformed beat grid, got %v", err)
			}
		})
	}
}

func TestDecodeFixedGrid(t *testing.T) {
	info, err := beatgrid.Decode(testsupport.BeatGridPayload(128, 22050), beatgrid.FixedGrid, 44100)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if info.Start != 22050 || info.BPM != 128 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	garbage := []byte{0x0a, 0xff, 0xff}
	for _, format := range []beatgrid.Format{beatgrid.FixedGrid, beatgrid.BeatMap} {
		if _, err := beatgrid.Decode(garbage, format, 44100); !errors.Is(err, services.ErrMalformedBeatGrid) {
			t.Fatalf("%s: expected malformed beat grid, got %v", format, err)
		}
	}
	if _, err := beatgrid.Decode(testsupport.BeatGridPayload(120, 0), beatgrid.Format("bogus"), 44100); !errors.Is(err, services.ErrMalformedBeatGrid) {
		t.Fatalf("expected unknown format to be malformed, got %v", err)
	}
	if _, err := beatgrid.Decode(testsupport.BeatGridPayload(120, 0), beatgrid.FixedGrid, 0); !errors.Is(err, services.ErrMalformedBeatGrid) {
		t.Fatalf("expected zero sample rate to be rejected, got %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]beatgrid.Format{
		"BeatGrid-2.0": beatgrid.FixedGrid,
		"BeatMap-1.0":  beatgrid.BeatMap,
		"fixed-grid":   beatgrid.FixedGrid,
		"beat-map":     beatgrid.BeatMap,
	}
	for input, want := range tests {
		got, err := beatgrid.ParseFormat(input)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := beatgrid.ParseFormat("BeatGrid-1.0-legacy"); !errors.Is(err, services.ErrMalformedBeatGrid) {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestStartSec(t *testing.T) {
	tests := []struct {
		name string
		info beatgrid.Info
		want float64
	}{
		{
			name: "tempo at zero",
			info: beatgrid.Info{Start: 0, SampleRate: 44100, BPM: 128, Offset: 0.5},
			want: 0.5,
		},
		{
			name: "tempo folds into first bar",
			// 120 BPM bar = 2s; anchor at 5s folds to 1s.
			info: beatgrid.Info{Start: 5 * 44100, SampleRate: 44100, BPM: 120},
			want: 1,
		},
		{
			name: "no tempo uses raw anchor",
			info: beatgrid.Info{Start: 5 * 44100, SampleRate: 44100, Offset: 0.25},
			want: 5.25,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.StartSec(); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("StartSec() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCorrectedFillsTempoOnlyWhenMissing(t *testing.T) {
	base := beatgrid.Info{Start: 100, SampleRate: 44100}
	got := base.Corrected(124, 0.1)
	if got.BPM != 124 || got.Offset != 0.1 {
		t.Fatalf("unexpected corrected info: %+v", got)
	}
	if base.BPM != 0 || base.Offset != 0 {
		t.Fatalf("Corrected must not mutate the receiver: %+v", base)
	}

	withTempo := beatgrid.Info{Start: 100, SampleRate: 44100, BPM: 90}
	if got := withTempo.Corrected(124, 0); got.BPM != 90 {
		t.Fatalf("expected payload tempo to win, got %v", got.BPM)
	}
}
