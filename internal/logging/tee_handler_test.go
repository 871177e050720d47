package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type runLogPair struct {
	console bytes.Buffer
	file    bytes.Buffer
	logger  *slog.Logger
}

// newRunLogPair mirrors NewFromConfig: an info console and a debug JSON file.
func newRunLogPair(t *testing.T) *runLogPair {
	t.Helper()
	pair := &runLogPair{}
	consoleLevel := new(slog.LevelVar)
	fileLevel := new(slog.LevelVar)
	fileLevel.Set(slog.LevelDebug)
	pair.logger = slog.New(newTeeHandler(
		newConsoleHandler(&pair.console, consoleLevel, false),
		newJSONHandler(&pair.file, fileLevel, false),
	))
	return pair
}

type failingHandler struct {
	slog.Handler
	err error
}

func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }

func TestTeeHandlerCollapsesMissingSides(t *testing.T) {
	if _, ok := newTeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected a no-op handler without console or file")
	}
	var buf bytes.Buffer
	console := newConsoleHandler(&buf, new(slog.LevelVar), false)
	if newTeeHandler(console, nil) != console {
		t.Fatal("console alone should not be wrapped")
	}
	if newTeeHandler(nil, console) != console {
		t.Fatal("file alone should not be wrapped")
	}
}

func TestTeeHandlerWritesExportEventsToBoth(t *testing.T) {
	pair := newRunLogPair(t)
	pair.logger.Info("collection exported", String(FieldCollection, "Peak Time"), Int("tracks", 12))

	if !strings.Contains(pair.console.String(), "collection exported") {
		t.Fatalf("expected console output, got %q", pair.console.String())
	}
	if !strings.Contains(pair.file.String(), `"collection":"Peak Time"`) {
		t.Fatalf("expected structured file output, got %q", pair.file.String())
	}
}

func TestTeeHandlerKeepsDebugTrailInFileOnly(t *testing.T) {
	pair := newRunLogPair(t)
	pair.logger.Debug("track not found, skipping", Int64(FieldTrackID, 7))

	if pair.console.Len() != 0 {
		t.Fatalf("debug must stay off the console, got %q", pair.console.String())
	}
	if !strings.Contains(pair.file.String(), `"track_id":7`) {
		t.Fatalf("expected debug record in file, got %q", pair.file.String())
	}
	if !pair.logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be enabled while the file accepts it")
	}
}

func TestTeeHandlerCarriesComponentAndGroup(t *testing.T) {
	pair := newRunLogPair(t)
	NewComponentLogger(pair.logger, "pipeline").Info("collection extracted", Int("tracks", 3))

	if !strings.Contains(pair.console.String(), "pipeline") {
		t.Fatalf("expected component on console, got %q", pair.console.String())
	}
	if !strings.Contains(pair.file.String(), `"component":"pipeline"`) {
		t.Fatalf("expected component in file, got %q", pair.file.String())
	}

	pair.logger.WithGroup("progress").Info("collection progress", Int("done", 3))
	if !strings.Contains(pair.file.String(), `"progress":{"done":3}`) {
		t.Fatalf("expected grouped attrs in file, got %q", pair.file.String())
	}
}

func TestTeeHandlerReportsFailuresFromBothSides(t *testing.T) {
	var buf bytes.Buffer
	level := new(slog.LevelVar)
	consoleErr := errors.New("console closed")
	fileErr := errors.New("disk full")
	h := newTeeHandler(
		failingHandler{Handler: newConsoleHandler(&buf, level, false), err: consoleErr},
		failingHandler{Handler: newJSONHandler(&buf, level, false), err: fileErr},
	)

	record := slog.NewRecord(time.Time{}, slog.LevelWarn, "offset lookup failed", 0)
	err := h.Handle(context.Background(), record)
	if !errors.Is(err, consoleErr) || !errors.Is(err, fileErr) {
		t.Fatalf("expected both errors, got %v", err)
	}
}
