package export_test

import (
	"context"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"mixport/internal/config"
	"mixport/internal/export"
	"mixport/internal/offset"
	"mixport/internal/pipeline"
	"mixport/internal/services"
	"mixport/internal/testsupport"
	"mixport/internal/track"
)

type fakeOffsets struct {
	mu       sync.Mutex
	value    float64
	failures []offset.Failure
}

func (f *fakeOffsets) OffsetSeconds(_ context.Context, path string) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.Contains(path, "unreadable") {
		f.failures = append(f.failures, offset.Failure{Path: path, Err: errors.New("invalid data")})
		return 0
	}
	return f.value
}

func (f *fakeOffsets) Flush() []offset.Failure {
	f.mu.Lock()
	defer f.mu.Unlock()
	failures := f.failures
	f.failures = nil
	return failures
}

type document struct {
	Collection struct {
		Entries int `xml:"Entries,attr"`
		Tracks  []struct {
			TrackID  string `xml:"TrackID,attr"`
			Location string `xml:"Location,attr"`
			Marks    []struct {
				Start string `xml:"Start,attr"`
			} `xml:"POSITION_MARK"`
		} `xml:"TRACK"`
	} `xml:"COLLECTION"`
	Playlists struct {
		Root struct {
			Nodes []struct {
				Name   string `xml:"Name,attr"`
				Tracks []struct {
					Key string `xml:"Key,attr"`
				} `xml:"TRACK"`
			} `xml:"NODE"`
		} `xml:"NODE"`
	} `xml:"PLAYLISTS"`
}

func readDocument(t *testing.T, path string) document {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func addTrack(lib *testsupport.MixxxLibrary, id int64, location string) {
	lib.AddTrack(track.Row{
		ID:         id,
		SampleRate: 44100,
		Channels:   2,
		Duration:   180,
		Title:      filepath.Base(location),
		Artist:     "Artist",
		BPM:        124,
		KeyID:      1,
		Rating:     4,
		Location:   location,
	})
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, *testsupport.MixxxLibrary) {
	t.Helper()
	lib := testsupport.NewMixxxLibrary(t)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Mixxx.Database = lib.Path
	cfg.Export.Workers = 2
	return cfg, lib
}

func TestRunExportsVisiblePlaylists(t *testing.T) {
	cfg, lib := newFixture(t)
	cfg.Export.ExportAll = true
	addTrack(lib, 1, "/music/one.mp3")
	addTrack(lib, 2, "/music/two.flac")
	addTrack(lib, 3, "/music/three.wav")
	lib.AddCue(1, 1, 0, 176400, 0xff0000)
	lib.AddPlaylist(10, "Warmup", false, 2, 1, 99)
	lib.AddPlaylist(11, "Hidden", true, 3)
	lib.AddPlaylist(12, "Closing", false, 3, 2)

	offsets := &fakeOffsets{value: 0.5}
	exporter, err := export.New(cfg, export.Options{Offsets: offsets, Version: "test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := exporter.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(summary.Collections) != 2 || summary.Exported() != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	closing := summary.Collections[0]
	warmup := summary.Collections[1]
	if closing.Name != "Closing" || warmup.Name != "Warmup" {
		t.Fatalf("collections should be ordered by name: %+v", summary.Collections)
	}
	if warmup.Tracks != 2 || warmup.Skipped != 1 || warmup.Status != export.StatusExported {
		t.Fatalf("unexpected warmup summary %+v", warmup)
	}
	if !summary.Written || summary.Tracks != 3 {
		t.Fatalf("expected 3 distinct tracks, got %d", summary.Tracks)
	}

	doc := readDocument(t, cfg.Export.OutputPath)
	if doc.Collection.Entries != 3 {
		t.Fatalf("expected 3 collection entries, got %d", doc.Collection.Entries)
	}
	nodes := doc.Playlists.Root.Nodes
	if len(nodes) != 2 || nodes[1].Name != "Warmup" {
		t.Fatalf("unexpected playlists %+v", nodes)
	}
	if nodes[1].Tracks[0].Key != "2" || nodes[1].Tracks[1].Key != "1" {
		t.Fatalf("playlist order not preserved: %+v", nodes[1].Tracks)
	}
	for _, tr := range doc.Collection.Tracks {
		if tr.TrackID == "1" {
			// 176400 interleaved samples at 44.1kHz stereo is 2s, plus 0.5s offset.
			if len(tr.Marks) != 1 || tr.Marks[0].Start != "2.500" {
				t.Fatalf("unexpected cue marks %+v", tr.Marks)
			}
			if tr.Location != "file://localhost/music/one.mp3" {
				t.Fatalf("unexpected location %q", tr.Location)
			}
		}
	}
	if _, err := os.Stat(cfg.Export.OutputPath + ".lock"); !os.IsNotExist(err) {
		t.Fatalf("lock file should be removed, stat err %v", err)
	}
}

func TestRunHonoursConfirmer(t *testing.T) {
	cfg, lib := newFixture(t)
	addTrack(lib, 1, "/music/one.mp3")
	lib.AddPlaylist(1, "Keep", false, 1)
	lib.AddPlaylist(2, "Drop", false, 1)

	var asked []string
	confirmer := export.ConfirmFunc(func(_ context.Context, name string) (bool, error) {
		asked = append(asked, name)
		return name == "Keep", nil
	})
	exporter, err := export.New(cfg, export.Options{Confirmer: confirmer, Offsets: &fakeOffsets{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := exporter.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(asked, ",") != "Drop,Keep" {
		t.Fatalf("unexpected prompts %v", asked)
	}
	if summary.Collections[0].Status != export.StatusDeclined || summary.Collections[1].Status != export.StatusExported {
		t.Fatalf("unexpected statuses %+v", summary.Collections)
	}
	doc := readDocument(t, cfg.Export.OutputPath)
	if len(doc.Playlists.Root.Nodes) != 1 || doc.Playlists.Root.Nodes[0].Name != "Keep" {
		t.Fatalf("unexpected playlists %+v", doc.Playlists.Root.Nodes)
	}
}

func TestRunOmitsFailedCollection(t *testing.T) {
	cfg, lib := newFixture(t, testsupport.WithOutDir("usb"))
	cfg.Export.ExportAll = true
	musicDir := t.TempDir()
	present := filepath.Join(musicDir, "present.mp3")
	testsupport.WriteFile(t, present, 64)
	addTrack(lib, 1, present)
	addTrack(lib, 2, filepath.Join(musicDir, "missing.mp3"))
	lib.AddPlaylist(1, "Broken", false, 2)
	lib.AddPlaylist(2, "Fine", false, 1)

	exporter, err := export.New(cfg, export.Options{Offsets: &fakeOffsets{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := exporter.Run(context.Background())
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected transcode failure, got %v", err)
	}
	if !strings.Contains(err.Error(), `collection "Broken"`) || !strings.Contains(err.Error(), "track 2") {
		t.Fatalf("error should name the collection and track: %v", err)
	}
	failed := summary.Failed()
	if len(failed) != 1 || failed[0].Name != "Broken" {
		t.Fatalf("unexpected failures %+v", failed)
	}

	doc := readDocument(t, cfg.Export.OutputPath)
	if len(doc.Playlists.Root.Nodes) != 1 || doc.Playlists.Root.Nodes[0].Name != "Fine" {
		t.Fatalf("failed collection must be omitted: %+v", doc.Playlists.Root.Nodes)
	}
	if len(doc.Collection.Tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(doc.Collection.Tracks))
	}
	want := "file://localhost" + filepath.ToSlash(filepath.Join(cfg.Export.OutDir, "present.mp3"))
	if doc.Collection.Tracks[0].Location != want {
		t.Fatalf("expected relocated location %q, got %q", want, doc.Collection.Tracks[0].Location)
	}
	if _, err := os.Stat(filepath.Join(cfg.Export.OutDir, "present.mp3")); err != nil {
		t.Fatalf("expected copied file: %v", err)
	}
}

func TestRunReportsOffsetWarningsPerCollection(t *testing.T) {
	cfg, lib := newFixture(t)
	cfg.Export.ExportAll = true
	addTrack(lib, 1, "/music/unreadable.mp3")
	addTrack(lib, 2, "/music/fine.mp3")
	lib.AddPlaylist(1, "A", false, 1, 2)
	lib.AddPlaylist(2, "B", false, 2)

	exporter, err := export.New(cfg, export.Options{Offsets: &fakeOffsets{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := exporter.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Collections[0].Warnings != 1 || summary.Collections[1].Warnings != 0 {
		t.Fatalf("unexpected warnings %+v", summary.Collections)
	}
}

func TestRunUsesCrates(t *testing.T) {
	cfg, lib := newFixture(t)
	cfg.Export.ExportAll = true
	cfg.Export.CollectionType = "crates"
	addTrack(lib, 1, "/music/one.mp3")
	lib.AddCrate(1, "Visible", true, 1)
	lib.AddCrate(2, "Invisible", false, 1)
	lib.AddPlaylist(1, "Playlist", false, 1)

	exporter, err := export.New(cfg, export.Options{Offsets: &fakeOffsets{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := exporter.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Collections) != 1 || summary.Collections[0].Name != "Visible" {
		t.Fatalf("unexpected collections %+v", summary.Collections)
	}
}

func TestNewRequiresConfirmerUnlessExportAll(t *testing.T) {
	cfg, _ := newFixture(t)
	if _, err := export.New(cfg, export.Options{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	cfg.Export.ExportAll = true
	if _, err := export.New(cfg, export.Options{}); err != nil {
		t.Fatalf("export_all should not need a confirmer: %v", err)
	}
}

func TestRunFailsPreflightForMissingDatabase(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Export.ExportAll = true
	exporter, err := export.New(cfg, export.Options{Offsets: &fakeOffsets{}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := exporter.Run(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := os.Stat(cfg.Export.OutputPath); !os.IsNotExist(err) {
		t.Fatal("no document should be written when preflight fails")
	}
}

func TestRunReportsProgress(t *testing.T) {
	cfg, lib := newFixture(t)
	cfg.Export.ExportAll = true
	addTrack(lib, 1, "/music/one.mp3")
	addTrack(lib, 2, "/music/two.mp3")
	lib.AddPlaylist(1, "Set", false, 1, 2)

	var mu sync.Mutex
	last := map[string][2]int{}
	exporter, err := export.New(cfg, export.Options{
		Offsets: &fakeOffsets{},
		Progress: func(collection string, _ int) pipeline.ProgressFunc {
			return func(done, total int) {
				mu.Lock()
				last[collection] = [2]int{done, total}
				mu.Unlock()
			}
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := exporter.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if last["Set"] != [2]int{2, 2} {
		t.Fatalf("unexpected final progress %v", last["Set"])
	}
}

func TestRunWithoutFFprobeExportsUncorrectedCues(t *testing.T) {
	cfg, lib := newFixture(t)
	cfg.Export.ExportAll = true
	cfg.Tools.FFprobe = "mixport-missing-ffprobe"
	addTrack(lib, 1, "/music/one.mp3")
	lib.AddCue(1, 1, 0, 176400, 0xff0000)
	lib.AddPlaylist(10, "Warmup", false, 1)

	exporter, err := export.New(cfg, export.Options{Version: "test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	summary, err := exporter.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Exported() != 1 || summary.Collections[0].Warnings != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	doc := readDocument(t, cfg.Export.OutputPath)
	if len(doc.Collection.Tracks) != 1 {
		t.Fatalf("expected one track, got %+v", doc.Collection.Tracks)
	}
	if marks := doc.Collection.Tracks[0].Marks; len(marks) != 1 || marks[0].Start != "2.000" {
		t.Fatalf("cue should not be shifted without ffprobe: %+v", marks)
	}
}
