package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mixport/internal/media/ffprobe"
	"mixport/internal/services"
)

type countingLimiter struct {
	inner    Limiter
	active   atomic.Int32
	peak     atomic.Int32
	acquired atomic.Int32
	released atomic.Int32
}

func (l *countingLimiter) Acquire(ctx context.Context) error {
	if err := l.inner.Acquire(ctx); err != nil {
		return err
	}
	l.acquired.Add(1)
	current := l.active.Add(1)
	for {
		peak := l.peak.Load()
		if current <= peak || l.peak.CompareAndSwap(peak, current) {
			break
		}
	}
	return nil
}

func (l *countingLimiter) Release() {
	l.active.Add(-1)
	l.released.Add(1)
	l.inner.Release()
}

func stubSeams(t *testing.T, probe func(context.Context, string, string) (ffprobe.Result, error), run func(context.Context, string, []string) error) {
	t.Helper()
	origProbe, origTags, origRun := probeSource, readTags, runFFmpeg
	t.Cleanup(func() {
		probeSource, readTags, runFFmpeg = origProbe, origTags, origRun
	})
	probeSource = probe
	readTags = func(string) (map[string]string, error) {
		return map[string]string{"title": "Intro", "artist": "Someone"}, nil
	}
	runFFmpeg = run
}

func audioProbe(context.Context, string, string) (ffprobe.Result, error) {
	return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio"}}}, nil
}

func writeOutput(_ context.Context, _ string, args []string) error {
	return os.WriteFile(args[len(args)-1], []byte("encoded"), 0o644)
}

func writeSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("source audio"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestNewRequiresOutDir(t *testing.T) {
	_, err := New(Options{Format: "mp3"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "changing file formats") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestRelocateCopiesWithoutFormat(t *testing.T) {
	outDir := t.TempDir()
	limiter := &countingLimiter{inner: NewLimiter(1)}
	tc, err := New(Options{OutDir: outDir, VirtualOutDir: `D:\Music\USB`, Limiter: limiter})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	source := writeSource(t, "track.flac")

	relocation, err := tc.Relocate(context.Background(), source)
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if relocation.Path != filepath.Join(outDir, "track.flac") {
		t.Fatalf("unexpected path %q", relocation.Path)
	}
	if relocation.Location != `D:\Music\USB\track.flac` {
		t.Fatalf("unexpected location %q", relocation.Location)
	}
	data, err := os.ReadFile(relocation.Path)
	if err != nil || string(data) != "source audio" {
		t.Fatalf("copy mismatch: %q %v", data, err)
	}
	if limiter.acquired.Load() != 0 {
		t.Fatal("copies must not take a transcode slot")
	}
}

func TestRelocateSanitizesFileNames(t *testing.T) {
	outDir := t.TempDir()
	tc, err := New(Options{OutDir: outDir, VirtualOutDir: "/Volumes/USB"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	relocation, err := tc.Relocate(context.Background(), writeSource(t, "Intro: Part?.mp3"))
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if relocation.Location != "/Volumes/USB/Intro- Part.mp3" {
		t.Fatalf("unexpected location %q", relocation.Location)
	}
}

func TestRelocateTranscodesWithBitrateAndTags(t *testing.T) {
	outDir := t.TempDir()
	var captured []string
	stubSeams(t, audioProbe, func(ctx context.Context, binary string, args []string) error {
		captured = slices.Clone(args)
		return writeOutput(ctx, binary, args)
	})
	tc, err := New(Options{OutDir: outDir, VirtualOutDir: "/Volumes/USB/music/", Format: "MP3"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	relocation, err := tc.Relocate(context.Background(), writeSource(t, "set.flac"))
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if relocation.Location != "/Volumes/USB/music/set.mp3" {
		t.Fatalf("unexpected location %q", relocation.Location)
	}
	if _, err := os.Stat(filepath.Join(outDir, "set.mp3")); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
	joined := strings.Join(captured, " ")
	for _, want := range []string{"-b:a 320k", "-map 0:a:0", "-metadata artist=Someone", "-metadata title=Intro"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if strings.Index(joined, "artist=") > strings.Index(joined, "title=") {
		t.Fatalf("expected sorted metadata, got %q", joined)
	}
}

func TestRelocateOpusSourceGetsDemuxerHint(t *testing.T) {
	var captured []string
	stubSeams(t, audioProbe, func(ctx context.Context, binary string, args []string) error {
		captured = slices.Clone(args)
		return writeOutput(ctx, binary, args)
	})
	tc, err := New(Options{OutDir: t.TempDir(), Format: "alac"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	relocation, err := tc.Relocate(context.Background(), writeSource(t, "voice.opus"))
	if err != nil {
		t.Fatalf("Relocate: %v", err)
	}
	if filepath.Ext(relocation.Path) != ".m4a" {
		t.Fatalf("expected m4a output, got %q", relocation.Path)
	}
	joined := strings.Join(captured, " ")
	if !strings.Contains(joined, "-f ogg -i") || !strings.Contains(joined, "-c:a alac") {
		t.Fatalf("unexpected args %q", joined)
	}
	if strings.Contains(joined, "-b:a") {
		t.Fatalf("lossless target must not set a bitrate: %q", joined)
	}
}

func TestRelocateRejectsSourceWithoutAudio(t *testing.T) {
	stubSeams(t, func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video"}}}, nil
	}, writeOutput)
	limiter := &countingLimiter{inner: NewLimiter(1)}
	tc, err := New(Options{OutDir: t.TempDir(), Format: "mp3", Limiter: limiter})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = tc.Relocate(context.Background(), writeSource(t, "clip.mkv"))
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("expected transcode error, got %v", err)
	}
	if limiter.acquired.Load() != 1 || limiter.released.Load() != 1 {
		t.Fatalf("slot not returned: acquired=%d released=%d", limiter.acquired.Load(), limiter.released.Load())
	}
}

func TestRelocateRemovesPartialOutputOnFailure(t *testing.T) {
	outDir := t.TempDir()
	stubSeams(t, audioProbe, func(_ context.Context, _ string, args []string) error {
		_ = os.WriteFile(args[len(args)-1], []byte("partial"), 0o644)
		return errors.New("encoder crashed")
	})
	tc, err := New(Options{OutDir: outDir, Format: "aac"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = tc.Relocate(context.Background(), writeSource(t, "broken.wav"))
	if !errors.Is(err, services.ErrTranscode) || !strings.Contains(err.Error(), "encoder crashed") {
		t.Fatalf("expected wrapped encoder error, got %v", err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatalf("read out dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty out dir, found %d entries", len(entries))
	}
}

func TestRelocateBoundsConcurrentTranscodes(t *testing.T) {
	stubSeams(t, audioProbe, func(ctx context.Context, binary string, args []string) error {
		time.Sleep(20 * time.Millisecond)
		return writeOutput(ctx, binary, args)
	})
	limiter := &countingLimiter{inner: NewLimiter(2)}
	tc, err := New(Options{OutDir: t.TempDir(), Format: "mp3", Limiter: limiter})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sourceDir := t.TempDir()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := range 8 {
		source := filepath.Join(sourceDir, "track"+string(rune('a'+i))+".flac")
		if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
			t.Fatalf("write source: %v", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := tc.Relocate(context.Background(), source); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Relocate: %v", err)
	}
	if peak := limiter.peak.Load(); peak > 2 {
		t.Fatalf("expected at most 2 concurrent transcodes, saw %d", peak)
	}
	if limiter.acquired.Load() != 8 || limiter.released.Load() != 8 {
		t.Fatalf("unbalanced limiter: acquired=%d released=%d", limiter.acquired.Load(), limiter.released.Load())
	}
}

func TestRelocateHonoursCancelledContextWhileWaiting(t *testing.T) {
	limiter := NewLimiter(1)
	if err := limiter.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer limiter.Release()
	tc, err := New(Options{OutDir: t.TempDir(), Format: "mp3", Limiter: limiter})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tc.Relocate(ctx, writeSource(t, "queued.flac")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestFormatTables(t *testing.T) {
	tests := []struct {
		format    string
		bitrate   string
		extension string
	}{
		{"mp3", "320k", "mp3"},
		{"AAC", "256k", "aac"},
		{"flac", "", "flac"},
		{"alac", "", "m4a"},
	}
	for _, tc := range tests {
		if got := BitrateFor(tc.format); got != tc.bitrate {
			t.Fatalf("BitrateFor(%q) = %q, want %q", tc.format, got, tc.bitrate)
		}
		if got := Extension(tc.format); got != tc.extension {
			t.Fatalf("Extension(%q) = %q, want %q", tc.format, got, tc.extension)
		}
	}
	if DefaultLimit() < 1 {
		t.Fatal("DefaultLimit must be at least one")
	}
}

func TestJoinVirtual(t *testing.T) {
	tests := map[string]string{
		"/Volumes/USB":   "/Volumes/USB/a.mp3",
		"/Volumes/USB/":  "/Volumes/USB/a.mp3",
		`E:\DJ`:          `E:\DJ\a.mp3`,
		`E:\DJ\`:         `E:\DJ\a.mp3`,
		"relative/music": "relative/music/a.mp3",
		"/":              "/a.mp3",
	}
	for dir, want := range tests {
		if got := joinVirtual(dir, "a.mp3"); got != want {
			t.Fatalf("joinVirtual(%q) = %q, want %q", dir, got, want)
		}
	}
}

func TestReadFileTagsWithoutTagBlock(t *testing.T) {
	tags, err := readFileTags(writeSource(t, "plain.bin"))
	if err != nil {
		t.Fatalf("readFileTags: %v", err)
	}
	if len(tags) != 0 {
		t.Fatalf("expected no tags, got %v", tags)
	}
	if _, err := readFileTags(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
